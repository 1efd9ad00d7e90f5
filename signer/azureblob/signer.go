// Copyright 2025 Roman Atachiants
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Package azureblob implements the Azure Blob Storage Shared Key and SAS
// signing schemes (spec.md §4.3.3, REST API version 2020-08-04).
package azureblob

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Signer implements signer.Signer for Azure Blob Storage. Exactly one of
// SharedKey or SASToken should be set: SASToken takes precedence (no
// Authorization header is emitted; the SAS parameters are appended to the
// query string of every request instead).
type Signer struct {
	Account   string
	SharedKey []byte // decoded account key
	SASToken  string // raw "sv=...&sp=...&..." query string, validated via ParseSAS
}

// ShouldSign always returns true: SAS requests still need query parameters
// appended even though no Authorization header is produced.
func (s *Signer) ShouldSign(req *http.Request) bool { return true }

func (s *Signer) CredentialsExpired(now time.Time) bool { return false }

func (s *Signer) RefreshCredentials() (bool, error) { return false, nil }

// requiredSASAttrs are the attributes ParseSAS requires to be present.
var requiredSASAttrs = []string{"sv", "sp", "se", "sig"}

// ParseSAS validates a SAS query string against spec.md §4.3.3: sv, sp, se,
// sig must be present, plus either sr=c (container-scoped) or srt+ss=b
// (account-scoped, blob service). Permission checks are left to
// ValidatePermissions, since they depend on the operation being performed.
func ParseSAS(token string) (url.Values, error) {
	q, err := url.ParseQuery(token)
	if err != nil {
		return nil, fmt.Errorf("azure: invalid SAS token: %w", err)
	}
	for _, attr := range requiredSASAttrs {
		if q.Get(attr) == "" {
			return nil, fmt.Errorf("azure: SAS token missing required attribute %q", attr)
		}
	}
	hasSR := q.Get("sr") == "c"
	hasSRT := q.Get("srt") != "" && strings.Contains(q.Get("ss"), "b")
	if !hasSR && !hasSRT {
		return nil, fmt.Errorf("azure: SAS token must set sr=c, or srt with ss containing \"b\"")
	}
	return q, nil
}

// ValidatePermissions checks the SAS "sp" permission set against the
// operation being attempted: listing needs l,r; writes additionally need c
// or w.
func ValidatePermissions(sas url.Values, needWrite, needList bool) error {
	perms := sas.Get("sp")
	has := func(p string) bool { return strings.Contains(perms, p) }
	if needList && !(has("l") && has("r")) {
		return fmt.Errorf("azure: SAS token lacks required list permissions (l,r)")
	}
	if needWrite && !(has("c") || has("w")) {
		return fmt.Errorf("azure: SAS token lacks required write permissions (c or w)")
	}
	return nil
}

// Sign applies either SAS query parameters or a Shared Key Authorization
// header, depending on which credential form is configured.
func (s *Signer) Sign(req *http.Request, now time.Time, body []byte) error {
	if s.SASToken != "" {
		sas, err := ParseSAS(s.SASToken)
		if err != nil {
			return err
		}
		q := req.URL.Query()
		for k, vs := range sas {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		req.URL.RawQuery = q.Encode()
		return nil
	}

	req.Header.Set("x-ms-version", "2020-08-04")
	req.Header.Set("x-ms-date", now.UTC().Format(http.TimeFormat))

	sts := s.stringToSign(req, body)
	mac := hmac.New(sha256.New, s.SharedKey)
	mac.Write([]byte(sts))
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	req.Header.Set("Authorization", fmt.Sprintf("SharedKey %s:%s", s.Account, sig))
	return nil
}

func (s *Signer) stringToSign(req *http.Request, body []byte) string {
	h := req.Header
	contentLength := ""
	if len(body) > 0 {
		contentLength = fmt.Sprintf("%d", len(body))
	}

	parts := []string{
		strings.ToUpper(req.Method),
		h.Get("Content-Encoding"),
		h.Get("Content-Language"),
		contentLength,
		h.Get("Content-MD5"),
		h.Get("Content-Type"),
		h.Get("Date"),
		h.Get("If-Modified-Since"),
		h.Get("If-Match"),
		h.Get("If-None-Match"),
		h.Get("If-Unmodified-Since"),
		h.Get("Range"),
		s.canonicalizedHeaders(req),
		s.canonicalizedResource(req),
	}
	return strings.Join(parts, "\n")
}

func (s *Signer) canonicalizedHeaders(req *http.Request) string {
	var names []string
	for name := range req.Header {
		lower := strings.ToLower(name)
		if strings.HasPrefix(lower, "x-ms-") {
			names = append(names, lower)
		}
	}
	sort.Strings(names)
	var b strings.Builder
	for _, n := range names {
		b.WriteString(n)
		b.WriteString(":")
		b.WriteString(req.Header.Get(n))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *Signer) canonicalizedResource(req *http.Request) string {
	var b strings.Builder
	b.WriteString("/")
	b.WriteString(s.Account)
	b.WriteString(req.URL.Path)

	q := req.URL.Query()
	if len(q) == 0 {
		return b.String()
	}
	names := make([]string, 0, len(q))
	for k := range q {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, n := range names {
		vals := q[n]
		sort.Strings(vals)
		b.WriteString("\n")
		b.WriteString(strings.ToLower(n))
		b.WriteString(":")
		b.WriteString(strings.Join(vals, ","))
	}
	return b.String()
}
