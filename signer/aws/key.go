// Copyright 2023 Sneller, Inc.
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

// Package aws implements the AWS SigV4 request signer (spec §4.3.1),
// together with the credential-resolution chain (env, profile file, STS
// web identity, EC2/ECS instance metadata) used to populate it.
package aws

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// emptyBodySHA256 is the well-known SHA-256 of a zero-length payload.
var emptyBodySHA256 = func() string {
	sum := sha256.Sum256(nil)
	return hex.EncodeToString(sum[:])
}()

// SigningKey holds the credential material and derivation parameters for
// AWS SigV4. It has no internal locking; AssumeRole (see sts.go)
// overwrites its credential fields in place.
type SigningKey struct {
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	Region          string
	Service         string

	// BaseURI overrides the derived virtual-host/path-style endpoint, e.g.
	// for S3-compatible providers or local mocks.
	BaseURI string

	// SignAllHeaders includes every non-empty request header in the
	// signature instead of just Content-MD5/Content-Type/Range/x-amz-*.
	SignAllHeaders bool

	Expiration time.Time
}

// DeriveKey constructs a SigningKey from static credentials.
func DeriveKey(baseURI, accessKeyID, secretKey, region, service string) *SigningKey {
	return &SigningKey{
		AccessKeyID:     accessKeyID,
		SecretAccessKey: secretKey,
		Region:          region,
		Service:         service,
		BaseURI:         baseURI,
	}
}

// ShouldSign always returns true: every request to an AWS-compatible
// endpoint must carry SigV4 headers.
func (k *SigningKey) ShouldSign(req *http.Request) bool { return true }

// CredentialsExpired reports whether a time-limited (STS) credential set
// has passed its expiration.
func (k *SigningKey) CredentialsExpired(now time.Time) bool {
	return !k.Expiration.IsZero() && !now.Before(k.Expiration)
}

// RefreshCredentials is a no-op that always reports no change; temporary
// credentials come from AssumeRole (see sts.go) or WebIdentityCreds (see
// creds.go).
func (k *SigningKey) RefreshCredentials() (bool, error) { return false, nil }

// Sign implements signer.Signer by delegating to SignV4.
func (k *SigningKey) Sign(req *http.Request, now time.Time, body []byte) error {
	k.signV4At(req, body, now)
	return nil
}

// SignV4 signs req in place using the credentials and region/service held
// by k, using the current time.
func (k *SigningKey) SignV4(req *http.Request, body []byte) {
	k.signV4At(req, body, time.Now().UTC())
}

func (k *SigningKey) signV4At(req *http.Request, body []byte, now time.Time) {
	amzDate := now.Format("20060102T150405Z")
	dateStamp := now.Format("20060102")

	payloadHash := emptyBodySHA256
	if len(body) > 0 {
		sum := sha256.Sum256(body)
		payloadHash = hex.EncodeToString(sum[:])
	}

	if req.Host == "" {
		req.Host = req.URL.Host
	}
	req.Header.Set("x-amz-date", amzDate)
	req.Header.Set("x-amz-content-sha256", payloadHash)
	if k.SessionToken != "" {
		req.Header.Set("x-amz-security-token", k.SessionToken)
	}
	if len(body) > 0 {
		req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	}

	canonicalURI := canonicalizeURI(req.URL.Path)
	canonicalQuery := canonicalizeQuery(req.URL.RawQuery)
	signedHeaders, canonicalHeaders := k.canonicalHeaders(req)

	canonicalRequest := strings.Join([]string{
		strings.ToUpper(req.Method),
		canonicalURI,
		canonicalQuery,
		canonicalHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")

	scope := dateStamp + "/" + k.Region + "/" + k.Service + "/aws4_request"
	crHash := sha256.Sum256([]byte(canonicalRequest))
	stringToSign := strings.Join([]string{
		"AWS4-HMAC-SHA256",
		amzDate,
		scope,
		hex.EncodeToString(crHash[:]),
	}, "\n")

	signingKey := k.deriveSigningKey(dateStamp)
	signature := hex.EncodeToString(hmacSHA256(signingKey, stringToSign))

	auth := "AWS4-HMAC-SHA256 Credential=" + k.AccessKeyID + "/" + scope +
		", SignedHeaders=" + signedHeaders + ", Signature=" + signature
	req.Header.Set("Authorization", auth)
}

func (k *SigningKey) deriveSigningKey(dateStamp string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+k.SecretAccessKey), dateStamp)
	kRegion := hmacSHA256(kDate, k.Region)
	kService := hmacSHA256(kRegion, k.Service)
	return hmacSHA256(kService, "aws4_request")
}

func hmacSHA256(key []byte, data string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(data))
	return h.Sum(nil)
}

// canonicalizeURI URL-encodes each path segment once, preserving slashes.
func canonicalizeURI(p string) string {
	if p == "" {
		return "/"
	}
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = escapePathSegment(s)
	}
	return strings.Join(segments, "/")
}

func escapePathSegment(s string) string {
	var b strings.Builder
	for _, c := range []byte(s) {
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteString("%")
			b.WriteString(strings.ToUpper(hex.EncodeToString([]byte{c})))
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.' || c == '~'
}

// canonicalizeQuery sorts query parameters by key and ensures bare keys
// (no "=value") get a trailing "=".
func canonicalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}
	parts := strings.Split(raw, "&")
	type kv struct{ k, v string }
	pairs := make([]kv, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if i := strings.IndexByte(p, '='); i >= 0 {
			pairs = append(pairs, kv{p[:i], p[i+1:]})
		} else {
			pairs = append(pairs, kv{p, ""})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].k == pairs[j].k {
			return pairs[i].v < pairs[j].v
		}
		return pairs[i].k < pairs[j].k
	})
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.k + "=" + p.v
	}
	return strings.Join(out, "&")
}

func (k *SigningKey) canonicalHeaders(req *http.Request) (signedHeaders, canonicalHeaders string) {
	type hv struct{ name, value string }
	seen := map[string]string{"host": req.Host}

	include := func(name string) bool {
		lower := strings.ToLower(name)
		if lower == "host" || lower == "x-amz-date" || lower == "x-amz-content-sha256" ||
			lower == "x-amz-security-token" {
			return true
		}
		if k.SignAllHeaders {
			return true
		}
		return lower == "content-md5" || lower == "content-type" || lower == "range" || strings.HasPrefix(lower, "x-amz-")
	}

	for name, values := range req.Header {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		if !include(name) {
			continue
		}
		seen[strings.ToLower(name)] = strings.TrimSpace(values[0])
	}

	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)

	headers := make([]hv, len(names))
	for i, n := range names {
		headers[i] = hv{n, seen[n]}
	}

	var sb strings.Builder
	signedNames := make([]string, len(headers))
	for i, h := range headers {
		sb.WriteString(h.name)
		sb.WriteString(":")
		sb.WriteString(h.value)
		sb.WriteString("\n")
		signedNames[i] = h.name
	}
	return strings.Join(signedNames, ";"), sb.String()
}
