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

// Package oci implements the Oracle Cloud Infrastructure REST request
// signature scheme (spec.md §4.3.2): RSA-SHA256 over a constructed
// "(request-target)" string.
package oci

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Signer implements signer.Signer for OCI Object Storage.
type Signer struct {
	Tenancy     string
	User        string
	Fingerprint string
	PrivateKey  *rsa.PrivateKey
}

// LoadPrivateKeyPEM parses a PKCS#1 or PKCS#8 RSA private key in PEM form,
// the minimal amount of key loading needed to hand a *rsa.PrivateKey to
// Signer (PEM/OpenSSL initialization beyond this is out of scope).
func LoadPrivateKeyPEM(data []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, fmt.Errorf("oci: no PEM block found in key data")
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("oci: failed to parse private key: %w", err)
	}
	rsaKey, ok := key.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("oci: private key is not RSA")
	}
	return rsaKey, nil
}

// ShouldSign always returns true: every OCI REST call must be signed.
func (s *Signer) ShouldSign(req *http.Request) bool { return true }

// CredentialsExpired is always false: OCI API-key credentials do not expire
// on a schedule the signer can observe.
func (s *Signer) CredentialsExpired(now time.Time) bool { return false }

// RefreshCredentials is a no-op: OCI API keys are not rotated by the signer.
func (s *Signer) RefreshCredentials() (bool, error) { return false, nil }

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Sign computes and applies the OCI Authorization header.
func (s *Signer) Sign(req *http.Request, now time.Time, body []byte) error {
	date := now.UTC().Format(time.RFC1123)
	date = strings.Replace(date, "UTC", "GMT", 1)

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	requestTarget := fmt.Sprintf("(request-target): %s %s", strings.ToLower(req.Method), req.URL.RequestURI())

	lines := []string{requestTarget, "host: " + host, "x-date: " + date}
	headers := []string{"(request-target)", "host", "x-date"}

	if hasBody(req.Method) {
		contentType := req.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/json"
			req.Header.Set("Content-Type", contentType)
		}
		sum := sha256.Sum256(body)
		contentSHA := base64.StdEncoding.EncodeToString(sum[:])
		contentLen := strconv.Itoa(len(body))

		lines = append(lines,
			"x-content-sha256: "+contentSHA,
			"content-length: "+contentLen,
			"content-type: "+contentType,
		)
		headers = append(headers, "x-content-sha256", "content-length", "content-type")
		req.Header.Set("x-content-sha256", contentSHA)
		req.Header.Set("content-length", contentLen)
	}

	stringToSign := strings.Join(lines, "\n")
	digest := sha256.Sum256([]byte(stringToSign))
	sig, err := rsa.SignPKCS1v15(rand.Reader, s.PrivateKey, crypto.SHA256, digest[:])
	if err != nil {
		return fmt.Errorf("oci: sign request: %w", err)
	}
	b64sig := base64.StdEncoding.EncodeToString(sig)

	keyID := fmt.Sprintf("%s/%s/%s", s.Tenancy, s.User, s.Fingerprint)
	auth := fmt.Sprintf(
		`Signature version="1",headers="%s",keyId="%s",algorithm="rsa-sha256",signature="%s"`,
		strings.Join(headers, " "), keyID, b64sig,
	)
	req.Header.Set("x-date", date)
	req.Header.Set("Authorization", auth)
	return nil
}
