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

package oci

import (
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testSigner(t *testing.T) *Signer {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &Signer{Tenancy: "t", User: "u", Fingerprint: "fp", PrivateKey: key}
}

func TestSign_GET_MinimalHeaders(t *testing.T) {
	s := testSigner(t)
	req, err := http.NewRequest(http.MethodGet, "https://objectstorage.us-phoenix-1.oraclecloud.com/n/ns/b/bucket/o/key", nil)
	require.NoError(t, err)
	req.Host = "objectstorage.us-phoenix-1.oraclecloud.com"

	require.NoError(t, s.Sign(req, time.Now(), nil))

	auth := req.Header.Get("Authorization")
	require.Contains(t, auth, `headers="(request-target) host x-date"`)
	require.NotContains(t, auth, "x-content-sha256")
}

func TestSign_POST_IncludesBodyHeaders(t *testing.T) {
	s := testSigner(t)
	body := []byte(`{"partsToCommit":[]}`)
	req, err := http.NewRequest(http.MethodPost, "https://objectstorage.us-phoenix-1.oraclecloud.com/n/ns/b/bucket/u/key", strings.NewReader(string(body)))
	require.NoError(t, err)
	req.Host = "objectstorage.us-phoenix-1.oraclecloud.com"

	require.NoError(t, s.Sign(req, time.Now(), body))

	auth := req.Header.Get("Authorization")
	require.Contains(t, auth, `headers="(request-target) host x-date x-content-sha256 content-length content-type"`)
	require.Equal(t, "application/json", req.Header.Get("Content-Type"))
}

func TestSign_Idempotent(t *testing.T) {
	s := testSigner(t)
	now := time.Now()
	sign := func() string {
		req, _ := http.NewRequest(http.MethodGet, "https://host/n/ns/b/bucket/o/key", nil)
		req.Host = "host"
		require.NoError(t, s.Sign(req, now, nil))
		return req.Header.Get("Authorization")
	}
	require.Equal(t, sign(), sign())
}
