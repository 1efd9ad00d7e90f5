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

package azureblob

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumpfs/objectfs/backend"
	"github.com/dumpfs/objectfs/rest"
)

type nopSigner struct{}

func (nopSigner) ShouldSign(*http.Request) bool               { return false }
func (nopSigner) Sign(*http.Request, time.Time, []byte) error { return nil }
func (nopSigner) RefreshCredentials() (bool, error)           { return false, nil }
func (nopSigner) CredentialsExpired(time.Time) bool           { return false }

type rewriteHostTransport struct {
	to   string
	base http.RoundTripper
}

func (t rewriteHostTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Host = t.to
	req.URL.Scheme = "http"
	req.Host = t.to
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	svc := rest.NewService(srv.Client(), nopSigner{})
	svc.Client.Transport = rewriteHostTransport{to: u.Host, base: srv.Client().Transport}
	return &Client{Service: svc, Account: "acct", Container: "container"}, srv
}

func TestPutObject_SetsBlockBlobType(t *testing.T) {
	var gotType string
	c, srv := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("x-ms-blob-type")
		w.Header().Set("ETag", "e1")
	})
	defer srv.Close()

	etag, err := c.PutObject(context.Background(), "a.txt", []byte("hi"))
	require.NoError(t, err)
	assert.Equal(t, "e1", etag)
	assert.Equal(t, "BlockBlob", gotType)
}

func TestGetObject_RequiresNonNegativeOffset(t *testing.T) {
	c, srv := testClient(t, func(w http.ResponseWriter, r *http.Request) {})
	defer srv.Close()

	var buf bytes.Buffer
	err := c.GetObject(context.Background(), "a.txt", &buf, &backend.ByteRange{From: -1})
	assert.Error(t, err)
}

func TestRenameObject_Unsupported(t *testing.T) {
	c, srv := testClient(t, func(w http.ResponseWriter, r *http.Request) {})
	defer srv.Close()

	err := c.RenameObject(context.Background(), "a", "b")
	require.Error(t, err)
	var uop *backend.UnsupportedOperationError
	assert.ErrorAs(t, err, &uop)
}

func TestMultipartUpload_StageAndCommit(t *testing.T) {
	var lastQuery string
	c, srv := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		lastQuery = r.URL.RawQuery
		w.Header().Set("ETag", "final-etag")
	})
	defer srv.Close()

	obj, err := c.CreateMultipartUpload(context.Background(), "big.bin")
	require.NoError(t, err)
	assert.NotEmpty(t, obj.UploadID)

	blockID, err := c.UploadPart(context.Background(), obj, 1, []byte("chunk"))
	require.NoError(t, err)
	assert.Contains(t, lastQuery, "comp=block")

	etag, err := c.CommitMultipartUpload(context.Background(), obj, []backend.MultipartPart{{PartNum: 1, ETag: blockID}})
	require.NoError(t, err)
	assert.Equal(t, "final-etag", etag)
}
