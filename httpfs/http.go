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

// Package httpfs is the generic HTTP(S) backend (spec.md §4.8/C8): a
// standalone fallback for plain web servers that speak Range GET and PUT
// but none of the bucket-shaped list/multipart APIs the S3/OCI/Azure
// backends have. It deliberately does not depend on the root objectfs
// package, mirroring the PACKAGE LAYOUT's treatment of httpfs as a sibling
// VFS implementation rather than a fourth backend.Backend adapter.
package httpfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// ErrNotImplemented is returned by every Directory operation: plain HTTP
// has no listing protocol, so directories are opaque (spec.md §4.8).
var ErrNotImplemented = errors.New("httpfs: directories are not supported over plain HTTP")

// Mode selects the access mode an Object is opened with.
type Mode int

const (
	ReadOnly Mode = iota
	WriteOnly
)

// Object is a single resource addressed by URL (spec.md §4.8).
type Object struct {
	Client *http.Client
	URL    string

	mode   Mode
	opened bool
	closed bool

	size   int64
	offset int64

	buf     bytes.Buffer
	written int64
}

// New constructs an Object bound to rawURL. client may be http.DefaultClient.
func New(client *http.Client, rawURL string) *Object {
	if client == nil {
		client = http.DefaultClient
	}
	return &Object{Client: client, URL: rawURL}
}

// Open prepares o for I/O. In ReadOnly mode it issues a HEAD request to
// learn the object's size from Content-Length.
func (o *Object) Open(ctx context.Context, mode Mode) error {
	if o.opened {
		return fmt.Errorf("httpfs: %s is already open", o.URL)
	}
	if mode == ReadOnly {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, o.URL, nil)
		if err != nil {
			return err
		}
		resp, err := o.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return &ResponseError{URL: o.URL, Status: resp.StatusCode}
		}
		o.size = resp.ContentLength
	}
	o.mode = mode
	o.opened = true
	return nil
}

// ResponseError reports a non-2xx HTTP response.
type ResponseError struct {
	URL    string
	Status int
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("httpfs: %s: unexpected status %d", e.URL, e.Status)
}

// Read issues a ranged GET for [offset, offset+len(p)-1] and requires a 206
// Partial Content response; a 200 response (server ignored Range) is
// treated as an error, matching the same rule applied to the bucket-shaped
// backends.
func (o *Object) Read(ctx context.Context, p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if o.offset >= o.size {
		return 0, io.EOF
	}
	to := o.offset + int64(len(p)) - 1
	if to > o.size-1 {
		to = o.size - 1
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.URL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", o.offset, to))

	resp, err := o.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusPartialContent {
		return 0, &ResponseError{URL: o.URL, Status: resp.StatusCode}
	}

	n, err := io.ReadFull(resp.Body, p[:to-o.offset+1])
	if err != nil && err != io.ErrUnexpectedEOF {
		return n, err
	}
	o.offset += int64(n)
	return n, nil
}

// Write buffers p in memory; the request body is sent in full on Close.
func (o *Object) Write(p []byte) (int, error) {
	if o.mode != WriteOnly {
		return 0, fmt.Errorf("httpfs: %s is not open for writing", o.URL)
	}
	n, _ := o.buf.Write(p)
	o.written += int64(n)
	return n, nil
}

// Close flushes a WriteOnly Object with a single PUT request.
func (o *Object) Close(ctx context.Context) error {
	if o.closed {
		return nil
	}
	o.closed = true
	if o.mode != WriteOnly {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, o.URL, bytes.NewReader(o.buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(o.buf.Len())

	resp, err := o.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &ResponseError{URL: o.URL, Status: resp.StatusCode}
	}
	return nil
}

// Remove overwrites the resource with zero bytes: generic HTTP has no
// DELETE semantics a plain web server is guaranteed to honor, so removal
// is modeled as truncation (spec.md §4.8).
func (o *Object) Remove(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, o.URL, http.NoBody)
	if err != nil {
		return err
	}
	req.ContentLength = 0
	resp, err := o.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &ResponseError{URL: o.URL, Status: resp.StatusCode}
	}
	return nil
}

// Seek clamps offset to [0, size] in ReadOnly mode; in WriteOnly mode the
// sink is non-seekable and Seek is a no-op returning 0.
func (o *Object) Seek(offset int64, whence int) (int64, error) {
	if o.mode == WriteOnly {
		return 0, nil
	}
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = o.offset + offset
	case io.SeekEnd:
		abs = o.size + offset
	default:
		return 0, fmt.Errorf("httpfs: invalid whence %d", whence)
	}
	if abs < 0 {
		abs = 0
	}
	if abs > o.size {
		abs = o.size
	}
	o.offset = abs
	return o.offset, nil
}

// Tell returns the current read offset, or bytes written so far.
func (o *Object) Tell() int64 {
	if o.mode == WriteOnly {
		return o.written
	}
	return o.offset
}

// FileSize returns the size learned at Open, or bytes written so far.
func (o *Object) FileSize() int64 {
	if o.mode == WriteOnly {
		return o.written
	}
	return o.size
}

// Directory is an opaque stand-in for a directory over plain HTTP: every
// operation fails with ErrNotImplemented, since generic HTTP has no
// listing protocol to push a directory query into.
type Directory struct {
	URL string
}

func (d *Directory) Exists() (bool, error)                 { return false, ErrNotImplemented }
func (d *Directory) Create() error                          { return ErrNotImplemented }
func (d *Directory) ListFiles(bool) ([]string, error)       { return nil, ErrNotImplemented }

// Parent computes the URL of the containing "directory" by trimming
// everything after the last "/" in the path component of rawURL.
func Parent(rawURL string) (string, error) {
	idx := strings.Index(rawURL, "://")
	if idx < 0 {
		return "", fmt.Errorf("httpfs: %q: missing scheme", rawURL)
	}
	scheme, rest := rawURL[:idx+3], rawURL[idx+3:]

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return "", fmt.Errorf("httpfs: %q: no path component", rawURL)
	}
	host, p := rest[:slash], rest[slash:]
	parent := path.Dir(p)
	if parent == "." {
		parent = "/"
	}
	return scheme + host + parent, nil
}
