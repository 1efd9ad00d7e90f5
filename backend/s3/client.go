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

// Package s3 adapts the S3 REST API (virtual-hosted or path style, and
// S3-compatible endpoints such as Backblaze B2) to the backend.Backend
// contract.
package s3

import (
	"net/url"
	"strings"

	"github.com/dumpfs/objectfs/rest"
)

// MinPartSize is the minimum size of every part of a multi-part upload
// except the final one.
const MinPartSize = 5 * 1024 * 1024

// MaxParts is the maximum number of parts a multipart upload may have.
const MaxParts = 10000

// Client adapts a bucket on an S3-compatible endpoint.
type Client struct {
	Service *rest.Service
	Bucket  string

	// Region is used to build the default "s3.<region>.amazonaws.com"
	// host when BaseURI is empty.
	Region string
	// BaseURI, when set, overrides the default AWS host and switches
	// request construction to bucket-in-path style, the way S3-compatible
	// providers (e.g. Backblaze B2, MinIO) expect.
	BaseURI string
}

func (c *Client) hostAndScheme() (scheme, host string, pathStyle bool) {
	if c.BaseURI == "" {
		return "https", "s3." + c.Region + ".amazonaws.com", false
	}
	u, err := url.Parse(c.BaseURI)
	if err != nil {
		return "https", c.BaseURI, true
	}
	return u.Scheme, u.Host, true
}

// objectURL builds the URL for a request against `key`, with an optional
// raw query string (without the leading '?').
func (c *Client) objectURL(key, rawQuery string) string {
	scheme, host, pathStyle := c.hostAndScheme()
	u := url.URL{Scheme: scheme, RawQuery: rawQuery}
	if pathStyle {
		u.Host = host
		u.Path = "/" + c.Bucket + "/" + key
	} else {
		u.Host = c.Bucket + "." + host
		u.Path = "/" + key
	}
	return u.String()
}

// bucketURL builds the URL for a bucket-level request (no object key).
func (c *Client) bucketURL(rawQuery string) string {
	scheme, host, pathStyle := c.hostAndScheme()
	u := url.URL{Scheme: scheme, RawQuery: rawQuery}
	if pathStyle {
		u.Host = host
		u.Path = "/" + c.Bucket
	} else {
		u.Host = c.Bucket + "." + host
		u.Path = "/"
	}
	return u.String()
}

func queryEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Name implements backend.Backend.
func (c *Client) Name() string { return "s3" }

// MinPartSize implements backend.Backend.
func (c *Client) MinPartSize() int64 { return MinPartSize }

// MaxPartSize implements backend.Backend (S3 caps a single part at 5 GiB).
func (c *Client) MaxPartSize() int64 { return 5 * 1024 * 1024 * 1024 }
