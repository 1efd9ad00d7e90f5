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

// Package oci adapts Oracle Cloud Infrastructure's Object Storage JSON API
// (paths of the form /n/<namespace>/b/<bucket>/o/<object>) to the
// backend.Backend contract.
package oci

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dumpfs/objectfs/rest"
)

// MaxListObjectsLimit caps a single ListObjects page, matching the OCI API.
const MaxListObjectsLimit = 1000

// Client adapts a bucket within an OCI Object Storage namespace/region.
type Client struct {
	Service *rest.Service

	Region    string
	Namespace string
	Bucket    string

	// compartmentID and etag are cached metadata populated by EnsureBucketInfo.
	compartmentID string
	etag          string
}

func (c *Client) host() string {
	return fmt.Sprintf("objectstorage.%s.oraclecloud.com", c.Region)
}

func (c *Client) bucketPath() string {
	return fmt.Sprintf("/n/%s/b/%s", encodePathSegment(c.Namespace), encodePathSegment(c.Bucket))
}

func (c *Client) objectURL(name, rawQuery string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     c.host(),
		Path:     c.bucketPath() + "/o/" + name,
		RawQuery: rawQuery,
	}
	return u.String()
}

func (c *Client) listURL(rawQuery string) string {
	u := url.URL{Scheme: "https", Host: c.host(), Path: c.bucketPath() + "/o", RawQuery: rawQuery}
	return u.String()
}

func (c *Client) bucketURL() string {
	u := url.URL{Scheme: "https", Host: c.host(), Path: c.bucketPath()}
	return u.String()
}

func (c *Client) multipartURL(rawQuery string) string {
	u := url.URL{Scheme: "https", Host: c.host(), Path: c.bucketPath() + "/u", RawQuery: rawQuery}
	return u.String()
}

func (c *Client) multipartObjectURL(name, rawQuery string) string {
	u := url.URL{Scheme: "https", Host: c.host(), Path: c.bucketPath() + "/u/" + name, RawQuery: rawQuery}
	return u.String()
}

func encodePathSegment(s string) string {
	return url.PathEscape(s)
}

// Name implements backend.Backend.
func (c *Client) Name() string { return "oci" }

// MinPartSize implements backend.Backend.
func (c *Client) MinPartSize() int64 { return 10 * 1024 * 1024 }

// MaxPartSize implements backend.Backend: OCI bounds a single part at 5 GiB.
func (c *Client) MaxPartSize() int64 { return 5 * 1024 * 1024 * 1024 }

// bucketInfo mirrors the JSON map oci_bucket.cc reads from the bucket's own
// GET response to cache compartmentId/etag/access metadata.
type bucketInfo struct {
	CompartmentID    string `json:"compartmentId"`
	ETag             string `json:"etag"`
	IsReadOnly       bool   `json:"isReadOnly"`
	PublicAccessType string `json:"publicAccessType"`
}

// EnsureBucketInfo fetches and caches bucket-level metadata the first time
// it's needed; later calls are no-ops as long as the cached etag is non-empty.
func (c *Client) EnsureBucketInfo(ctx context.Context) error {
	if c.etag != "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bucketURL(), nil)
	if err != nil {
		return err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	var info bucketInfo
	if err := json.NewDecoder(res.Body).Decode(&info); err != nil {
		return fmt.Errorf("oci: decoding bucket metadata: %w", err)
	}
	c.compartmentID = info.CompartmentID
	c.etag = info.ETag
	return nil
}
