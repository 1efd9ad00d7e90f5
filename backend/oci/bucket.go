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
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// Exists reports whether the bucket exists within the configured namespace.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bucketURL(), nil)
	if err != nil {
		return false, err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return false, nil //nolint:nilerr
	}
	res.Body.Close()
	return true, nil
}

// Create issues a bucket-creation request against the namespace's bucket
// collection endpoint, which requires an owning compartment.
func (c *Client) Create(ctx context.Context) error {
	if c.compartmentID == "" {
		return fmt.Errorf("oci: bucket creation requires a compartment ID; call EnsureBucketInfo against an existing bucket in the compartment first, or set Client.compartmentID directly")
	}
	body := []byte(fmt.Sprintf(`{"name":%q,"compartmentId":%q}`, c.Bucket, c.compartmentID))
	u := fmt.Sprintf("https://%s/n/%s/b", c.host(), encodePathSegment(c.Namespace))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(body))
	res, err := c.Service.Execute(req, body)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// Delete removes the (empty) bucket.
func (c *Client) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.bucketURL(), nil)
	if err != nil {
		return err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}
