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

package s3

import (
	"context"
	"net/http"
)

// Exists reports whether the bucket itself exists and is accessible.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.bucketURL(""), nil)
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

// Create issues a PutBucket request. Region-constrained buckets require a
// LocationConstraint body; the us-east-1 default region omits it.
func (c *Client) Create(ctx context.Context) error {
	var body []byte
	if c.Region != "" && c.Region != "us-east-1" {
		body = []byte(`<CreateBucketConfiguration xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><LocationConstraint>` +
			c.Region + `</LocationConstraint></CreateBucketConfiguration>`)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.bucketURL(""), nil)
	if err != nil {
		return err
	}
	if body != nil {
		req.ContentLength = int64(len(body))
	}
	res, err := c.Service.Execute(req, body)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// Delete removes the (empty) bucket.
func (c *Client) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.bucketURL(""), nil)
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
