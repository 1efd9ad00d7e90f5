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
	"io"
	"net/http"
	"strconv"

	"github.com/dumpfs/objectfs/backend"
)

// HeadObject issues a HEAD and reads the Content-Length header.
func (c *Client) HeadObject(ctx context.Context, name string) (backend.ObjectDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.objectURL(name, ""), nil)
	if err != nil {
		return backend.ObjectDetails{}, err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return backend.ObjectDetails{}, err
	}
	defer res.Body.Close()
	return backend.ObjectDetails{
		Name: name,
		Size: uint64(res.ContentLength),
		ETag: res.Header.Get("ETag"),
	}, nil
}

// PutObject uploads the full contents of data. An "if-none-match: *" header
// would enforce create-only semantics; objectfs always allows overwrite, the
// way spec.md's PUT/APPEND operations expect.
func (c *Client) PutObject(ctx context.Context, name string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(name, ""), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.ContentLength = int64(len(data))
	res, err := c.Service.Execute(req, data)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	return res.Header.Get("ETag"), nil
}

// GetObject streams the object (or a byte range) into w.
func (c *Client) GetObject(ctx context.Context, name string, w io.Writer, rng *backend.ByteRange) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(name, ""), nil)
	if err != nil {
		return err
	}
	if rng != nil {
		from, to := "", ""
		if rng.From < 0 {
			to = strconv.FormatInt(-rng.From, 10)
		} else {
			from = strconv.FormatInt(rng.From, 10)
			if rng.To >= 0 {
				to = strconv.FormatInt(rng.To, 10)
			}
		}
		req.Header.Set("Range", fmt.Sprintf("bytes=%s-%s", from, to))
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, err = io.Copy(w, res.Body)
	return err
}

// DeleteObject removes a single object.
func (c *Client) DeleteObject(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(name, ""), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "*/*")
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return err
	}
	res.Body.Close()
	return nil
}

// DeleteObjects has no bulk-delete endpoint in the OCI API, so objects are
// removed one at a time.
func (c *Client) DeleteObjects(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := c.DeleteObject(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// RenameObject uses OCI's native renameObject action, unlike S3 which must
// fake a rename via copy+delete.
func (c *Client) RenameObject(ctx context.Context, src, dst string) error {
	body := []byte(fmt.Sprintf(`{"sourceName":%q,"newName":%q}`, src, dst))
	u := fmt.Sprintf("https://%s%s/actions/renameObject", c.host(), c.bucketPath())
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
