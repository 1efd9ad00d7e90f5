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
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/dumpfs/objectfs/backend"
)

// HeadObject issues a HEAD request and translates the response headers
// into an backend.ObjectDetails.
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

// PutObject uploads the full contents of data as a single object.
func (c *Client) PutObject(ctx context.Context, name string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(name, ""), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(len(data))
	res, err := c.Service.Execute(req, data)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	return res.Header.Get("ETag"), nil
}

// GetObject streams the object (or a byte range of it) into w.
func (c *Client) GetObject(ctx context.Context, name string, w io.Writer, rng *backend.ByteRange) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(name, ""), nil)
	if err != nil {
		return err
	}
	if rng != nil {
		req.Header.Set("Range", formatRange(*rng))
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, err = io.Copy(w, res.Body)
	return err
}

func formatRange(rng backend.ByteRange) string {
	switch {
	case rng.From < 0:
		return fmt.Sprintf("bytes=%d", rng.From)
	case rng.To < 0:
		return fmt.Sprintf("bytes=%d-", rng.From)
	default:
		return fmt.Sprintf("bytes=%d-%d", rng.From, rng.To)
	}
}

// DeleteObject removes a single object.
func (c *Client) DeleteObject(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(name, ""), nil)
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

type deleteObjectsRequest struct {
	XMLName xml.Name          `xml:"Delete"`
	Quiet   bool              `xml:"Quiet"`
	Objects []deleteObjectKey `xml:"Object"`
}

type deleteObjectKey struct {
	Key string `xml:"Key"`
}

// DeleteObjects performs a bulk delete via POST ?delete, batching in
// groups of 1000 keys (the S3 API limit).
func (c *Client) DeleteObjects(ctx context.Context, names []string) error {
	const batch = 1000
	for start := 0; start < len(names); start += batch {
		end := start + batch
		if end > len(names) {
			end = len(names)
		}
		if err := c.deleteObjectsBatch(ctx, names[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) deleteObjectsBatch(ctx context.Context, names []string) error {
	body := deleteObjectsRequest{Quiet: true}
	for _, n := range names {
		body.Objects = append(body.Objects, deleteObjectKey{Key: n})
	}
	buf, err := xml.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.bucketURL("delete="), bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/xml")
	req.ContentLength = int64(len(buf))
	res, err := c.Service.Execute(req, buf)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	return nil
}

// RenameObject performs a server-side copy followed by a delete of the
// source object, since S3 has no native rename operation.
func (c *Client) RenameObject(ctx context.Context, src, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(dst, ""), nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-amz-copy-source", "/"+c.Bucket+"/"+src)
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return err
	}
	res.Body.Close()
	return c.DeleteObject(ctx, src)
}
