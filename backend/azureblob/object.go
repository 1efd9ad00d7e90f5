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
	"fmt"
	"io"
	"net/http"

	"github.com/dumpfs/objectfs/backend"
)

// HeadObject issues a HEAD and reads the Content-Length header.
func (c *Client) HeadObject(ctx context.Context, name string) (backend.ObjectDetails, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.blobURL(name, ""), nil)
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

// PutObject creates or overwrites name as a block blob in one request.
func (c *Client) PutObject(ctx context.Context, name string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.blobURL(name, ""), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-ms-blob-type", "BlockBlob")
	req.ContentLength = int64(len(data))
	res, err := c.Service.Execute(req, data)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	return res.Header.Get("ETag"), nil
}

// GetObject streams the blob (or a byte range of it) into w. Azure
// requires an explicit starting offset for a partial read.
func (c *Client) GetObject(ctx context.Context, name string, w io.Writer, rng *backend.ByteRange) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.blobURL(name, ""), nil)
	if err != nil {
		return err
	}
	if rng != nil {
		if rng.From < 0 {
			return &backend.UnsupportedOperationError{Backend: "azure", Operation: "GetObject with a suffix range"}
		}
		if rng.To >= 0 {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", rng.From, rng.To))
		} else {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-", rng.From))
		}
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, err = io.Copy(w, res.Body)
	return err
}

// DeleteObject removes a single blob.
func (c *Client) DeleteObject(ctx context.Context, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.blobURL(name, ""), nil)
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

// DeleteObjects has no bulk-delete endpoint in the Blob Storage REST API
// (unlike S3), so blobs are removed one at a time.
func (c *Client) DeleteObjects(ctx context.Context, names []string) error {
	for _, name := range names {
		if err := c.DeleteObject(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// RenameObject is not supported by Azure Blob Storage; callers should fall
// back to a copy-then-delete at the VFS layer if rename semantics are
// required across this backend.
func (c *Client) RenameObject(ctx context.Context, src, dst string) error {
	return &backend.UnsupportedOperationError{Backend: "azure", Operation: "RenameObject"}
}
