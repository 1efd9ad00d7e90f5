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
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/dumpfs/objectfs/backend"
)

// Azure has no create-multipart-upload call: blocks are staged against a
// blob name directly via comp=block, then finalized with comp=blocklist.
// CreateMultipartUpload's UploadID is therefore synthetic, generated here
// purely to satisfy backend.Backend's shape and to namespace the block IDs
// of concurrent uploads to the same blob name.
type uploadState struct {
	mu      sync.Mutex
	blockID map[uint32]string // partNum -> base64 block ID
}

var uploads sync.Map // uploadID -> *uploadState

// CreateMultipartUpload allocates a synthetic upload ID; no request is
// made since Azure has no server-side multipart-upload initiation.
func (c *Client) CreateMultipartUpload(ctx context.Context, name string) (backend.MultipartObject, error) {
	id := uuid.NewString()
	uploads.Store(id, &uploadState{blockID: make(map[uint32]string)})
	return backend.MultipartObject{Name: name, UploadID: id}, nil
}

func blockIDFor(uploadID string, partNum uint32) string {
	raw := fmt.Sprintf("%s-%08d", uploadID, partNum)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// UploadPart stages one block of the blob via comp=block.
func (c *Client) UploadPart(ctx context.Context, obj backend.MultipartObject, partNum uint32, data []byte) (string, error) {
	st, ok := uploads.Load(obj.UploadID)
	if !ok {
		return "", fmt.Errorf("azureblob: unknown upload ID %q; CreateMultipartUpload was not called or the process restarted", obj.UploadID)
	}
	blockID := blockIDFor(obj.UploadID, partNum)

	query := "comp=block&blockid=" + blockID
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.blobURL(obj.Name, query), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(len(data))
	res, err := c.Service.Execute(req, data)
	if err != nil {
		return "", err
	}
	res.Body.Close()

	s := st.(*uploadState)
	s.mu.Lock()
	s.blockID[partNum] = blockID
	s.mu.Unlock()
	return blockID, nil
}

// CommitMultipartUpload finalizes the blob from its staged blocks via
// comp=blocklist.
func (c *Client) CommitMultipartUpload(ctx context.Context, obj backend.MultipartObject, parts []backend.MultipartPart) (string, error) {
	type blockList struct {
		XMLName xml.Name `xml:"BlockList"`
		Latest  []string `xml:"Latest"`
	}
	bl := blockList{}
	for _, p := range parts {
		bl.Latest = append(bl.Latest, p.ETag)
	}
	body, err := xml.Marshal(bl)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.blobURL(obj.Name, "comp=blocklist"), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/xml")
	req.ContentLength = int64(len(body))
	res, err := c.Service.Execute(req, body)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	uploads.Delete(obj.UploadID)
	return res.Header.Get("ETag"), nil
}

// AbortMultipartUpload discards the local block-tracking state; Azure
// garbage-collects uncommitted blocks after about a week on its own, there
// is no explicit abort call.
func (c *Client) AbortMultipartUpload(ctx context.Context, obj backend.MultipartObject) error {
	uploads.Delete(obj.UploadID)
	return nil
}

// ListMultipartUploads is not meaningfully supported: Azure exposes
// uncommitted blocks only per-blob (via GET ?comp=blocklist&blocklisttype=uncommitted),
// not as an account- or container-wide listing the way S3/OCI expose
// in-progress uploads.
func (c *Client) ListMultipartUploads(ctx context.Context, limit int) ([]backend.MultipartObject, error) {
	return nil, &backend.UnsupportedOperationError{Backend: "azure", Operation: "ListMultipartUploads"}
}

type blockListResult struct {
	UncommittedBlocks struct {
		Block []struct {
			Name string `xml:"Name"`
			Size uint64 `xml:"Size"`
		} `xml:"Block"`
	} `xml:"UncommittedBlocks"`
}

// ListMultipartUploadedParts lists blocks already staged for a blob via
// GET ?comp=blocklist&blocklisttype=uncommitted.
func (c *Client) ListMultipartUploadedParts(ctx context.Context, obj backend.MultipartObject, limit int) ([]backend.MultipartPart, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.blobURL(obj.Name, "comp=blocklist&blocklisttype=uncommitted"), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var parsed blockListResult
	if err := xml.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]backend.MultipartPart, 0, len(parsed.UncommittedBlocks.Block))
	for _, b := range parsed.UncommittedBlocks.Block {
		out = append(out, backend.MultipartPart{ETag: b.Name, Size: b.Size})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
