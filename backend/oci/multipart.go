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
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dumpfs/objectfs/backend"
)

// CreateMultipartUpload starts a multi-part upload via POST .../u.
func (c *Client) CreateMultipartUpload(ctx context.Context, name string) (backend.MultipartObject, error) {
	body := []byte(fmt.Sprintf(`{"object":%q}`, name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.multipartURL(""), bytes.NewReader(body))
	if err != nil {
		return backend.MultipartObject{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(body))
	res, err := c.Service.Execute(req, body)
	if err != nil {
		return backend.MultipartObject{}, err
	}
	defer res.Body.Close()

	var rt struct {
		UploadID string `json:"uploadId"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rt); err != nil {
		return backend.MultipartObject{}, err
	}
	return backend.MultipartObject{Name: name, UploadID: rt.UploadID}, nil
}

// UploadPart uploads a single part of the upload.
func (c *Client) UploadPart(ctx context.Context, obj backend.MultipartObject, partNum uint32, data []byte) (string, error) {
	q := url.Values{"uploadId": {obj.UploadID}, "uploadPartNum": {strconv.FormatUint(uint64(partNum), 10)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.multipartObjectURL(obj.Name, q.Encode()), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.ContentLength = int64(len(data))
	res, err := c.Service.Execute(req, data)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	etag := res.Header.Get("ETag")
	if etag == "" {
		return "", fmt.Errorf("oci: UploadPart response missing ETag")
	}
	return etag, nil
}

// CommitMultipartUpload finalizes the upload from its parts.
func (c *Client) CommitMultipartUpload(ctx context.Context, obj backend.MultipartObject, parts []backend.MultipartPart) (string, error) {
	type commitPart struct {
		PartNum uint32 `json:"partNum"`
		ETag    string `json:"etag"`
	}
	commit := struct {
		PartsToCommit []commitPart `json:"partsToCommit"`
	}{}
	for _, p := range parts {
		commit.PartsToCommit = append(commit.PartsToCommit, commitPart{PartNum: p.PartNum, ETag: p.ETag})
	}
	body, err := json.Marshal(commit)
	if err != nil {
		return "", err
	}

	q := url.Values{"uploadId": {obj.UploadID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.multipartObjectURL(obj.Name, q.Encode()), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = int64(len(body))
	res, err := c.Service.Execute(req, body)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()
	return res.Header.Get("ETag"), nil
}

// AbortMultipartUpload cancels an in-progress multi-part upload.
func (c *Client) AbortMultipartUpload(ctx context.Context, obj backend.MultipartObject) error {
	q := url.Values{"uploadId": {obj.UploadID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.multipartObjectURL(obj.Name, q.Encode()), nil)
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

// ListMultipartUploads lists in-progress uploads for the bucket.
func (c *Client) ListMultipartUploads(ctx context.Context, limit int) ([]backend.MultipartObject, error) {
	q := ""
	if limit > 0 {
		q = "limit=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.multipartURL(q), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var rt []struct {
		Object   string `json:"object"`
		UploadID string `json:"uploadId"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rt); err != nil {
		return nil, err
	}
	out := make([]backend.MultipartObject, len(rt))
	for i, u := range rt {
		out[i] = backend.MultipartObject{Name: u.Object, UploadID: u.UploadID}
	}
	return out, nil
}

// ListMultipartUploadedParts lists parts already uploaded for an
// in-progress multi-part upload.
func (c *Client) ListMultipartUploadedParts(ctx context.Context, obj backend.MultipartObject, limit int) ([]backend.MultipartPart, error) {
	q := url.Values{"uploadId": {obj.UploadID}}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.multipartObjectURL(obj.Name, q.Encode()), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var rt []struct {
		PartNumber uint32 `json:"partNumber"`
		ETag       string `json:"etag"`
		Size       uint64 `json:"size"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rt); err != nil {
		return nil, err
	}
	out := make([]backend.MultipartPart, len(rt))
	for i, p := range rt {
		out[i] = backend.MultipartPart{PartNum: p.PartNumber, ETag: p.ETag, Size: p.Size}
	}
	return out, nil
}
