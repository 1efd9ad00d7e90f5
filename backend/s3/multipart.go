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
	"net/http"
	"sort"
	"strconv"

	"github.com/dumpfs/objectfs/backend"
)

// CreateMultipartUpload starts a multi-part upload and returns its
// upload ID.
func (c *Client) CreateMultipartUpload(ctx context.Context, name string) (backend.MultipartObject, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(name, "uploads="), nil)
	if err != nil {
		return backend.MultipartObject{}, err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return backend.MultipartObject{}, err
	}
	defer res.Body.Close()

	var rt struct {
		Bucket string `xml:"Bucket"`
		Key    string `xml:"Key"`
		ID     string `xml:"UploadId"`
	}
	if err := xml.NewDecoder(res.Body).Decode(&rt); err != nil {
		return backend.MultipartObject{}, err
	}
	if rt.Key != name {
		return backend.MultipartObject{}, fmt.Errorf("s3: server returned key %q for requested key %q", rt.Key, name)
	}
	return backend.MultipartObject{Name: name, UploadID: rt.ID}, nil
}

// UploadPart uploads one part of a multi-part upload. Parts must be at
// least MinPartSize bytes, except for the final part of an upload.
func (c *Client) UploadPart(ctx context.Context, obj backend.MultipartObject, partNum uint32, data []byte) (string, error) {
	query := fmt.Sprintf("partNumber=%d&uploadId=%s", partNum, queryEscape(obj.UploadID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.objectURL(obj.Name, query), bytes.NewReader(data))
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
		return "", fmt.Errorf("s3: UploadPart response missing ETag")
	}
	return etag, nil
}

type completedPart struct {
	Num  uint32 `xml:"PartNumber"`
	ETag string `xml:"ETag"`
}

// CommitMultipartUpload finalizes a multi-part upload from the set of
// already-uploaded parts, which must be supplied in ascending part-number
// order.
func (c *Client) CommitMultipartUpload(ctx context.Context, obj backend.MultipartObject, parts []backend.MultipartPart) (string, error) {
	sorted := make([]completedPart, len(parts))
	for i, p := range parts {
		sorted[i] = completedPart{Num: p.PartNum, ETag: p.ETag}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Num < sorted[j].Num })

	buf, err := xml.Marshal(&struct {
		XMLName xml.Name        `xml:"CompleteMultipartUpload"`
		NS      string          `xml:"xmlns,attr"`
		Parts   []completedPart `xml:"Part"`
	}{
		NS:    "http://s3.amazonaws.com/doc/2006-03-01/",
		Parts: sorted,
	})
	if err != nil {
		return "", err
	}

	query := "uploadId=" + queryEscape(obj.UploadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(obj.Name, query), bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/xml")
	req.ContentLength = int64(len(buf))
	res, err := c.Service.Execute(req, buf)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	// A failed commit can still arrive with HTTP 200 and an <Error/> body.
	var rt struct {
		XMLName xml.Name
		ETag    string `xml:"ETag"`
		Code    string `xml:"Code"`
		Message string `xml:"Message"`
	}
	if err := xml.NewDecoder(res.Body).Decode(&rt); err != nil {
		return "", fmt.Errorf("s3: decoding CompleteMultipartUpload response: %w", err)
	}
	if rt.XMLName.Local == "Error" {
		return "", fmt.Errorf("s3: CompleteMultipartUpload failed: %s %s", rt.Code, rt.Message)
	}
	return rt.ETag, nil
}

// AbortMultipartUpload cancels an in-progress multi-part upload, freeing
// any parts already stored for it.
func (c *Client) AbortMultipartUpload(ctx context.Context, obj backend.MultipartObject) error {
	query := "uploadId=" + queryEscape(obj.UploadID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.objectURL(obj.Name, query), nil)
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

type listMultipartUploadsResult struct {
	Uploads []struct {
		Key      string `xml:"Key"`
		UploadID string `xml:"UploadId"`
	} `xml:"Upload"`
}

// ListMultipartUploads lists in-progress multi-part uploads for the
// bucket.
func (c *Client) ListMultipartUploads(ctx context.Context, limit int) ([]backend.MultipartObject, error) {
	query := "uploads="
	if limit > 0 {
		query += "&max-uploads=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bucketURL(query), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var parsed listMultipartUploadsResult
	if err := xml.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]backend.MultipartObject, len(parsed.Uploads))
	for i, u := range parsed.Uploads {
		out[i] = backend.MultipartObject{Name: u.Key, UploadID: u.UploadID}
	}
	return out, nil
}

type listPartsResult struct {
	Parts []struct {
		PartNumber uint32 `xml:"PartNumber"`
		ETag       string `xml:"ETag"`
		Size       uint64 `xml:"Size"`
	} `xml:"Part"`
}

// ListMultipartUploadedParts lists the parts already uploaded for an
// in-progress multi-part upload.
func (c *Client) ListMultipartUploadedParts(ctx context.Context, obj backend.MultipartObject, limit int) ([]backend.MultipartPart, error) {
	query := "uploadId=" + queryEscape(obj.UploadID)
	if limit > 0 {
		query += "&max-parts=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(obj.Name, query), nil)
	if err != nil {
		return nil, err
	}
	res, err := c.Service.Execute(req, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var parsed listPartsResult
	if err := xml.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	out := make([]backend.MultipartPart, len(parsed.Parts))
	for i, p := range parsed.Parts {
		out[i] = backend.MultipartPart{PartNum: p.PartNumber, ETag: p.ETag, Size: p.Size}
	}
	return out, nil
}
