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
	"context"
	"encoding/xml"
	"net/http"
	"strconv"
	"strings"

	"github.com/dumpfs/objectfs/backend"
)

type listBlobsResult struct {
	Blobs struct {
		Blob []struct {
			Name       string `xml:"Name"`
			Properties struct {
				ContentLength int64  `xml:"Content-Length"`
				ETag          string `xml:"Etag"`
				CreationTime  string `xml:"Creation-Time"`
			} `xml:"Properties"`
		} `xml:"Blob"`
		BlobPrefix []struct {
			Name string `xml:"Name"`
		} `xml:"BlobPrefix"`
	} `xml:"Blobs"`
	NextMarker string `xml:"NextMarker"`
}

// ListObjects lists blobs under prefix via comp=list, using a "/"
// delimiter to roll up nested names into prefixes unless recursive.
func (c *Client) ListObjects(ctx context.Context, prefix string, limit int, recursive bool) ([]backend.ObjectDetails, []string, error) {
	var objects []backend.ObjectDetails
	var prefixes []string
	marker := ""

	for {
		parts := []string{"restype=container", "comp=list"}
		if prefix != "" {
			parts = append(parts, "prefix="+prefix)
		}
		if !recursive {
			parts = append(parts, "delimiter=%2F")
		}
		if limit > 0 {
			parts = append(parts, "maxresults="+strconv.Itoa(limit))
		}
		if marker != "" {
			parts = append(parts, "marker="+marker)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.containerURL(strings.Join(parts, "&")), nil)
		if err != nil {
			return nil, nil, err
		}
		res, err := c.Service.Execute(req, nil)
		if err != nil {
			return nil, nil, err
		}

		var parsed listBlobsResult
		err = xml.NewDecoder(res.Body).Decode(&parsed)
		res.Body.Close()
		if err != nil {
			return nil, nil, err
		}

		for _, b := range parsed.Blobs.Blob {
			objects = append(objects, backend.ObjectDetails{
				Name:        b.Name,
				Size:        uint64(b.Properties.ContentLength),
				ETag:        b.Properties.ETag,
				TimeCreated: b.Properties.CreationTime,
			})
		}
		for _, p := range parsed.Blobs.BlobPrefix {
			prefixes = append(prefixes, p.Name)
		}

		if limit > 0 && len(objects)+len(prefixes) >= limit {
			break
		}
		if parsed.NextMarker == "" {
			break
		}
		marker = parsed.NextMarker
	}
	return objects, prefixes, nil
}
