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
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dumpfs/objectfs/backend"
)

type listObjectsResponse struct {
	Objects []struct {
		Name        string `json:"name"`
		Size        uint64 `json:"size"`
		ETag        string `json:"etag"`
		TimeCreated string `json:"timeCreated"`
	} `json:"objects"`
	Prefixes      []string `json:"prefixes"`
	NextStartWith string   `json:"nextStartWith"`
}

// ListObjects lists objects under prefix, paginating via the "start" cursor
// OCI returns as nextStartWith (grounded on oci_bucket.cc's list_objects,
// which walks that same cursor in a loop).
func (c *Client) ListObjects(ctx context.Context, prefix string, limit int, recursive bool) ([]backend.ObjectDetails, []string, error) {
	var objects []backend.ObjectDetails
	var prefixes []string
	start := ""

	for {
		q := url.Values{}
		if prefix != "" {
			q.Set("prefix", prefix)
		}
		if start != "" {
			q.Set("start", start)
		}
		if !recursive {
			q.Set("delimiter", "/")
		}
		remaining := limit - len(objects)
		if limit > 0 {
			if remaining <= 0 {
				break
			}
			if remaining <= MaxListObjectsLimit {
				q.Set("limit", strconv.Itoa(remaining))
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listURL(q.Encode()), nil)
		if err != nil {
			return nil, nil, err
		}
		res, err := c.Service.Execute(req, nil)
		if err != nil {
			return nil, nil, err
		}

		var parsed listObjectsResponse
		err = json.NewDecoder(res.Body).Decode(&parsed)
		res.Body.Close()
		if err != nil {
			return nil, nil, err
		}

		for _, o := range parsed.Objects {
			objects = append(objects, backend.ObjectDetails{
				Name: o.Name, Size: o.Size, ETag: o.ETag, TimeCreated: o.TimeCreated,
			})
		}
		prefixes = append(prefixes, parsed.Prefixes...)

		if parsed.NextStartWith == "" {
			break
		}
		start = parsed.NextStartWith
	}
	return objects, prefixes, nil
}
