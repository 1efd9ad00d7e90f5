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
	"encoding/xml"
	"net/http"
	"strconv"
	"strings"

	"github.com/dumpfs/objectfs/backend"
)

type listObjectsV2Result struct {
	IsTruncated    bool               `xml:"IsTruncated"`
	Contents       []listedObject     `xml:"Contents"`
	CommonPrefixes []listedCommonPath `xml:"CommonPrefixes"`
	NextToken      string             `xml:"NextContinuationToken"`
}

type listedObject struct {
	Key          string `xml:"Key"`
	Size         uint64 `xml:"Size"`
	ETag         string `xml:"ETag"`
	LastModified string `xml:"LastModified"`
}

type listedCommonPath struct {
	Prefix string `xml:"Prefix"`
}

// ListObjects lists objects under prefix, using the list-type=2 API.
// When recursive is false, a "/" delimiter is applied and nested keys are
// rolled up into prefixes instead of being returned as objects.
func (c *Client) ListObjects(ctx context.Context, prefix string, limit int, recursive bool) ([]backend.ObjectDetails, []string, error) {
	var objects []backend.ObjectDetails
	var prefixes []string
	token := ""

	for {
		parts := []string{"list-type=2"}
		if prefix != "" {
			parts = append(parts, "prefix="+queryEscape(prefix))
		}
		if !recursive {
			parts = append(parts, "delimiter=%2F")
		}
		if limit > 0 {
			parts = append(parts, "max-keys="+strconv.Itoa(limit))
		}
		if token != "" {
			parts = append(parts, "continuation-token="+queryEscape(token))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bucketURL(strings.Join(parts, "&")), nil)
		if err != nil {
			return nil, nil, err
		}
		res, err := c.Service.Execute(req, nil)
		if err != nil {
			return nil, nil, err
		}

		var parsed listObjectsV2Result
		err = xml.NewDecoder(res.Body).Decode(&parsed)
		res.Body.Close()
		if err != nil {
			return nil, nil, err
		}

		for _, o := range parsed.Contents {
			objects = append(objects, backend.ObjectDetails{
				Name:        o.Key,
				Size:        o.Size,
				ETag:        o.ETag,
				TimeCreated: o.LastModified,
			})
		}
		for _, p := range parsed.CommonPrefixes {
			prefixes = append(prefixes, p.Prefix)
		}

		if limit > 0 && len(objects)+len(prefixes) >= limit {
			break
		}
		if !parsed.IsTruncated {
			break
		}
		token = parsed.NextToken
	}
	return objects, prefixes, nil
}
