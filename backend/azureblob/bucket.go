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
	"net/http"
)

// Exists reports whether the container exists and is accessible.
func (c *Client) Exists(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.containerURL("restype=container"), nil)
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

// Create issues a PUT ?restype=container request.
func (c *Client) Create(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.containerURL("restype=container"), nil)
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

// Delete removes the container and all of its blobs.
func (c *Client) Delete(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.containerURL("restype=container"), nil)
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
