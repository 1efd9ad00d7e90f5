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

// Package azureblob adapts Azure Blob Storage's block-blob REST API
// (comp=block / comp=blocklist staging, XML listing) to the
// backend.Backend contract. Azure has no native rename operation and, like
// OCI, no bulk-delete operation.
package azureblob

import (
	"net/url"

	"github.com/dumpfs/objectfs/rest"
)

// Client adapts a container within an Azure Storage account.
type Client struct {
	Service *rest.Service

	Account   string
	Container string
}

func (c *Client) host() string {
	return c.Account + ".blob.core.windows.net"
}

func (c *Client) containerURL(rawQuery string) string {
	u := url.URL{Scheme: "https", Host: c.host(), Path: "/" + c.Container, RawQuery: rawQuery}
	return u.String()
}

func (c *Client) blobURL(name, rawQuery string) string {
	u := url.URL{Scheme: "https", Host: c.host(), Path: "/" + c.Container + "/" + name, RawQuery: rawQuery}
	return u.String()
}

// Name implements backend.Backend.
func (c *Client) Name() string { return "azure" }

// MinPartSize implements backend.Backend.
func (c *Client) MinPartSize() int64 { return 5 * 1024 * 1024 }

// MaxPartSize implements backend.Backend: Azure's staged-block limit is
// 4000 MiB per block for accounts that support large block blobs.
func (c *Client) MaxPartSize() int64 { return 4000 * 1024 * 1024 }
