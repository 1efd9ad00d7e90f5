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

// Package backend defines the common contract (spec.md §4.5) implemented
// by the three bucket adapters (S3, OCI, Azure Blob) and consumed by the
// VFS surface (bucket.go, prefix.go, file.go, writer.go) and the
// generalized multipart uploader.
package backend

import (
	"context"
	"fmt"
	"io"
)

// UnsupportedOperationError is returned by a Backend method that has no
// equivalent on that provider, e.g. RenameObject on Azure.
type UnsupportedOperationError struct {
	Backend, Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("backend: %s is not supported by the %s backend", e.Operation, e.Backend)
}

// ObjectDetails mirrors spec.md §3's Object_details value type.
type ObjectDetails struct {
	Name        string
	Size        uint64
	ETag        string
	TimeCreated string
}

// MultipartObject is the handle returned by CreateMultipartUpload.
type MultipartObject struct {
	Name     string
	UploadID string
}

// MultipartPart mirrors spec.md §3's Multipart_object_part.
type MultipartPart struct {
	PartNum uint32
	ETag    string
	Size    uint64
}

// ByteRange requests `[From, To]` inclusive-inclusive; From<0 means "last
// -From bytes" (a suffix range); To<0 with From>=0 means "From- " (tail).
type ByteRange struct {
	From, To int64
}

// Backend is the common contract exposed to the upper VFS layers (C7/C8),
// translating container-level operations into signed requests and parsing
// each provider's wire format. Implementations: backend/s3, backend/oci,
// backend/azureblob.
type Backend interface {
	// Name identifies the backend kind, e.g. "s3", "oci", "azure".
	Name() string

	ListObjects(ctx context.Context, prefix string, limit int, recursive bool) (objects []ObjectDetails, prefixes []string, err error)
	HeadObject(ctx context.Context, name string) (ObjectDetails, error)
	DeleteObject(ctx context.Context, name string) error
	DeleteObjects(ctx context.Context, names []string) error
	PutObject(ctx context.Context, name string, data []byte) (etag string, err error)
	GetObject(ctx context.Context, name string, w io.Writer, rng *ByteRange) error
	RenameObject(ctx context.Context, src, dst string) error

	ListMultipartUploads(ctx context.Context, limit int) ([]MultipartObject, error)
	ListMultipartUploadedParts(ctx context.Context, obj MultipartObject, limit int) ([]MultipartPart, error)
	CreateMultipartUpload(ctx context.Context, name string) (MultipartObject, error)
	UploadPart(ctx context.Context, obj MultipartObject, partNum uint32, data []byte) (etag string, err error)
	CommitMultipartUpload(ctx context.Context, obj MultipartObject, parts []MultipartPart) (etag string, err error)
	AbortMultipartUpload(ctx context.Context, obj MultipartObject) error

	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context) error
	Delete(ctx context.Context) error

	// MinPartSize/MaxPartSize bound the range newBucket clamps the
	// configured part size into, since OCI (5 GiB) and Azure (4000 MiB)
	// maxima differ (spec.md §9).
	MinPartSize() int64
	MaxPartSize() int64
}
