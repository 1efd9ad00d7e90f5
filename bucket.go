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

package objectfs

import (
	"context"
	"errors"

	"github.com/dumpfs/objectfs/backend"
	"github.com/dumpfs/objectfs/rest"
)

// Bucket is the root VFS handle over a backend.Backend: the generalized
// form of the teacher's S3-only Bucket, now holding whichever adapter
// Config.NewBucket constructed (S3, OCI or Azure).
type Bucket struct {
	backend  backend.Backend
	partSize int64
	ctx      context.Context
}

// newBucket clamps partSize into the backend's legal range (spec.md §9:
// OCI and Azure part-size maxima differ, so the clamp happens per-backend,
// not in the shared uploader).
func newBucket(be backend.Backend, partSize int64) *Bucket {
	if partSize <= 0 {
		partSize = DefaultPartSize
	}
	if min := be.MinPartSize(); partSize < min {
		partSize = min
	}
	if max := be.MaxPartSize(); partSize > max {
		partSize = max
	}
	return &Bucket{backend: be, partSize: partSize, ctx: context.Background()}
}

// WithContext returns a shallow copy of b that uses ctx for subsequent
// operations, mirroring the teacher's Bucket.WithContext.
func (b *Bucket) WithContext(ctx context.Context) *Bucket {
	c := *b
	c.ctx = ctx
	return &c
}

// Context returns the context operations issued through b should use.
func (b *Bucket) Context() context.Context {
	if b.ctx == nil {
		return context.Background()
	}
	return b.ctx
}

// Name identifies the backend kind ("s3", "oci" or "azure").
func (b *Bucket) Name() string { return b.backend.Name() }

// Exists reports whether the bucket/container itself exists.
func (b *Bucket) Exists() (bool, error) {
	ok, err := b.backend.Exists(b.Context())
	return ok, b.wrap("exists", b.Name(), err)
}

// Create creates the bucket/container.
func (b *Bucket) Create() error {
	return b.wrap("create", b.Name(), b.backend.Create(b.Context()))
}

// Delete removes the bucket/container.
func (b *Bucket) Delete() error {
	return b.wrap("delete", b.Name(), b.backend.Delete(b.Context()))
}

// Directory returns a Directory handle over prefix.
func (b *Bucket) Directory(prefix string) *Directory {
	return &Directory{bucket: b, prefix: normalizeDir(prefix)}
}

// File returns a File handle for the object at name. Open must be called
// before Read/Write/Seek/Close.
func (b *Bucket) File(name string) *File {
	return &File{bucket: b, name: name}
}

// JoinPath joins two path components the way this Bucket's VFS surface
// does (path separator "/", empty left component yields the right one).
func (b *Bucket) JoinPath(a, p string) string { return JoinPath(a, p) }

// wrap translates a rest/backend-level error into the package's C10 error
// taxonomy, attaching the failing operation and masked path (spec.md §7:
// "every exception carries ... the operation and the object's masked
// path").
func (b *Bucket) wrap(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var respErr *rest.ResponseError
	if errors.As(err, &respErr) {
		return &ResponseError{Op: op, Path: path, Status: respErr.Status, Message: respErr.Message}
	}
	var connErr *rest.ConnError
	if errors.As(err, &connErr) {
		return &ConnectionError{Code: parseErrorCode(connErr.Code), Message: connErr.Message}
	}
	var unsupported *backend.UnsupportedOperationError
	if errors.As(err, &unsupported) {
		return &UnsupportedError{Operation: unsupported.Operation, Backend: unsupported.Backend}
	}
	return err
}
