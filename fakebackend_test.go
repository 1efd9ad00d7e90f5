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
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/dumpfs/objectfs/backend"
)

// fakeBackend is an in-memory backend.Backend used to unit-test the VFS
// surface (Bucket/File/Directory/reader/writer) without going through HTTP;
// the S3/OCI/Azure wire formats are exercised by the httptest-based tests
// in each backend package instead.
type fakeBackend struct {
	mu          sync.Mutex
	objects     map[string][]byte
	bucketExist bool

	uploads  map[string]*fakeUpload
	nextID   int
	minPart  int64
	maxPart  int64
	ignoreRange bool // simulate a server that returns 200 instead of 206
}

type fakeUpload struct {
	name  string
	parts map[uint32][]byte
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		objects:     make(map[string][]byte),
		bucketExist: true,
		uploads:     make(map[string]*fakeUpload),
		minPart:     1,
		maxPart:     5 << 30,
	}
}

func (b *fakeBackend) Name() string { return "fake" }

func (b *fakeBackend) ListObjects(_ context.Context, prefix string, limit int, recursive bool) ([]backend.ObjectDetails, []string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var names []string
	for n := range b.objects {
		if strings.HasPrefix(n, prefix) {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	var objs []backend.ObjectDetails
	var prefixSet = map[string]bool{}
	var prefixes []string
	for _, n := range names {
		rel := strings.TrimPrefix(n, prefix)
		if !recursive {
			if idx := strings.IndexByte(rel, '/'); idx >= 0 {
				p := prefix + rel[:idx+1]
				if !prefixSet[p] {
					prefixSet[p] = true
					prefixes = append(prefixes, p)
				}
				continue
			}
		}
		objs = append(objs, backend.ObjectDetails{Name: n, Size: uint64(len(b.objects[n]))})
		if limit > 0 && len(objs) >= limit {
			break
		}
	}
	sort.Strings(prefixes)
	return objs, prefixes, nil
}

func (b *fakeBackend) HeadObject(_ context.Context, name string) (backend.ObjectDetails, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[name]
	if !ok {
		return backend.ObjectDetails{}, &ResponseError{Op: "head", Path: name, Status: 404, Message: "not found"}
	}
	return backend.ObjectDetails{Name: name, Size: uint64(len(data))}, nil
}

func (b *fakeBackend) DeleteObject(_ context.Context, name string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, name)
	return nil
}

func (b *fakeBackend) DeleteObjects(_ context.Context, names []string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, n := range names {
		delete(b.objects, n)
	}
	return nil
}

func (b *fakeBackend) PutObject(_ context.Context, name string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := append([]byte(nil), data...)
	b.objects[name] = cp
	return fmt.Sprintf("%x", len(cp)), nil
}

func (b *fakeBackend) GetObject(_ context.Context, name string, w io.Writer, rng *backend.ByteRange) error {
	b.mu.Lock()
	data, ok := b.objects[name]
	b.mu.Unlock()
	if !ok {
		return &ResponseError{Op: "get", Path: name, Status: 404, Message: "not found"}
	}
	if rng == nil || b.ignoreRange {
		_, err := w.Write(data)
		return err
	}
	from, to := rng.From, rng.To
	if to >= int64(len(data)) {
		to = int64(len(data)) - 1
	}
	if from < 0 || from > to {
		return fmt.Errorf("fakeBackend: invalid range [%d,%d]", from, to)
	}
	_, err := w.Write(data[from : to+1])
	return err
}

func (b *fakeBackend) RenameObject(_ context.Context, src, dst string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.objects[src]
	if !ok {
		return &ResponseError{Op: "rename", Path: src, Status: 404, Message: "not found"}
	}
	b.objects[dst] = data
	delete(b.objects, src)
	return nil
}

func (b *fakeBackend) ListMultipartUploads(_ context.Context, limit int) ([]backend.MultipartObject, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []backend.MultipartObject
	for id, u := range b.uploads {
		out = append(out, backend.MultipartObject{Name: u.name, UploadID: id})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (b *fakeBackend) ListMultipartUploadedParts(_ context.Context, obj backend.MultipartObject, limit int) ([]backend.MultipartPart, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.uploads[obj.UploadID]
	if !ok {
		return nil, &ResponseError{Op: "list_parts", Path: obj.Name, Status: 404, Message: "no such upload"}
	}
	var nums []uint32
	for n := range u.parts {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	var out []backend.MultipartPart
	for _, n := range nums {
		out = append(out, backend.MultipartPart{PartNum: n, Size: uint64(len(u.parts[n])), ETag: fmt.Sprintf("%x", len(u.parts[n]))})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (b *fakeBackend) CreateMultipartUpload(_ context.Context, name string) (backend.MultipartObject, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := fmt.Sprintf("upload-%d", b.nextID)
	b.uploads[id] = &fakeUpload{name: name, parts: make(map[uint32][]byte)}
	return backend.MultipartObject{Name: name, UploadID: id}, nil
}

func (b *fakeBackend) UploadPart(_ context.Context, obj backend.MultipartObject, partNum uint32, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.uploads[obj.UploadID]
	if !ok {
		return "", &ResponseError{Op: "upload_part", Path: obj.Name, Status: 404, Message: "no such upload"}
	}
	cp := append([]byte(nil), data...)
	u.parts[partNum] = cp
	return fmt.Sprintf("%x", len(cp)), nil
}

func (b *fakeBackend) CommitMultipartUpload(_ context.Context, obj backend.MultipartObject, parts []backend.MultipartPart) (string, error) {
	b.mu.Lock()
	u, ok := b.uploads[obj.UploadID]
	if !ok {
		b.mu.Unlock()
		return "", &ResponseError{Op: "commit", Path: obj.Name, Status: 404, Message: "no such upload"}
	}
	var buf []byte
	for _, p := range parts {
		buf = append(buf, u.parts[p.PartNum]...)
	}
	delete(b.uploads, obj.UploadID)
	b.mu.Unlock()
	return b.PutObject(context.Background(), obj.Name, buf)
}

func (b *fakeBackend) AbortMultipartUpload(_ context.Context, obj backend.MultipartObject) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.uploads, obj.UploadID)
	return nil
}

func (b *fakeBackend) Exists(context.Context) (bool, error) { return b.bucketExist, nil }
func (b *fakeBackend) Create(context.Context) error          { b.bucketExist = true; return nil }
func (b *fakeBackend) Delete(context.Context) error          { b.bucketExist = false; return nil }

func (b *fakeBackend) MinPartSize() int64 { return b.minPart }
func (b *fakeBackend) MaxPartSize() int64 { return b.maxPart }

var _ backend.Backend = (*fakeBackend)(nil)
