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
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/dumpfs/objectfs/backend"
	"github.com/dumpfs/objectfs/fsutil"
)

// Directory is a logical prefix within a Bucket (spec.md §4.7/C7),
// generalizing the teacher's S3-only Prefix. Backends treat prefixes as
// virtual: a Directory materializes only once it contains objects or
// active multipart uploads, unless Create has set the local "created"
// flag.
type Directory struct {
	bucket  *Bucket
	prefix  string // "" (root) or ends with "/"
	created bool
}

// normalizeDir turns an arbitrary path into a canonical prefix: "" for
// the root, otherwise always ending in exactly one "/".
func normalizeDir(p string) string {
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return ""
	}
	return p + "/"
}

// Path returns the directory's prefix without its trailing slash.
func (d *Directory) Path() string { return strings.TrimSuffix(d.prefix, "/") }

func (d *Directory) child(prefix string) *Directory {
	return &Directory{bucket: d.bucket, prefix: prefix}
}

// Exists reports whether the directory has any object, active multipart
// upload, or was explicitly Create()d.
func (d *Directory) Exists() (bool, error) {
	if d.created {
		return true, nil
	}
	objs, _, err := d.bucket.backend.ListObjects(d.bucket.Context(), d.prefix, 1, true)
	if err != nil {
		return false, d.bucket.wrap("exists", d.Path(), err)
	}
	if len(objs) > 0 {
		return true, nil
	}
	uploads, err := d.bucket.backend.ListMultipartUploads(d.bucket.Context(), 0)
	if err != nil {
		return false, d.bucket.wrap("exists", d.Path(), err)
	}
	for _, u := range uploads {
		if strings.HasPrefix(u.Name, d.prefix) {
			return true, nil
		}
	}
	return false, nil
}

// Create marks the directory as logically present even before it holds
// any object, matching spec.md §4.7's "created flag" rule. It issues no
// I/O: backends model prefixes as virtual.
func (d *Directory) Create() error {
	d.created = true
	return nil
}

// ListFiles lists the immediate (non-recursive) children of the
// directory. When includeHidden is true, the names of active multipart
// uploads directly under this prefix are appended as well (spec.md
// §4.7's "hidden files are names of active multipart uploads").
func (d *Directory) ListFiles(includeHidden bool) ([]backend.ObjectDetails, error) {
	objs, _, err := d.bucket.backend.ListObjects(d.bucket.Context(), d.prefix, 0, false)
	if err != nil {
		return nil, d.bucket.wrap("list_files", d.Path(), err)
	}
	if !includeHidden {
		return objs, nil
	}
	uploads, err := d.bucket.backend.ListMultipartUploads(d.bucket.Context(), 0)
	if err != nil {
		return nil, d.bucket.wrap("list_files", d.Path(), err)
	}
	for _, u := range uploads {
		rel := strings.TrimPrefix(u.Name, d.prefix)
		if !strings.HasPrefix(u.Name, d.prefix) || rel == "" || strings.Contains(rel, "/") {
			continue
		}
		objs = append(objs, backend.ObjectDetails{Name: u.Name})
	}
	return objs, nil
}

// FilterFiles lists immediate children whose name (relative to this
// directory) matches a path.Match glob pattern.
func (d *Directory) FilterFiles(glob string) ([]backend.ObjectDetails, error) {
	all, err := d.ListFiles(false)
	if err != nil {
		return nil, err
	}
	out := make([]backend.ObjectDetails, 0, len(all))
	for _, o := range all {
		rel := strings.TrimPrefix(o.Name, d.prefix)
		ok, err := path.Match(glob, rel)
		if err != nil {
			return nil, &ValidationError{Field: "glob", Message: err.Error()}
		}
		if ok {
			out = append(out, o)
		}
	}
	return out, nil
}

// File returns a File handle for name, joined onto this directory's path.
func (d *Directory) File(name string) *File {
	return d.bucket.File(JoinPath(d.Path(), name))
}

// JoinPath joins two path components using this Directory's VFS
// conventions (path separator "/", empty left component yields the
// right one).
func (d *Directory) JoinPath(a, b string) string { return JoinPath(a, b) }

// objectDirEntry adapts a listed object or common-prefix rollup to
// fs.DirEntry/fs.FileInfo, so Directory can satisfy fsutil.VisitDirFS and
// fs.ReadDirFS without a second parallel entry type.
type objectDirEntry struct {
	name     string
	isDir    bool
	size     int64
	etag     string
	modified string
}

func (e *objectDirEntry) Name() string       { return e.name }
func (e *objectDirEntry) IsDir() bool        { return e.isDir }
func (e *objectDirEntry) Type() fs.FileMode  { return e.Mode() }
func (e *objectDirEntry) Info() (fs.FileInfo, error) { return e, nil }
func (e *objectDirEntry) Size() int64        { return e.size }
func (e *objectDirEntry) Sys() any           { return nil }

func (e *objectDirEntry) Mode() fs.FileMode {
	if e.isDir {
		return fs.ModeDir
	}
	return 0
}

func (e *objectDirEntry) ModTime() time.Time {
	t, _ := time.Parse(time.RFC3339, e.modified)
	return t
}

// VisitDir implements fsutil.VisitDirFS: it lists exactly the entries of
// the sub-directory named by name (joined onto d's own prefix) with the
// same paginated ListObjects call used by ListFiles, then applies the
// seek/pattern filter to the listed entries; the filter is not sent to
// the backend.
func (d *Directory) VisitDir(name, seek, pattern string, fn fsutil.VisitDirFn) error {
	dirPrefix := d.prefix
	if name != "." && name != "" {
		dirPrefix = JoinPath(d.prefix, name)
		if dirPrefix != "" {
			dirPrefix += "/"
		}
	}

	objs, prefixes, err := d.bucket.backend.ListObjects(d.bucket.Context(), dirPrefix, 0, false)
	if err != nil {
		return d.bucket.wrap("visitdir", dirPrefix, err)
	}

	entries := make([]fs.DirEntry, 0, len(objs)+len(prefixes))
	for _, o := range objs {
		rel := strings.TrimPrefix(o.Name, dirPrefix)
		if rel == "" {
			continue
		}
		entries = append(entries, &objectDirEntry{name: rel, size: int64(o.Size), etag: o.ETag, modified: o.TimeCreated})
	}
	for _, p := range prefixes {
		rel := strings.TrimSuffix(strings.TrimPrefix(p, dirPrefix), "/")
		if rel == "" {
			continue
		}
		entries = append(entries, &objectDirEntry{name: rel, isDir: true})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if seek != "" && e.Name() <= seek {
			continue
		}
		if pattern != "" {
			ok, err := path.Match(pattern, e.Name())
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return nil
}

// ReadDir implements fs.ReadDirFS in terms of VisitDir.
func (d *Directory) ReadDir(name string) ([]fs.DirEntry, error) {
	var out []fs.DirEntry
	err := d.VisitDir(name, "", "", func(e fsutil.DirEntry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}

// Open implements fs.FS: it opens name (relative to this Directory) as a
// File in ReadOnly mode. Directories themselves are not opened as files;
// use ReadDir to list one.
func (d *Directory) Open(name string) (fs.File, error) {
	if name == "." || name == "" {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	f := d.File(name)
	if err := f.Open(ReadOnly); err != nil {
		return nil, err
	}
	return f, nil
}
