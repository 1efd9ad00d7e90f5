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

// Package fsutil provides directory-walking and glob helpers shared by the
// VFS surface (bucket.go, prefix.go, file.go) and the HTTP-only backend
// (httpfs). Backends that can push seek/pattern filtering into their own
// listing call (S3 prefix+start-after, for instance) implement VisitDirFS;
// everything else falls back to a plain fs.ReadDir-based walk.
package fsutil

import (
	"io/fs"
	"path"
	"strings"
)

// DirEntry is the entry type yielded while walking; it is exactly
// fs.DirEntry; the alias exists so call sites don't need to import io/fs
// just to name the walk-callback parameter type.
type DirEntry = fs.DirEntry

// VisitDirFn is called once per directory entry during a VisitDir walk.
type VisitDirFn func(DirEntry) error

// WalkDirFn is called once per visited path during a WalkDir walk. An err
// of fs.SkipDir skips the remainder of the containing directory; fs.SkipAll
// stops the walk entirely.
type WalkDirFn func(p string, d DirEntry, err error) error

// Opener is implemented by directory entries (File, Prefix) that can
// re-open themselves without a fresh Open call on the parent.
type Opener interface {
	Open() (fs.File, error)
}

// VisitDirFS is the optional interface a fs.FS can implement to push
// seek/pattern filtering into its own listing call, instead of fsutil
// reading every entry and filtering client-side. name is the directory to
// list ("." for the root); seek, if non-empty, restricts results to
// entries sorting strictly after it; pattern, if non-empty, is a
// path.Match pattern against each entry's Name().
type VisitDirFS interface {
	VisitDir(name, seek, pattern string, fn VisitDirFn) error
}

// VisitDir lists the entries of name within fsys, filtered by seek and
// pattern, in ascending name order. If fsys implements VisitDirFS, the
// call is delegated directly so the backend can push the filter down into
// its own listing request; otherwise VisitDir reads the full directory via
// fs.ReadDir (whose entries are already sorted by name) and filters here.
func VisitDir(fsys fs.FS, name, seek, pattern string, fn VisitDirFn) error {
	if v, ok := fsys.(VisitDirFS); ok {
		return v.VisitDir(name, seek, pattern, fn)
	}
	entries, err := fs.ReadDir(fsys, name)
	if err != nil {
		return err
	}
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

// WalkDir walks the file tree rooted at name, calling fn for every path
// that sorts strictly after seek and matches pattern (matched against the
// full path relative to name, mirroring fs.WalkDir semantics). Returning
// fs.SkipDir from fn skips the remainder of the directory just visited;
// fs.SkipAll stops the walk immediately without error.
func WalkDir(fsys fs.FS, name, seek, pattern string, fn WalkDirFn) error {
	err := walkDir(fsys, name, seek, pattern, fn)
	if err == fs.SkipAll { //nolint:errorlint
		return nil
	}
	return err
}

func walkDir(fsys fs.FS, name, seek, pattern string, fn WalkDirFn) error {
	info, err := fs.Stat(fsys, name)
	if err != nil {
		return fn(name, nil, err)
	}
	if !info.IsDir() {
		if pattern != "" {
			if ok, merr := path.Match(pattern, name); merr != nil {
				return merr
			} else if !ok {
				return nil
			}
		}
		if pathcmp(name, seek) <= 0 {
			return nil
		}
		return fn(name, fs.FileInfoToDirEntry(info), nil)
	}

	visitErr := VisitDir(fsys, name, "", "", func(d DirEntry) error {
		child := d.Name()
		if name != "." {
			child = path.Join(name, child)
		}
		// prune subtrees that sort entirely before seek
		if treecmp(child, seek) > 0 {
			return nil
		}
		return walkDir(fsys, child, seek, pattern, fn)
	})
	if visitErr == fs.SkipDir { //nolint:errorlint
		return nil
	}
	return visitErr
}

// segments counts the "/"-separated path components of p (0 for "" or
// "."), reporting false if p is not a valid fs.FS path.
func segments(p string) (int, bool) {
	if p == "" || p == "." {
		return 0, true
	}
	if !fs.ValidPath(p) {
		return 0, false
	}
	return strings.Count(p, "/") + 1, true
}

// trim splits p into its first n components joined back together (front)
// and the (n+1)th component on its own (next); next is "" once p is
// exhausted. ok is false if p is not a valid fs.FS path.
func trim(p string, n int) (front, next string, ok bool) {
	if p != "" && !fs.ValidPath(p) {
		return "", "", false
	}
	if p == "" || p == "." {
		if n == 0 {
			return "", p, true
		}
		return p, "", true
	}
	parts := strings.Split(p, "/")
	if len(parts) <= n {
		return path.Join(parts...), "", true
	}
	return path.Join(parts[:n]...), parts[n], true
}

// pathcmp orders two fs.FS paths component-wise, treating "." as the
// (empty) root path.
func pathcmp(a, b string) int {
	if a == "." {
		a = ""
	}
	if b == "." {
		b = ""
	}
	as := strings.Split(a, "/")
	bs := strings.Split(b, "/")
	for i := 0; i < len(as) && i < len(bs); i++ {
		if as[i] != bs[i] {
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(as) < len(bs):
		return -1
	case len(as) > len(bs):
		return 1
	default:
		return 0
	}
}

// treecmp reports whether p falls before (-1), within (0), or after (1)
// the subtree rooted at root. The empty root (".") contains everything.
func treecmp(root, p string) int {
	if root == "." {
		return 0
	}
	if p == "." || p == "" {
		return -1
	}
	if root == p || (strings.HasPrefix(p, root) && len(p) > len(root) && p[len(root)] == '/') {
		return 0
	}
	return pathcmp(p, root)
}
