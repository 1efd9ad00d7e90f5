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

package fsutil

import (
	"io/fs"
	"path"
	"strings"
)

// NamedFile is an open file that also knows the path it was opened from,
// the shape File (in the root package) satisfies.
type NamedFile interface {
	fs.File
	Path() string
}

// WalkGlob matches pattern component-by-component against the directory
// tree of fsys, opening and yielding every leaf file whose path sorts
// strictly after seek. Unlike path.Match against a whole path, each "/"
// -separated segment of pattern is matched against the corresponding path
// segment, so a directory is only descended into when its name matches
// the segment at that depth: this lets the walk prune whole subtrees
// instead of listing everything and filtering after the fact.
//
// A directory entry that satisfies the final pattern segment is not
// yielded (pattern only ever names files); only segments with a matching
// descendant past them cause further recursion.
func WalkGlob(fsys fs.FS, seek, pattern string, fn func(p string, f fs.File, err error) error) error {
	err := walkGlob(fsys, ".", splitPattern(pattern), seek, fn)
	if err == fs.SkipAll { //nolint:errorlint
		return nil
	}
	return err
}

func splitPattern(pattern string) []string {
	if pattern == "" || pattern == "." {
		return nil
	}
	return strings.Split(pattern, "/")
}

func walkGlob(fsys fs.FS, dir string, segs []string, seek string, fn func(string, fs.File, error) error) error {
	if len(segs) == 0 {
		return nil
	}
	comp, rest := segs[0], segs[1:]
	return VisitDir(fsys, dir, "", comp, func(d DirEntry) error {
		full := d.Name()
		if dir != "." {
			full = path.Join(dir, full)
		}
		if len(rest) == 0 {
			if d.IsDir() {
				return nil
			}
			if seek != "" && pathcmp(full, seek) <= 0 {
				return nil
			}
			f, err := fsys.Open(full)
			return fn(full, f, err)
		}
		if !d.IsDir() {
			return nil
		}
		if treecmp(full, seek) > 0 {
			return nil
		}
		err := walkGlob(fsys, full, rest, seek, fn)
		if err == fs.SkipDir { //nolint:errorlint
			return nil
		}
		return err
	})
}

// OpenGlob collects every file matched by WalkGlob(fsys, "", pattern, ...)
// into a slice, already in path order. Callers must Close each returned
// file; on error, any files already opened are closed before returning.
func OpenGlob(fsys fs.FS, pattern string) ([]NamedFile, error) {
	var out []NamedFile
	err := WalkGlob(fsys, "", pattern, func(p string, f fs.File, err error) error {
		if err != nil {
			return err
		}
		nf, ok := f.(NamedFile)
		if !ok {
			return fs.ErrInvalid
		}
		out = append(out, nf)
		return nil
	})
	if err != nil {
		for _, f := range out {
			f.Close() //nolint:errcheck
		}
		return nil, err
	}
	return out, nil
}
