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
	"bytes"
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// namedFile is a minimal NamedFile backed by an in-memory byte slice, used
// so tests exercise the exact contract (fs.File + Path()) that Bucket's
// File type satisfies in the production package.
type namedFile struct {
	path string
	*bytes.Reader
}

func (f *namedFile) Path() string       { return f.path }
func (f *namedFile) Close() error       { return nil }
func (f *namedFile) Stat() (fs.FileInfo, error) { return nil, fs.ErrInvalid }

// namedFS is a flat fs.FS whose Open always returns a namedFile, and whose
// ReadDir lists every entry one path-segment below name. It intentionally
// does not implement VisitDirFS, exercising fsutil's ReadDir-based
// fallback path.
type namedFS struct {
	files map[string][]byte
}

func (m *namedFS) Open(name string) (fs.File, error) {
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &namedFile{path: name, Reader: bytes.NewReader(data)}, nil
}

func (m *namedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	prefix := ""
	if name != "." {
		prefix = name + "/"
	}
	seen := map[string]bool{}
	var out []fs.DirEntry
	for p := range m.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rel := strings.TrimPrefix(p, prefix)
		isDir := false
		if idx := strings.IndexByte(rel, '/'); idx >= 0 {
			rel = rel[:idx]
			isDir = true
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true
		out = append(out, &dirEntryStub{name: rel, isDir: isDir})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

type dirEntryStub struct {
	name  string
	isDir bool
}

func (e *dirEntryStub) Name() string               { return e.name }
func (e *dirEntryStub) IsDir() bool                { return e.isDir }
func (e *dirEntryStub) Type() fs.FileMode          { if e.isDir { return fs.ModeDir }; return 0 }
func (e *dirEntryStub) Info() (fs.FileInfo, error) { return nil, fs.ErrInvalid }

func testFS() *namedFS {
	return &namedFS{files: map[string][]byte{
		"a/one.csv":   []byte("1"),
		"a/two.csv":   []byte("2"),
		"a/skip.json": []byte("{}"),
		"b/three.csv": []byte("3"),
	}}
}

func TestOpenGlob_MatchesAcrossDirectories(t *testing.T) {
	files, err := OpenGlob(testFS(), "*/*.csv")
	require.NoError(t, err)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()

	var names []string
	for _, f := range files {
		names = append(names, f.Path())
	}
	assert.ElementsMatch(t, []string{"a/one.csv", "a/two.csv", "b/three.csv"}, names)
}

func TestOpenGlob_SingleDirectory(t *testing.T) {
	files, err := OpenGlob(testFS(), "a/*.csv")
	require.NoError(t, err)
	defer func() {
		for _, f := range files {
			f.Close()
		}
	}()
	assert.Len(t, files, 2)
}

func TestWalkGlob_SeekSkipsAtOrBefore(t *testing.T) {
	var seen []string
	err := WalkGlob(testFS(), "a/one.csv", "*/*.csv", func(p string, f fs.File, err error) error {
		require.NoError(t, err)
		defer f.Close()
		seen = append(seen, p)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a/two.csv", "b/three.csv"}, seen)
}

func TestWalkGlob_NoMatches(t *testing.T) {
	var seen []string
	err := WalkGlob(testFS(), "", "*/*.yaml", func(p string, f fs.File, err error) error {
		seen = append(seen, p)
		return nil
	})
	require.NoError(t, err)
	assert.Empty(t, seen)
}
