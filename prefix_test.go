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
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumpfs/objectfs/fsutil"
)

func TestNormalizeDir(t *testing.T) {
	assert.Equal(t, "", normalizeDir(""))
	assert.Equal(t, "", normalizeDir("/"))
	assert.Equal(t, "a/", normalizeDir("a"))
	assert.Equal(t, "a/", normalizeDir("a/"))
	assert.Equal(t, "a/b/", normalizeDir("/a/b/"))
}

func TestDirectory_ExistsAndCreate(t *testing.T) {
	be := newFakeBackend()
	b := newBucket(be, 0)

	d := b.Directory("logs")
	ok, err := d.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, d.Create())
	ok, err = d.Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirectory_ExistsFromObject(t *testing.T) {
	be := newFakeBackend()
	b := newBucket(be, 0)
	seedFile(t, be, b, "logs/today.txt", "x")

	ok, err := b.Directory("logs").Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDirectory_ListFiles(t *testing.T) {
	be := newFakeBackend()
	b := newBucket(be, 0)
	seedFile(t, be, b, "logs/a.txt", "1")
	seedFile(t, be, b, "logs/b.txt", "2")
	seedFile(t, be, b, "logs/sub/c.txt", "3")

	d := b.Directory("logs")
	files, err := d.ListFiles(false)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestDirectory_FilterFiles(t *testing.T) {
	be := newFakeBackend()
	b := newBucket(be, 0)
	seedFile(t, be, b, "logs/a.csv", "1")
	seedFile(t, be, b, "logs/b.json", "2")

	d := b.Directory("logs")
	files, err := d.FilterFiles("*.csv")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "logs/a.csv", files[0].Name)
}

func TestDirectory_ReadDirAndOpen(t *testing.T) {
	be := newFakeBackend()
	b := newBucket(be, 0)
	seedFile(t, be, b, "logs/a.txt", "hello")
	seedFile(t, be, b, "logs/sub/b.txt", "world")

	d := b.Directory("logs")
	entries, err := d.ReadDir(".")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"a.txt", "sub"}, names)

	f, err := d.Open("a.txt")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestDirectory_SatisfiesFSInterfaces(t *testing.T) {
	var _ fs.FS = (*Directory)(nil)
	var _ fs.ReadDirFS = (*Directory)(nil)
	var _ fsutil.VisitDirFS = (*Directory)(nil)
}
