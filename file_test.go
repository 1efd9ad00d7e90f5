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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFile_WriteThenReadRoundTrip(t *testing.T) {
	b := newBucket(newFakeBackend(), 0)

	f := b.File("greeting.txt")
	require.NoError(t, f.Open(WriteOnly))
	_, err := f.Write([]byte("hello world"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rf := b.File("greeting.txt")
	require.NoError(t, rf.Open(ReadOnly))
	defer rf.Close()

	data, err := io.ReadAll(rf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
	assert.Equal(t, int64(len("hello world")), rf.FileSize())
}

func TestFile_OpenTwiceFails(t *testing.T) {
	b := newBucket(newFakeBackend(), 0)
	f := b.File("x.txt")
	require.NoError(t, f.Open(WriteOnly))
	defer f.Close()

	err := f.Open(WriteOnly)
	assert.Error(t, err)
}

func TestFile_ExistsAndRemove(t *testing.T) {
	b := newBucket(newFakeBackend(), 0)
	f := b.File("x.txt")

	ok, err := f.Exists()
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, f.Open(WriteOnly))
	_, err = f.Write([]byte("x"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	ok, err = f.Exists()
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.Remove())
	ok, err = f.Exists()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFile_Rename(t *testing.T) {
	b := newBucket(newFakeBackend(), 0)
	f := b.File("old.txt")
	require.NoError(t, f.Open(WriteOnly))
	_, err := f.Write([]byte("data"))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, f.Rename("new.txt"))
	assert.Equal(t, "new.txt", f.Path())

	ok, err := b.File("new.txt").Exists()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFile_Name(t *testing.T) {
	b := newBucket(newFakeBackend(), 0)
	f := b.File("a/b/c.txt")
	assert.Equal(t, "c.txt", f.Name())
}

func TestFile_ReadInvalidModeErrors(t *testing.T) {
	b := newBucket(newFakeBackend(), 0)
	f := b.File("a.txt")
	require.NoError(t, f.Open(WriteOnly))
	defer f.Close()

	_, err := f.Read(make([]byte, 1))
	assert.Error(t, err)
}
