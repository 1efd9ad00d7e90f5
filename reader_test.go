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

func seedFile(t *testing.T, be *fakeBackend, b *Bucket, name, content string) {
	t.Helper()
	f := b.File(name)
	require.NoError(t, f.Open(WriteOnly))
	_, err := f.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func TestReader_SeekThenReadPartial(t *testing.T) {
	be := newFakeBackend()
	b := newBucket(be, 0)
	seedFile(t, be, b, "doc.txt", "0123456789")

	f := b.File("doc.txt")
	require.NoError(t, f.Open(ReadOnly))
	defer f.Close()

	off, err := f.Seek(5, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(5), off)

	buf := make([]byte, 3)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "567", string(buf[:n]))
}

func TestReader_ReadToEOF(t *testing.T) {
	be := newFakeBackend()
	b := newBucket(be, 0)
	seedFile(t, be, b, "doc.txt", "abcde")

	f := b.File("doc.txt")
	require.NoError(t, f.Open(ReadOnly))
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "abcde", string(data))
}

func TestReader_ServerIgnoringRangeIsAnError(t *testing.T) {
	be := newFakeBackend()
	be.ignoreRange = true
	b := newBucket(be, 0)
	seedFile(t, be, b, "doc.txt", "0123456789")

	f := b.File("doc.txt")
	require.NoError(t, f.Open(ReadOnly))
	defer f.Close()

	buf := make([]byte, 3)
	_, err := f.Read(buf)
	assert.Error(t, err)
}

func TestReader_SeekClampsToBounds(t *testing.T) {
	be := newFakeBackend()
	b := newBucket(be, 0)
	seedFile(t, be, b, "doc.txt", "abc")

	f := b.File("doc.txt")
	require.NoError(t, f.Open(ReadOnly))
	defer f.Close()

	off, err := f.Seek(-10, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(0), off)

	off, err = f.Seek(1000, io.SeekStart)
	require.NoError(t, err)
	assert.Equal(t, int64(3), off)
}
