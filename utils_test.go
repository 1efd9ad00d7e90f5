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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinPath(t *testing.T) {
	cases := []struct{ a, b, want string }{
		{"", "foo", "foo"},
		{"dir", "foo", "dir/foo"},
		{"dir/", "foo", "dir/foo"},
		{"dir", "/foo", "dir/foo"},
		{"", "", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, JoinPath(c.a, c.b))
	}
}

func TestSplitParent(t *testing.T) {
	parent, name := splitParent("a/b/c.txt")
	assert.Equal(t, "a/b/", parent)
	assert.Equal(t, "c.txt", name)

	parent, name = splitParent("c.txt")
	assert.Equal(t, "", parent)
	assert.Equal(t, "c.txt", name)
}

func TestParseErrorCode(t *testing.T) {
	assert.Equal(t, ErrCouldntResolveHost, parseErrorCode("COULDNT_RESOLVE_HOST"))
	assert.Equal(t, ErrUnknown, parseErrorCode("something-unrecognized"))
}
