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

import "strings"

// JoinPath joins two VFS path components with "/" (spec.md §4.7's
// join_path): an empty left component yields the right one, unchanged.
func JoinPath(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return strings.TrimSuffix(a, "/") + "/" + strings.TrimPrefix(b, "/")
	}
}

// splitParent splits key into its parent prefix (including the trailing
// "/", or "" at the root) and its base name.
func splitParent(key string) (parent, name string) {
	if i := strings.LastIndexByte(key, '/'); i >= 0 {
		return key[:i+1], key[i+1:]
	}
	return "", key
}

// parseErrorCode maps the connection-error code strings produced by
// rest.ConnError (classifyConnError in rest/transport.go) onto the
// package's own ErrorCode enumeration.
func parseErrorCode(code string) ErrorCode {
	switch code {
	case "COULDNT_RESOLVE_HOST":
		return ErrCouldntResolveHost
	case "COULDNT_CONNECT":
		return ErrCouldntConnect
	case "OPERATION_TIMEDOUT":
		return ErrOperationTimedout
	case "SEND_ERROR":
		return ErrSendError
	case "RECV_ERROR":
		return ErrRecvError
	case "PARTIAL_FILE":
		return ErrPartialFile
	case "GOT_NOTHING":
		return ErrGotNothing
	case "SSL_CONNECT_ERROR":
		return ErrSSLConnectError
	case "HTTP2":
		return ErrHTTP2
	case "HTTP2_STREAM":
		return ErrHTTP2Stream
	default:
		return ErrUnknown
	}
}
