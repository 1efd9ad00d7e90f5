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

// Package objectfs implements a unified, signed, retrying, streaming
// read/write virtual file system over AWS S3, Azure Blob Storage, Oracle
// Cloud Object Storage and plain HTTP.
package objectfs

import (
	"errors"
	"fmt"
	"io/fs"
)

// ErrInvalidBucket is returned whenever a bucket/container name fails
// backend-specific validation.
var ErrInvalidBucket = errors.New("invalid bucket name")

// ErrorCode is a reduced, CURL-aligned connection-error enumeration. Only
// the codes the default retry policy (see retry.DefaultStrategy) names
// explicitly are modeled; everything else collapses to ErrUnknown.
type ErrorCode int

const (
	ErrUnknown ErrorCode = iota
	ErrCouldntResolveHost
	ErrCouldntConnect
	ErrOperationTimedout
	ErrSendError
	ErrRecvError
	ErrPartialFile
	ErrGotNothing
	ErrSSLConnectError
	ErrHTTP2
	ErrHTTP2Stream
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCouldntResolveHost:
		return "COULDNT_RESOLVE_HOST"
	case ErrCouldntConnect:
		return "COULDNT_CONNECT"
	case ErrOperationTimedout:
		return "OPERATION_TIMEDOUT"
	case ErrSendError:
		return "SEND_ERROR"
	case ErrRecvError:
		return "RECV_ERROR"
	case ErrPartialFile:
		return "PARTIAL_FILE"
	case ErrGotNothing:
		return "GOT_NOTHING"
	case ErrSSLConnectError:
		return "SSL_CONNECT_ERROR"
	case ErrHTTP2:
		return "HTTP2"
	case ErrHTTP2Stream:
		return "HTTP2_STREAM"
	default:
		return "UNKNOWN"
	}
}

// ResponseError carries an HTTP status code and the server's textual
// message. Numeric() mirrors the original mysql-shell "54000 + status"
// mapping used to key errors uniformly across backends.
type ResponseError struct {
	Op      string
	Path    string
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("failed to %s '%s': %d %s", e.Op, e.Path, e.Status, e.Message)
}

// Numeric returns the "54000 + status" diagnostic code.
func (e *ResponseError) Numeric() int { return 54000 + e.Status }

// Is lets errors.Is(err, fs.ErrNotExist)/fs.ErrPermission work for the
// common statuses without the adapter having to wrap twice.
func (e *ResponseError) Is(target error) bool {
	switch {
	case target == fs.ErrNotExist:
		return e.Status == 404
	case target == fs.ErrPermission:
		return e.Status == 403 || e.Status == 401
	}
	return false
}

// ConnectionError represents a transport-layer failure that never reached
// the server far enough to produce an HTTP status.
type ConnectionError struct {
	Code    ErrorCode
	Message string
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error [%s]: %s", e.Code, e.Message)
}

// ParseError is raised by list/response parsers on structurally invalid
// XML/JSON, e.g. a missing required element. Context records the failing
// element chain, e.g. "ListBucketResult.Contents.Key".
type ParseError struct {
	Context string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Context, e.Message)
}

// ValidationError is raised before any I/O for malformed input: bad part
// size, missing SAS attributes, invalid bucket names, unknown config keys.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// UnsupportedError is raised for operations a backend explicitly does not
// implement (Azure rename, Azure pure-suffix ranges).
type UnsupportedError struct {
	Operation string
	Backend   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("the %s operation is not supported in %s.", e.Operation, e.Backend)
}

// badpath builds an *fs.PathError the same way the teacher's helper did,
// generalized to any backend operation name.
func badpath(op, name string) error {
	return &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
}

// badBucket wraps ErrInvalidBucket with the offending bucket name.
func badBucket(bucket string) error {
	return fmt.Errorf("invalid bucket name %q: %w", bucket, ErrInvalidBucket)
}
