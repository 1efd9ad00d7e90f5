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

// Package signer defines the common contract implemented by the three
// concrete request signers (AWS SigV4, OCI, Azure Shared Key/SAS).
package signer

import (
	"net/http"
	"time"
)

// Signer decides whether a request must be signed and, if so, applies the
// header set (or query parameters) to the request in place. Implementations must be deterministic given
// (request, now, credentials): Sign(r, t) == Sign(r, t) byte-for-byte.
type Signer interface {
	// ShouldSign reports whether req needs an authorization header/query
	// parameters at all (e.g. an Azure SAS-configured signer still needs to
	// append query parameters even though it never sets Authorization).
	ShouldSign(req *http.Request) bool

	// Sign computes and applies the header set (and/or query parameters)
	// for req as of now. body is the request payload, or nil.
	Sign(req *http.Request, now time.Time, body []byte) error

	// RefreshCredentials re-resolves credentials (STS, profile, metadata)
	// and reports whether anything changed.
	RefreshCredentials() (changed bool, err error)

	// CredentialsExpired reports whether the held credentials are stale as
	// of now and a refresh should be attempted proactively.
	CredentialsExpired(now time.Time) bool
}
