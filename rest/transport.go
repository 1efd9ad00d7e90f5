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

// Package rest implements the HTTP transport wrapper (C1) and the signed
// REST service state machine (C4).
package rest

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// TransportConfig configures the C1 HTTP transport wrapper.
type TransportConfig struct {
	// UserAgent is sent as "product/version", e.g. "objectfs/1.0".
	UserAgent string
	// Timeout bounds a single request/response (default 30s, per spec.md §5).
	Timeout time.Duration
	// LowThroughputBytesPerSecond and LowThroughputWindow implement the
	// sustained low-throughput guard for PUT/GET bodies (spec.md §5:
	// "1024 bytes/s sustained for 60s").
	LowThroughputBytesPerSecond int64
	LowThroughputWindow         time.Duration
	// InsecureSkipVerify disables TLS peer/host verification (testing only).
	InsecureSkipVerify bool
}

// DefaultTransportConfig matches spec.md §4.1/§5's defaults.
func DefaultTransportConfig(userAgent string) TransportConfig {
	return TransportConfig{
		UserAgent:                   userAgent,
		Timeout:                     30 * time.Second,
		LowThroughputBytesPerSecond: 1024,
		LowThroughputWindow:         60 * time.Second,
	}
}

// NewClient builds an *http.Client per TransportConfig: keep-alive enabled,
// up to 20 redirects followed, a user-agent header stamped on every
// request, and low-throughput enforcement wrapped around response bodies.
func NewClient(cfg TransportConfig) *http.Client {
	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConnsPerHost:   10,
		ResponseHeaderTimeout: cfg.Timeout,
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.InsecureSkipVerify}, //nolint:gosec
	}

	return &http.Client{
		Timeout: 0, // per-request deadline is applied via context by the caller
		Transport: &userAgentTransport{
			base:      base,
			userAgent: cfg.UserAgent,
			minBps:    cfg.LowThroughputBytesPerSecond,
			window:    cfg.LowThroughputWindow,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 20 {
				return errors.New("stopped after 20 redirects")
			}
			return nil
		},
	}
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
	minBps    int64
	window    time.Duration
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	res, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, classifyConnError(err)
	}
	if t.minBps > 0 && t.window > 0 && res.Body != nil {
		res.Body = &throughputGuardedBody{
			ReadCloser: res.Body,
			minBps:     t.minBps,
			window:     t.window,
			started:    time.Now(),
		}
	}
	return res, nil
}

// throughputGuardedBody aborts a read once the sustained average rate over
// the configured window falls below minBps.
type throughputGuardedBody struct {
	io.ReadCloser
	minBps  int64
	window  time.Duration
	started time.Time
	read    int64
}

func (b *throughputGuardedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	b.read += int64(n)
	if elapsed := time.Since(b.started); elapsed >= b.window {
		rate := float64(b.read) / elapsed.Seconds()
		if rate < float64(b.minBps) {
			return n, fmt.Errorf("rest: sustained throughput %.0f B/s below minimum %d B/s over %s", rate, b.minBps, b.window)
		}
	}
	return n, err
}

// classifyConnError wraps a net/http transport error into the package's
// connection-error taxonomy (see rest.ConnError / errors.go ErrorCode).
func classifyConnError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &ConnError{Code: "OPERATION_TIMEDOUT", Message: err.Error()}
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &ConnError{Code: "COULDNT_RESOLVE_HOST", Message: err.Error()}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" {
			return &ConnError{Code: "COULDNT_CONNECT", Message: err.Error()}
		}
	}
	return &ConnError{Code: "UNKNOWN", Message: err.Error()}
}

// ConnError is the transport-level failure type fed into retry.Outcome.
type ConnError struct {
	Code    string
	Message string
}

func (e *ConnError) Error() string { return fmt.Sprintf("connection error [%s]: %s", e.Code, e.Message) }
