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

package rest

import (
	"errors"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dumpfs/objectfs/retry"
	"github.com/dumpfs/objectfs/signer"
)

// Service is the signed REST service (C4): it combines a transport (C1), a
// retry strategy (C2) and a Signer (C3), and caches short-lived signatures
// per (path, method). Per spec.md §4.4, a Service is thread-affine: it must
// only be used from the goroutine that created it (the Go analogue of "one
// OS thread per concurrent operation" in spec.md §5 — callers that want
// concurrency create one Service per goroutine).
type Service struct {
	Client *http.Client
	Signer signer.Signer
	Retry  *retry.Strategy
	Log    *zap.Logger

	cache map[cacheKey]cacheEntry
}

type cacheKey struct {
	path, method string
}

type cacheEntry struct {
	headers   http.Header
	computed  time.Time
}

const signatureCacheTTL = 60 * time.Second

// NewService constructs a Service with sane defaults: a nop logger and
// retry.DefaultStrategy.
func NewService(client *http.Client, s signer.Signer) *Service {
	return &Service{
		Client: client,
		Signer: s,
		Retry:  retry.DefaultStrategy(),
		Log:    zap.NewNop(),
		cache:  make(map[cacheKey]cacheEntry),
	}
}

func (s *Service) purgeExpired(now time.Time) {
	for k, e := range s.cache {
		if now.Sub(e.computed) >= signatureCacheTTL {
			delete(s.cache, k)
		}
	}
}

// Execute drives the PREPARE → (sign?) → EXECUTE → inspect-status state
// machine described in spec.md §4.4.
func (s *Service) Execute(req *http.Request, body []byte) (*http.Response, error) {
	s.Retry.Reset()
	refreshesLeft := 2
	bodyless := len(body) == 0

	for {
		now := time.Now().UTC()
		s.purgeExpired(now)

		key := cacheKey{req.URL.Path, req.Method}
		if bodyless {
			if entry, ok := s.cache[key]; ok && now.Sub(entry.computed) < signatureCacheTTL {
				for name, vals := range entry.headers {
					req.Header[name] = vals
				}
			} else if s.Signer.ShouldSign(req) {
				if err := s.Signer.Sign(req, now, body); err != nil {
					return nil, err
				}
				s.cache[key] = cacheEntry{headers: req.Header.Clone(), computed: now}
			}
		} else if s.Signer.ShouldSign(req) {
			if err := s.Signer.Sign(req, now, body); err != nil {
				return nil, err
			}
		}

		s.Log.Debug("executing signed request", zap.String("method", req.Method), zap.String("path", req.URL.Path))
		res, err := s.Client.Do(req)
		if err != nil {
			code := "UNKNOWN"
			var ce *ConnError
			if errors.As(err, &ce) {
				code = ce.Code
			}
			d, retryable := s.Retry.ShouldRetry(retry.Outcome{ConnCode: code})
			if !retryable {
				return nil, err
			}
			s.Log.Warn("retrying after connection error", zap.Error(err), zap.Duration("delay", d))
			time.Sleep(d)
			continue
		}

		if res.StatusCode >= 200 && res.StatusCode < 300 {
			return res, nil
		}

		if res.StatusCode == http.StatusUnauthorized && refreshesLeft > 0 {
			io.Copy(io.Discard, res.Body) //nolint:errcheck
			res.Body.Close()
			refreshesLeft--
			changed, err := s.Signer.RefreshCredentials()
			if err != nil {
				return nil, err
			}
			if changed {
				s.cache = make(map[cacheKey]cacheEntry)
			}
			continue
		}

		msg := extractMessage(res.Body)
		res.Body.Close()
		d, retryable := s.Retry.ShouldRetry(retry.Outcome{Status: res.StatusCode, Message: msg})
		if !retryable {
			return nil, &ResponseError{Status: res.StatusCode, Message: msg}
		}
		s.Log.Warn("retrying after response error", zap.Int("status", res.StatusCode), zap.Duration("delay", d))
		time.Sleep(d)
	}
}

// ResponseError mirrors the package-level objectfs error of the same name,
// kept local so rest has no import-cycle back to the root package.
type ResponseError struct {
	Status  int
	Message string
}

func (e *ResponseError) Error() string {
	return http.StatusText(e.Status) + ": " + e.Message
}

func extractMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 64*1024))
	if err != nil || len(b) == 0 {
		return ""
	}
	return string(b)
}
