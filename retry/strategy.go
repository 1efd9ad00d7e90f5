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

// Package retry implements the jittered backoff retry strategy used by the
// signed REST service (C4) to decide whether and when to repeat a failed
// request.
package retry

import (
	"math/rand"
	"strings"
	"time"
)

// Jitter selects how the computed delay is randomized.
type Jitter int

const (
	// JitterFull samples uniformly from [0, max].
	JitterFull Jitter = iota
	// JitterEqual samples uniformly from [max/2, max]. Auto-selected
	// whenever the precipitating error is HTTP 429.
	JitterEqual
)

// Decision is the tagged sum a condition function returns: nil means "no
// opinion, try the next condition"; Retry/NoRetry are terminal decisions.
type Decision int

const (
	// NoOpinion lets later conditions, then the attempt/time budget, decide.
	NoOpinion Decision = iota
	Retry
	NoRetry
)

// Outcome describes the result of one attempt, fed to the registered
// conditions in FIFO order.
type Outcome struct {
	// Status is the HTTP status code, or 0 for a connection-layer failure.
	Status int
	// Message is the server's textual error message, if any.
	Message string
	// ConnCode names a connection-layer failure (ignored when Status != 0).
	ConnCode string
	// Unknown marks an outcome that is neither a classified response nor a
	// classified connection error; retried under the standard limits.
	Unknown bool
}

// Condition inspects an Outcome and returns a Decision.
type Condition func(Outcome) Decision

// Strategy decides whether and when to repeat a failed request, per
// spec.md §4.2 / mysqlshdk's Retry_strategy hierarchy.
type Strategy struct {
	base, cap time.Duration
	grow      float64
	jitter    Jitter

	maxAttempts int
	maxElapsed  time.Duration

	conditions []Condition

	attempt int
	start   time.Time
	rnd     *rand.Rand
}

// Builder assembles a Strategy; Build fails if neither stop criterion was
// set, mirroring the original's "rejects construction with neither" rule.
type Builder struct {
	s   Strategy
	err error
}

// NewConstant builds a strategy with a fixed per-attempt delay.
func NewConstant(delay time.Duration) *Builder {
	return &Builder{s: Strategy{base: delay, cap: delay, grow: 1, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}}
}

// NewExponential builds a strategy with `base * grow^attempt` delay,
// clamped to cap and jittered.
func NewExponential(base time.Duration, grow float64, cap time.Duration, jitter Jitter) *Builder {
	return &Builder{s: Strategy{base: base, grow: grow, cap: cap, jitter: jitter, rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}}
}

// SetMaxAttempts sets the attempt-count stop criterion.
func (b *Builder) SetMaxAttempts(n int) *Builder {
	b.s.maxAttempts = n
	return b
}

// SetMaxElapsedTime sets the wall-clock stop criterion.
func (b *Builder) SetMaxElapsedTime(d time.Duration) *Builder {
	b.s.maxElapsed = d
	return b
}

// RetryOnServerErrors retries any 5xx response.
func (b *Builder) RetryOnServerErrors() *Builder {
	b.s.conditions = append(b.s.conditions, func(o Outcome) Decision {
		if o.Status >= 500 && o.Status < 600 {
			return Retry
		}
		return NoOpinion
	})
	return b
}

// RetryOnStatus retries exactly the given status, optionally only when the
// message contains substr.
func (b *Builder) RetryOnStatus(status int, substr string) *Builder {
	b.s.conditions = append(b.s.conditions, func(o Outcome) Decision {
		if o.Status != status {
			return NoOpinion
		}
		if substr != "" && !strings.Contains(o.Message, substr) {
			return NoOpinion
		}
		return Retry
	})
	return b
}

// RetryOnConnCode retries a specific connection-layer error code.
func (b *Builder) RetryOnConnCode(code string) *Builder {
	b.s.conditions = append(b.s.conditions, func(o Outcome) Decision {
		if o.Status == 0 && o.ConnCode == code {
			return Retry
		}
		return NoOpinion
	})
	return b
}

// Build finalizes the strategy.
func (b *Builder) Build() (*Strategy, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.s.maxAttempts <= 0 && b.s.maxElapsed <= 0 {
		return nil, errNoStopCriteria
	}
	// Unknown outcomes are always retried under the standard limits.
	b.s.conditions = append(b.s.conditions, func(o Outcome) Decision {
		if o.Unknown {
			return Retry
		}
		return NoOpinion
	})
	s := b.s
	return &s, nil
}

var errNoStopCriteria = &stopCriteriaError{}

type stopCriteriaError struct{}

func (*stopCriteriaError) Error() string {
	return "retry strategy requires at least one stop criterion (max attempts or max elapsed time)"
}

// DefaultStrategy mirrors spec.md §4.2's default: exponential backoff,
// base=1s, grow=2, cap=60s, equal jitter on 429, max attempts=10, retry on
// 5xx and the named connection error codes.
func DefaultStrategy() *Strategy {
	s, _ := NewExponential(time.Second, 2, 60*time.Second, JitterFull).
		SetMaxAttempts(10).
		RetryOnServerErrors().
		RetryOnConnCode("COULDNT_RESOLVE_HOST").
		RetryOnConnCode("COULDNT_CONNECT").
		RetryOnConnCode("OPERATION_TIMEDOUT").
		RetryOnConnCode("SEND_ERROR").
		RetryOnConnCode("RECV_ERROR").
		RetryOnConnCode("PARTIAL_FILE").
		RetryOnConnCode("GOT_NOTHING").
		RetryOnConnCode("SSL_CONNECT_ERROR").
		RetryOnConnCode("HTTP2").
		RetryOnConnCode("HTTP2_STREAM").
		Build()
	return s
}

// Reset records the start time and zeroes the attempt counter; called once
// per outer (logical) call before the first attempt.
func (s *Strategy) Reset() {
	s.attempt = 0
	s.start = time.Now()
}

// ShouldRetry evaluates the registered conditions in FIFO order (the first
// to decide wins), then enforces the attempt/time budget, then returns the
// delay to wait before the next attempt.
func (s *Strategy) ShouldRetry(o Outcome) (time.Duration, bool) {
	decided := NoRetry
	for _, c := range s.conditions {
		switch c(o) {
		case Retry:
			decided = Retry
		case NoRetry:
			// FIFO means the first *decisive* condition wins, so stop
			// here; later conditions are not consulted.
		default:
			continue
		}
		break
	}
	if decided != Retry {
		return 0, false
	}

	if s.maxAttempts > 0 && s.attempt+1 >= s.maxAttempts {
		return 0, false
	}

	jitter := s.jitter
	if o.Status == 429 {
		jitter = JitterEqual
	}
	next := s.nextDelay(jitter)

	if s.maxElapsed > 0 {
		elapsed := time.Since(s.start)
		if elapsed+next >= s.maxElapsed {
			return 0, false
		}
	}

	s.attempt++
	return next, true
}

func (s *Strategy) nextDelay(jitter Jitter) time.Duration {
	raw := float64(s.base) * pow(s.grow, s.attempt)
	if time.Duration(raw) > s.cap || raw <= 0 {
		raw = float64(s.cap)
	}
	max := raw
	min := 0.0
	if jitter == JitterEqual {
		min = max / 2
	}
	d := min + s.rnd.Float64()*(max-min)
	return time.Duration(d)
}

func pow(base float64, exp int) float64 {
	if exp <= 0 {
		return base
	}
	r := base
	for i := 0; i < exp; i++ {
		r *= base
	}
	return r
}
