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

package retry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_RequiresStopCriteria(t *testing.T) {
	_, err := NewConstant(time.Second).Build()
	assert.Error(t, err)
}

func TestDefaultStrategy_RetriesOnServerError(t *testing.T) {
	s := DefaultStrategy()
	s.Reset()
	_, ok := s.ShouldRetry(Outcome{Status: 503})
	assert.True(t, ok)
}

func TestDefaultStrategy_DoesNotRetryOnClientError(t *testing.T) {
	s := DefaultStrategy()
	s.Reset()
	_, ok := s.ShouldRetry(Outcome{Status: 400})
	assert.False(t, ok)
}

func TestRetryOnStatusWithSubstring(t *testing.T) {
	s, err := NewConstant(time.Millisecond).SetMaxAttempts(3).
		RetryOnStatus(409, "SlowDown").Build()
	require.NoError(t, err)
	s.Reset()

	_, ok := s.ShouldRetry(Outcome{Status: 409, Message: "please SlowDown"})
	assert.True(t, ok)

	s.Reset()
	_, ok = s.ShouldRetry(Outcome{Status: 409, Message: "conflict"})
	assert.False(t, ok)
}

func TestShouldRetry_NeverExceedsMaxAttempts(t *testing.T) {
	s, err := NewConstant(time.Microsecond).SetMaxAttempts(3).RetryOnServerErrors().Build()
	require.NoError(t, err)
	s.Reset()

	retries := 0
	for i := 0; i < 10; i++ {
		if _, ok := s.ShouldRetry(Outcome{Status: 503}); ok {
			retries++
		} else {
			break
		}
	}
	assert.LessOrEqual(t, retries, 2) // max attempts=3 means at most 2 retries
}

// Exponential backoff bounds: base=1s, grow=2, cap=4s, equal-jitter-on-429,
// max elapsed=12s. Against an infinite 429 stream the number of completed
// attempts is in [3, 6] and total wall time stays under the budget.
func TestExponentialBackoff_Bounds(t *testing.T) {
	s, err := NewExponential(time.Second, 2, 4*time.Second, JitterFull).
		SetMaxElapsedTime(12 * time.Second).
		RetryOnServerErrors().
		Build()
	require.NoError(t, err)
	s.Reset()

	var total time.Duration
	attempts := 1
	for {
		d, ok := s.ShouldRetry(Outcome{Status: 429})
		if !ok {
			break
		}
		total += d
		attempts++
		if attempts > 100 {
			t.Fatal("retry loop did not terminate")
		}
	}

	assert.GreaterOrEqual(t, attempts, 3)
	assert.LessOrEqual(t, attempts, 6)
	assert.Less(t, total, 12*time.Second)
}

func TestUnknownOutcome_RetriedUnderStandardLimits(t *testing.T) {
	s, err := NewConstant(time.Microsecond).SetMaxAttempts(2).Build()
	require.NoError(t, err)
	s.Reset()

	_, ok := s.ShouldRetry(Outcome{Unknown: true})
	assert.True(t, ok)
}
