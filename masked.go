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

// Masked pairs a sensitive value with the form that is safe to log. It
// mirrors the mysql-shell Masked_value<T>: requests use Real(), logs and
// error messages use Masked(). A value constructed with no distinct masked
// form returns the real value from both accessors.
type Masked[T any] struct {
	real   T
	masked T
	has    bool
}

// NewMasked pairs a real value with its masked form.
func NewMasked[T any](real, masked T) Masked[T] {
	return Masked[T]{real: real, masked: masked, has: true}
}

// NewUnmasked wraps a value that has no sensitive content to hide.
func NewUnmasked[T any](real T) Masked[T] {
	return Masked[T]{real: real}
}

// Real returns the sensitive form, suitable for use in outgoing requests.
func (m Masked[T]) Real() T { return m.real }

// Masked returns the safe-to-log form; falls back to Real() if none was set.
func (m Masked[T]) Masked() T {
	if m.has {
		return m.masked
	}
	return m.real
}

// String implements fmt.Stringer using the masked form, so that accidental
// interpolation into log lines never leaks credentials.
func (m Masked[T]) String() string {
	if s, ok := any(m.Masked()).(string); ok {
		return s
	}
	return ""
}

// MaskedString is the common instantiation used for URLs and SAS tokens.
type MaskedString = Masked[string]
