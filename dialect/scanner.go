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

package dialect

import "fmt"

// notUsed marks a sequence or character as absent (an empty delimiter).
const notUsed = -1

// endOfBlock is returned by Scanner.get when the current block is exhausted.
const endOfBlock = -2

// sequence is a delimiter string plus its first byte, cached so the hot
// path (`chr == seq.first`) avoids indexing into an empty string.
type sequence struct {
	data  string
	first int
}

func newSequence(s string) sequence {
	if s == "" {
		return sequence{first: notUsed}
	}
	return sequence{data: s, first: int(s[0])}
}

func (s sequence) used() bool { return s.first != notUsed }

// rowStatus tracks which part of a row Scanner is currently parsing.
type rowStatus int

const (
	rowBegin rowStatus = iota
	rowPrefix
	rowBeginOfField
	rowField
)

type fieldStatus int

const (
	fieldContinued fieldStatus = iota
	fieldEndOfField
	fieldEndOfLine
)

// Scanner finds row boundaries across a stream of byte blocks according to
// a Dialect's delimiter conventions, without requiring the whole file in
// memory. Scan is resumable: call it again with the next block and it
// picks up exactly where the previous call left off.
type Scanner struct {
	skipRows uint64

	fieldsTerminatedBy sequence
	linesStartingBy    sequence
	linesTerminatedBy  sequence

	enclosedChar int
	escapedChar  int

	// stack holds pushed-back bytes (a LIFO), used when a candidate
	// delimiter match fails partway through and its bytes must be replayed.
	stack    []byte
	stackPos int

	data        []byte
	length      int
	endOfBlock  bool
	status      rowStatus
	foundEnclosedChar int

	// rowFound latches once Scan ever reports a row start, across the
	// Scanner's whole lifetime (not per Scan call): the contract is to
	// locate the single boundary where row-aligned parsing may begin after
	// an arbitrary, possibly mid-row, starting byte offset, not to report
	// every row start in every block fed to it.
	rowFound bool
}

func firstChar(s string) int {
	if s == "" {
		return notUsed
	}
	return int(s[0])
}

// New builds a Scanner for dialect, skipping skipRows complete rows before
// the first row boundary is reported.
func New(d Dialect, skipRows uint64) (*Scanner, error) {
	if d.LinesTerminatedBy == "" || d.LinesTerminatedBy == d.FieldsTerminatedBy {
		return nil, fmt.Errorf("dialect: unsupported LinesTerminatedBy: %q", d.LinesTerminatedBy)
	}

	fieldsTerminatedBy := newSequence(d.FieldsTerminatedBy)
	linesStartingBy := newSequence(d.LinesStartingBy)
	linesTerminatedBy := newSequence(d.LinesTerminatedBy)

	// the pushback stack must hold a full delimiter plus one enclosure byte
	stackSize := fieldsTerminatedBy.first
	_ = stackSize
	maxLen := len(fieldsTerminatedBy.data) + 1
	if n := len(linesStartingBy.data); n > maxLen {
		maxLen = n
	}
	if n := len(linesTerminatedBy.data) + 1; n > maxLen {
		maxLen = n
	}

	return &Scanner{
		skipRows:           skipRows,
		fieldsTerminatedBy: fieldsTerminatedBy,
		linesStartingBy:    linesStartingBy,
		linesTerminatedBy:  linesTerminatedBy,
		enclosedChar:       firstChar(d.FieldsEnclosedBy),
		escapedChar:        firstChar(d.FieldsEscapedBy),
		stack:              make([]byte, maxLen),
	}, nil
}

// Scan looks for the one row boundary this Scanner will ever report: the
// first time, across its whole lifetime, that a row is found to begin
// somewhere in a block handed to it. It returns the byte offset within data
// where that row begins, or -1 if the boundary was not found in this
// particular block — either because none exists here, or because an
// earlier call to Scan already reported it. In both cases the scanner's
// internal state has still advanced, and a -1 result means the next call
// should supply the following block.
//
// This is the "locate where row-aligned parsing may resume after an
// arbitrary, possibly mid-row, starting offset" contract (spec.md §4.9):
// it is not a generator of every row start in every block.
func (s *Scanner) Scan(data []byte) int64 {
	s.data = data
	s.length = len(data)
	s.endOfBlock = false

	const rowNotFound = -1

	for s.skipRows > 0 {
		if s.skipRow() {
			s.skipRows--
		} else {
			return rowNotFound
		}
	}

	firstRow := int64(rowNotFound)

	for s.length > 0 {
		switch s.status {
		case rowBegin:
			if !s.rowFound {
				firstRow = int64(len(data) - s.length)
				s.rowFound = true
			}
			s.status = rowPrefix

		case rowPrefix:
			if !s.skipLineStart() {
				return firstRow
			}
			s.status = rowBeginOfField

		case rowBeginOfField:
			chr := s.get()
			if chr == s.enclosedChar {
				s.foundEnclosedChar = chr
			} else {
				s.foundEnclosedChar = notUsed
				s.ungetInt(chr)
			}
			s.status = rowField

		case rowField:
			switch s.scanField() {
			case fieldContinued:
				// no-op, more bytes needed
			case fieldEndOfField:
				s.status = rowBeginOfField
			case fieldEndOfLine:
				s.status = rowBegin
			}
		}
	}

	return firstRow
}

func (s *Scanner) get() int {
	if s.stackPos > 0 {
		s.stackPos--
		return int(s.stack[s.stackPos])
	}
	if s.length > 0 {
		c := s.data[0]
		s.data = s.data[1:]
		s.length--
		return int(c)
	}
	s.endOfBlock = true
	return endOfBlock
}

func (s *Scanner) unget(c byte) {
	s.stack[s.stackPos] = c
	s.stackPos++
}

// ungetInt pushes back a value that get() may have returned as
// endOfBlock; pushing that sentinel back would corrupt the stack, so it is
// silently dropped (get() will report end-of-block again on the next call).
func (s *Scanner) ungetInt(c int) {
	if c == endOfBlock {
		return
	}
	s.unget(byte(c))
}

func (s *Scanner) contains(seq sequence) bool {
	var chr int
	i := 1
	for ; i < len(seq.data); i++ {
		chr = s.get()
		if byte(chr) != seq.data[i] {
			break
		}
	}

	if i == len(seq.data) {
		return true
	}

	if !s.endOfBlock {
		s.ungetInt(chr)
	}
	for i--; i > 1; i-- {
		s.unget(seq.data[i-1])
	}
	return false
}

// skipRow discards bytes up to and including the next unescaped LINES
// TERMINATED BY sequence.
func (s *Scanner) skipRow() bool {
	for s.length > 0 {
		chr := s.get()

		if chr == s.escapedChar {
			chr = s.get()
			if s.endOfBlock {
				s.unget(byte(s.escapedChar))
			}
			continue
		}

		if chr == s.linesTerminatedBy.first && s.contains(s.linesTerminatedBy) {
			return true
		}

		if s.endOfBlock {
			s.ungetInt(chr)
		}
	}
	return false
}

// skipLineStart discards bytes up to and including the next LINES
// STARTING BY sequence, or does nothing if no such sequence is configured.
func (s *Scanner) skipLineStart() bool {
	if !s.linesStartingBy.used() {
		return true
	}

	for s.length > 0 {
		chr := s.get()
		if chr == s.linesStartingBy.first && s.contains(s.linesStartingBy) {
			return true
		}
		if s.endOfBlock {
			s.ungetInt(chr)
		}
	}
	return false
}

// endBlockUnget pushes back the given bytes and reports whether the current
// block ended mid-field, in which case the caller should suspend and wait
// for the next block before resuming (replacing the original's
// HANDLE_END_OF_BLOCK macro with an explicit check).
func (s *Scanner) endBlockUnget(chars ...int) bool {
	if !s.endOfBlock {
		return false
	}
	for i := len(chars) - 1; i >= 0; i-- {
		s.ungetInt(chars[i])
	}
	return true
}

func (s *Scanner) scanField() fieldStatus {
	for s.length > 0 {
		chr := s.get()

		if chr == s.escapedChar {
			esc := chr
			chr = s.get()
			if s.endBlockUnget(esc) {
				return fieldContinued
			}

			// when ESCAPED BY == ENCLOSED BY, only a doubled escape character
			// is treated as an escape sequence; anything else falls through.
			if s.escapedChar != s.enclosedChar || chr == s.escapedChar {
				continue
			}
			s.ungetInt(chr)
			chr = s.escapedChar
		}

		if s.foundEnclosedChar == notUsed && chr == s.linesTerminatedBy.first {
			if s.contains(s.linesTerminatedBy) {
				return fieldEndOfLine
			}
			if s.endBlockUnget(chr) {
				return fieldContinued
			}
		}

		if chr == s.foundEnclosedChar {
			enc := chr
			chr = s.get()
			if s.endBlockUnget(enc) {
				return fieldContinued
			}

			// doubled ENCLOSED BY character: a literal enclosure byte
			if chr == s.foundEnclosedChar {
				continue
			}

			if chr == s.linesTerminatedBy.first {
				if s.contains(s.linesTerminatedBy) {
					return fieldEndOfLine
				}
				if s.endBlockUnget(chr, enc) {
					return fieldContinued
				}
			}

			if chr == s.fieldsTerminatedBy.first {
				if s.contains(s.fieldsTerminatedBy) {
					return fieldEndOfField
				}
				if s.endBlockUnget(chr, enc) {
					return fieldContinued
				}
			}

			s.ungetInt(chr)
		} else if s.foundEnclosedChar == notUsed && chr == s.fieldsTerminatedBy.first {
			if s.contains(s.fieldsTerminatedBy) {
				return fieldEndOfField
			}
			if s.endBlockUnget(chr) {
				return fieldContinued
			}
		}
	}
	return fieldContinued
}
