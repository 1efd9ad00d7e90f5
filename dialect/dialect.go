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

// Package dialect describes the field- and line-delimiter conventions of a
// text-file import/export (LOAD DATA-style presets: default, csv, tsv,
// csv-unix, json), and a resumable Scanner that finds row boundaries in
// streamed byte blocks using those conventions.
package dialect

import (
	"fmt"
	"strings"
)

// escapedChars lists characters whose presence as the first byte of
// FieldsTerminatedBy would be ambiguous with a backslash escape sequence.
const escapedChars = "ntrb0ZN"

// numericChars lists characters that could begin a bare numeric field value,
// used in the same ambiguity check when fields are optionally enclosed.
const numericChars = ".0123456789e+-"

// Dialect holds the field- and line-handling conventions for a delimited
// text file.
type Dialect struct {
	LinesTerminatedBy         string
	FieldsEscapedBy           string
	FieldsTerminatedBy        string
	FieldsEnclosedBy          string
	FieldsOptionallyEnclosed  bool
	LinesStartingBy           string
}

// Default returns the baseline LOAD DATA dialect: tab-separated fields,
// newline-terminated lines, backslash escaping.
func Default() Dialect {
	return Dialect{
		LinesTerminatedBy:  "\n",
		FieldsEscapedBy:    `\`,
		FieldsTerminatedBy: "\t",
	}
}

// CSV returns the dialect for comma-separated files with CRLF line endings
// (the conventional Windows/Excel CSV export format).
func CSV() Dialect {
	return Dialect{
		LinesTerminatedBy:        "\r\n",
		FieldsEscapedBy:          `\`,
		FieldsTerminatedBy:       ",",
		FieldsEnclosedBy:         `"`,
		FieldsOptionallyEnclosed: true,
	}
}

// TSV returns CSV with tab-separated fields.
func TSV() Dialect {
	d := CSV()
	d.FieldsTerminatedBy = "\t"
	return d
}

// CSVUnix returns the dialect for comma-separated files with Unix (LF) line
// endings and mandatory (not optional) field enclosure.
func CSVUnix() Dialect {
	return Dialect{
		LinesTerminatedBy:  "\n",
		FieldsEscapedBy:    `\`,
		FieldsTerminatedBy: ",",
		FieldsEnclosedBy:   `"`,
	}
}

// JSON returns the dialect for newline-delimited JSON documents: one
// complete document per line, with "\n" as both the line and the field
// terminator and no escape character or enclosure.
func JSON() Dialect {
	return Dialect{
		LinesTerminatedBy:  "\n",
		FieldsTerminatedBy: "\n",
	}
}

// Named looks up a dialect preset by name (case-insensitive): "default",
// "csv", "tsv", "json", or "csv-unix".
func Named(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "default":
		return Default(), nil
	case "csv":
		return CSV(), nil
	case "tsv":
		return TSV(), nil
	case "json":
		return JSON(), nil
	case "csv-unix":
		return CSVUnix(), nil
	default:
		return Dialect{}, fmt.Errorf("dialect: value must be default, csv, tsv, json or csv-unix, got %q", name)
	}
}

// Validate checks the dialect for internally-inconsistent or ambiguous
// delimiter combinations.
func (d Dialect) Validate() error {
	if len(d.FieldsEscapedBy) > 1 {
		return fmt.Errorf("dialect: FieldsEscapedBy must be empty or a single character")
	}
	if len(d.FieldsEnclosedBy) > 1 {
		return fmt.Errorf("dialect: FieldsEnclosedBy must be empty or a single character")
	}
	if d.FieldsOptionallyEnclosed && d.FieldsEnclosedBy == "" {
		return fmt.Errorf("dialect: FieldsEnclosedBy must be set if FieldsOptionallyEnclosed is true")
	}
	if d.FieldsTerminatedBy == "" && d.FieldsEnclosedBy == "" {
		return fmt.Errorf("dialect: FieldsTerminatedBy and FieldsEnclosedBy are both empty, resulting in a fixed-row format, which is not supported")
	}

	// An escape character that is a prefix of the line terminator makes the
	// format ambiguous to parse.
	if d.LinesTerminatedBy != "" && d.FieldsEscapedBy != "" &&
		strings.HasPrefix(d.LinesTerminatedBy, d.FieldsEscapedBy) {
		return fmt.Errorf("dialect: separators cannot be the same or be a prefix of one another")
	}

	if d.FieldsTerminatedBy != "" {
		first := d.FieldsTerminatedBy[0]
		ambiguous := (d.FieldsEnclosedBy == "" && strings.IndexByte(escapedChars, first) >= 0) ||
			(d.FieldsOptionallyEnclosed && strings.IndexByte(numericChars, first) >= 0)
		if ambiguous {
			return fmt.Errorf("dialect: first character of FieldsTerminatedBy is ambiguous: %c; use a non-empty FieldsEnclosedBy and set FieldsOptionallyEnclosed to false", first)
		}
	}
	return nil
}

// Normalize validates the dialect and fills in LinesTerminatedBy from
// FieldsTerminatedBy when the former was left empty, matching LOAD DATA's
// own fallback: an empty LINES TERMINATED BY means lines are also
// terminated by FIELDS TERMINATED BY.
func (d Dialect) Normalize() (Dialect, error) {
	if err := d.Validate(); err != nil {
		return Dialect{}, err
	}
	if d.LinesTerminatedBy == "" && d.FieldsTerminatedBy != "" {
		d.LinesTerminatedBy = d.FieldsTerminatedBy
	}
	return d, nil
}

// BuildSQL renders the dialect as a LOAD DATA INFILE "FIELDS ... LINES ..."
// clause.
func (d Dialect) BuildSQL() string {
	var b strings.Builder
	fmt.Fprintf(&b, "FIELDS TERMINATED BY %s", quoteSQL(d.FieldsTerminatedBy))

	if d.FieldsEnclosedBy != "" {
		if d.FieldsOptionallyEnclosed {
			b.WriteString(" OPTIONALLY")
		}
		fmt.Fprintf(&b, " ENCLOSED BY %s", quoteSQL(d.FieldsEnclosedBy))
	}

	fmt.Fprintf(&b, " ESCAPED BY %s LINES STARTING BY %s TERMINATED BY %s",
		quoteSQL(d.FieldsEscapedBy), quoteSQL(d.LinesStartingBy), quoteSQL(d.LinesTerminatedBy))
	return b.String()
}

// quoteSQL renders s as a single-quoted SQL string literal, escaping
// backslashes and single quotes.
func quoteSQL(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '\'':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('\'')
	return b.String()
}
