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

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_Validate(t *testing.T) {
	presets := []struct {
		name string
		d    Dialect
	}{
		{"default", Default()},
		{"csv", CSV()},
		{"tsv", TSV()},
		{"csv_unix", CSVUnix()},
		{"json", JSON()},
	}
	for _, p := range presets {
		t.Run(p.name, func(t *testing.T) {
			assert.NoError(t, p.d.Validate())
		})
	}
}

func TestNamed(t *testing.T) {
	d, err := Named("csv")
	require.NoError(t, err)
	assert.Equal(t, CSV(), d)

	d, err = Named("")
	require.NoError(t, err)
	assert.Equal(t, Default(), d)

	d, err = Named("CSV-UNIX")
	require.NoError(t, err)
	assert.Equal(t, CSVUnix(), d)

	_, err = Named("bogus")
	assert.Error(t, err)
}

func TestValidate_EscapedByTooLong(t *testing.T) {
	d := CSV()
	d.FieldsEscapedBy = "\\\\"
	assert.Error(t, d.Validate())
}

func TestValidate_EnclosedByTooLong(t *testing.T) {
	d := CSV()
	d.FieldsEnclosedBy = `""`
	assert.Error(t, d.Validate())
}

func TestValidate_OptionallyEnclosedRequiresEnclosedBy(t *testing.T) {
	d := Dialect{
		LinesTerminatedBy:        "\n",
		FieldsTerminatedBy:       ",",
		FieldsOptionallyEnclosed: true,
	}
	assert.Error(t, d.Validate())
}

func TestValidate_FieldsTerminatorAndEnclosureEmptyRejected(t *testing.T) {
	d := Dialect{LinesTerminatedBy: "\n"}
	assert.Error(t, d.Validate())
}

func TestValidate_EscapedByPrefixOfLinesTerminatedByRejected(t *testing.T) {
	d := Dialect{
		LinesTerminatedBy:  "\\n",
		FieldsEscapedBy:    `\`,
		FieldsTerminatedBy: ",",
	}
	assert.Error(t, d.Validate())
}

func TestValidate_AmbiguousFirstCharWithoutEnclosure(t *testing.T) {
	// "n", "t", "r", "b", "0", "Z", "N" are ambiguous with a backslash
	// escape sequence when there is no FieldsEnclosedBy to disambiguate.
	for _, first := range []byte("ntrb0ZN") {
		d := Dialect{
			LinesTerminatedBy:  "\n",
			FieldsEscapedBy:    `\`,
			FieldsTerminatedBy: string(first) + "|",
		}
		assert.Errorf(t, d.Validate(), "first char %q should be rejected", first)
	}
}

func TestValidate_AmbiguousFirstCharWithOptionalEnclosure(t *testing.T) {
	// digits, '.', 'e', '+', '-' are ambiguous with a bare numeric field
	// value when fields are only optionally enclosed.
	for _, first := range []byte(".0123456789e+-") {
		d := Dialect{
			LinesTerminatedBy:        "\n",
			FieldsEnclosedBy:         `"`,
			FieldsOptionallyEnclosed: true,
			FieldsTerminatedBy:       string(first) + "|",
		}
		assert.Errorf(t, d.Validate(), "first char %q should be rejected", first)
	}
}

func TestValidate_NonAmbiguousFirstCharAccepted(t *testing.T) {
	d := CSV() // FieldsTerminatedBy == "," — not ambiguous, enclosure set
	assert.NoError(t, d.Validate())
}

func TestNormalize_FillsLinesTerminatedByFromFieldsTerminatedBy(t *testing.T) {
	d := Dialect{FieldsTerminatedBy: "\t"}
	got, err := d.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "\t", got.LinesTerminatedBy)
}

func TestNormalize_RejectsInvalidDialect(t *testing.T) {
	d := Dialect{} // both terminators empty
	_, err := d.Normalize()
	assert.Error(t, err)
}

func TestBuildSQL_CSV(t *testing.T) {
	got := CSV().BuildSQL()
	want := "FIELDS TERMINATED BY ',' OPTIONALLY ENCLOSED BY '\"' ESCAPED BY '\\\\' LINES STARTING BY '' TERMINATED BY '\r\n'"
	assert.Equal(t, want, got)
}

func TestBuildSQL_QuotesBackslashAndSingleQuote(t *testing.T) {
	d := Dialect{
		LinesTerminatedBy:  "\n",
		FieldsTerminatedBy: `'`,
		FieldsEscapedBy:    `\`,
	}
	got := d.BuildSQL()
	assert.Contains(t, got, `TERMINATED BY '\''`)
	assert.Contains(t, got, `ESCAPED BY '\\'`)
}

// Scanner constructor validation (New) is exercised in scanner_test.go.
