package domain

import (
	"fmt"
	"strings"
)

// DType is the declared target type of a schema column.
type DType string

const (
	DTypeInt    DType = "int"
	DTypeFloat  DType = "float"
	DTypeString DType = "str"
)

// NormalizeKind selects which field normalizer handles a column.
type NormalizeKind string

const (
	NormalizeNone     NormalizeKind = ""
	NormalizeYield    NormalizeKind = "yield"
	NormalizeEstYield NormalizeKind = "est_yield"
	NormalizeVent     NormalizeKind = "vent"
	NormalizeCrater   NormalizeKind = "crater"
)

// Column maps one field name to its character span and target type in the
// fixed-width source table. The archive tables are column-aligned by
// character position, not by delimiter, so spans are rune-index slices.
type Column struct {
	Name      string
	Start     int
	End       int
	DType     DType
	Normalize NormalizeKind
}

// ColumnSchema is the ordered column layout of one state's table.
type ColumnSchema []Column

// Validate checks span ordering, name uniqueness, and enum values.
func (s ColumnSchema) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("schema has no columns")
	}
	seen := make(map[string]bool, len(s))
	for _, c := range s {
		if c.Name == "" {
			return fmt.Errorf("schema column with empty name")
		}
		if seen[c.Name] {
			return fmt.Errorf("schema column %q declared twice", c.Name)
		}
		seen[c.Name] = true
		if c.Start < 0 || c.Start >= c.End {
			return fmt.Errorf("schema column %q: invalid span [%d,%d)", c.Name, c.Start, c.End)
		}
		switch c.DType {
		case DTypeInt, DTypeFloat, DTypeString:
		default:
			return fmt.Errorf("schema column %q: unknown dtype %q", c.Name, c.DType)
		}
		switch c.Normalize {
		case NormalizeNone, NormalizeYield, NormalizeEstYield, NormalizeVent, NormalizeCrater:
		default:
			return fmt.Errorf("schema column %q: unknown normalizer %q", c.Name, c.Normalize)
		}
	}
	return nil
}

// Find returns the column with the given name.
func (s ColumnSchema) Find(name string) (Column, bool) {
	for _, c := range s {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// SliceLine cuts one source line into a raw record. Cells are trimmed; empty
// or out-of-range cells become the absence marker. The source format pads
// lines irregularly, so a line shorter than a column's end offset is normal,
// never an error.
func SliceLine(schema ColumnSchema, line string) map[string]Field {
	fields := make(map[string]Field, len(schema))
	runes := []rune(line)
	for _, c := range schema {
		fields[c.Name] = sliceCell(runes, c.Start, c.End)
	}
	return fields
}

func sliceCell(runes []rune, start, end int) Field {
	if start >= len(runes) {
		return Absent()
	}
	if end > len(runes) {
		end = len(runes)
	}
	text := strings.TrimSpace(string(runes[start:end]))
	if text == "" {
		return Absent()
	}
	return Present(text)
}
