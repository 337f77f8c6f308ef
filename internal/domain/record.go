package domain

import (
	"fmt"
	"time"
)

// Field is one raw table cell: either trimmed text or an explicit absence.
// Absence is distinct from the empty string and from "0".
type Field struct {
	Text    string
	Present bool
}

// Present wraps trimmed cell text.
func Present(text string) Field {
	return Field{Text: text, Present: true}
}

// Absent is the marker for an empty or out-of-range cell.
func Absent() Field {
	return Field{}
}

// CellKind discriminates the typed value held by a Cell.
type CellKind int

const (
	KindNull CellKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindTime
)

// Cell is one typed cell of an assembled record.
type Cell struct {
	Kind CellKind
	Int  int64
	Num  float64
	Str  string
	Bool bool
	Time time.Time
}

func NullCell() Cell            { return Cell{Kind: KindNull} }
func IntCell(v int64) Cell      { return Cell{Kind: KindInt, Int: v} }
func FloatCell(v float64) Cell  { return Cell{Kind: KindFloat, Num: v} }
func StringCell(v string) Cell  { return Cell{Kind: KindString, Str: v} }
func BoolCell(v bool) Cell      { return Cell{Kind: KindBool, Bool: v} }
func TimeCell(v time.Time) Cell { return Cell{Kind: KindTime, Time: v} }

// IsNull reports whether the cell holds no value.
func (c Cell) IsNull() bool { return c.Kind == KindNull }

// String renders the cell for export. Null cells render empty, floats use the
// shortest representation that round-trips, timestamps use RFC 3339.
func (c Cell) String() string {
	switch c.Kind {
	case KindNull:
		return ""
	case KindInt:
		return fmt.Sprintf("%d", c.Int)
	case KindFloat:
		return fmt.Sprintf("%g", c.Num)
	case KindString:
		return c.Str
	case KindBool:
		if c.Bool {
			return "true"
		}
		return "false"
	case KindTime:
		if c.Time.IsZero() {
			return ""
		}
		return c.Time.UTC().Format(time.RFC3339)
	}
	return ""
}

// Value returns the cell as a plain Go value for JSON serialization.
func (c Cell) Value() any {
	switch c.Kind {
	case KindInt:
		return c.Int
	case KindFloat:
		return c.Num
	case KindString:
		return c.Str
	case KindBool:
		return c.Bool
	case KindTime:
		if c.Time.IsZero() {
			return nil
		}
		return c.Time.UTC().Format(time.RFC3339)
	}
	return nil
}

// NormalizedField is the result of normalizing one compound textual value.
// Occurred answers whether the physical event marked by the field's letter
// code happened, independent of whether a magnitude is known. Original always
// retains the pre-normalization text (trimmed) so no information is lost.
type NormalizedField struct {
	Value    *float64
	Occurred bool
	Remark   *string
	Original *string
}

// Record is one physical test event moving through the extraction stages.
// Fields holds the raw (then corrected) string cells; Typed, Normalized and
// Timestamp are filled in by the later stages.
type Record struct {
	ID    int
	State string

	Fields     map[string]Field
	Typed      map[string]Cell
	Normalized map[string]NormalizedField

	Timestamp   time.Time
	ExtractedAt time.Time

	// Geocoding enrichment, filled post-assembly when enabled.
	Country string
	Region  string

	// Index is the contiguous position assigned on assembly; distinct from
	// ID, which is per-state and may repeat across states.
	Index int
}

// Table is the output of one (state, url, line-range) extraction unit.
type Table struct {
	State   string
	Schema  ColumnSchema
	Records []*Record
}

// Dataset is the assembled, ordered sequence of records across all units.
type Dataset struct {
	Columns []string
	Records []*Record
}

// Suffixes of the derived columns produced per normalized source field. The
// "_occured" spelling matches the published archive extraction and is part of
// the stable output contract.
const (
	suffixOccurred    = "_occured"
	suffixOriginal    = "_orig"
	suffixValueRemark = "_value_remark"
)

// Derived non-schema columns.
const (
	ColumnDatetime = "DATETIME"
	ColumnState    = "STATE"
	ColumnCountry  = "COUNTRY"
	ColumnRegion   = "REGION"
)

// OutputColumns lists the stable column set for a schema: every plain field in
// schema order; normalized fields expanded in place to their derived group;
// then DATETIME and STATE.
func OutputColumns(schema ColumnSchema) []string {
	cols := make([]string, 0, len(schema)+8)
	for _, c := range schema {
		cols = append(cols, c.Name)
		switch c.Normalize {
		case NormalizeVent, NormalizeCrater:
			cols = append(cols, c.Name+suffixOccurred, c.Name+suffixOriginal, c.Name+suffixValueRemark)
		case NormalizeYield, NormalizeEstYield:
			cols = append(cols, c.Name+suffixOriginal, c.Name+suffixValueRemark)
		}
	}
	return append(cols, ColumnDatetime, ColumnState)
}

// Cell resolves a contract column name to its typed value on the record.
func (r *Record) Cell(column string) Cell {
	switch column {
	case ColumnDatetime:
		if r.Timestamp.IsZero() {
			return NullCell()
		}
		return TimeCell(r.Timestamp)
	case ColumnState:
		return StringCell(r.State)
	case ColumnCountry:
		if r.Country == "" {
			return NullCell()
		}
		return StringCell(r.Country)
	case ColumnRegion:
		if r.Region == "" {
			return NullCell()
		}
		return StringCell(r.Region)
	}

	if base, ok := trimSuffix(column, suffixOccurred); ok {
		if nf, ok := r.Normalized[base]; ok {
			return BoolCell(nf.Occurred)
		}
	}
	if base, ok := trimSuffix(column, suffixOriginal); ok {
		if nf, ok := r.Normalized[base]; ok {
			return optStringCell(nf.Original)
		}
	}
	if base, ok := trimSuffix(column, suffixValueRemark); ok {
		if nf, ok := r.Normalized[base]; ok {
			return optStringCell(nf.Remark)
		}
	}
	if nf, ok := r.Normalized[column]; ok {
		if nf.Value == nil {
			return NullCell()
		}
		return FloatCell(*nf.Value)
	}
	if cell, ok := r.Typed[column]; ok {
		return cell
	}
	return NullCell()
}

func trimSuffix(s, suffix string) (string, bool) {
	if len(s) > len(suffix) && s[len(s)-len(suffix):] == suffix {
		return s[:len(s)-len(suffix)], true
	}
	return "", false
}

func optStringCell(s *string) Cell {
	if s == nil {
		return NullCell()
	}
	return StringCell(*s)
}

// Assemble concatenates unit tables in the given order into one dataset,
// renumbering records with a contiguous positional index. All tables must
// share one column contract; mixing schemas is a programming error surfaced
// to the caller.
func Assemble(tables []*Table) (*Dataset, error) {
	if len(tables) == 0 {
		return &Dataset{}, nil
	}

	columns := OutputColumns(tables[0].Schema)
	total := 0
	for _, t := range tables {
		total += len(t.Records)
	}

	ds := &Dataset{
		Columns: columns,
		Records: make([]*Record, 0, total),
	}
	for _, t := range tables {
		cols := OutputColumns(t.Schema)
		if !equalColumns(columns, cols) {
			return nil, fmt.Errorf("assemble: state %q has an incompatible column set", t.State)
		}
		ds.Records = append(ds.Records, t.Records...)
	}
	for i, rec := range ds.Records {
		rec.Index = i
	}
	return ds, nil
}

// Append adds extra records to an assembled dataset, preserving order and
// re-extending the contiguous index.
func (d *Dataset) Append(records []*Record) {
	for _, rec := range records {
		rec.Index = len(d.Records)
		d.Records = append(d.Records, rec)
	}
}

// Row renders one record in column order.
func (d *Dataset) Row(rec *Record) []Cell {
	row := make([]Cell, len(d.Columns))
	for i, col := range d.Columns {
		row[i] = rec.Cell(col)
	}
	return row
}

// RowMap renders one record as a column-keyed map of plain values.
func (d *Dataset) RowMap(rec *Record) map[string]any {
	m := make(map[string]any, len(d.Columns))
	for _, col := range d.Columns {
		m[col] = rec.Cell(col).Value()
	}
	return m
}

func equalColumns(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
