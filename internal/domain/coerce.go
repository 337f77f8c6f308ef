package domain

import "strconv"

// CoerceRecord converts every non-normalized int/float schema field from its
// corrected string to a typed cell. Absence maps to a null cell. Failure is a
// data-integrity gate, not a best-effort conversion: the error carries the
// record identity so the fix can be added to the correction tables.
func CoerceRecord(schema ColumnSchema, rec *Record) error {
	for _, col := range schema {
		if col.Normalize != NormalizeNone {
			continue
		}
		f := rec.Fields[col.Name]
		if !f.Present {
			rec.Typed[col.Name] = NullCell()
			continue
		}
		switch col.DType {
		case DTypeString:
			rec.Typed[col.Name] = StringCell(f.Text)
		case DTypeInt:
			v, err := strconv.ParseInt(f.Text, 10, 64)
			if err != nil {
				return &CoercionError{State: rec.State, ID: rec.ID, Field: col.Name, Text: f.Text}
			}
			rec.Typed[col.Name] = IntCell(v)
		case DTypeFloat:
			v, err := strconv.ParseFloat(f.Text, 64)
			if err != nil {
				return &CoercionError{State: rec.State, ID: rec.ID, Field: col.Name, Text: f.Text}
			}
			rec.Typed[col.Name] = FloatCell(v)
		}
	}
	return nil
}
