package domain

import (
	"fmt"
	"time"
)

// TimestampSpec names the columns combined into the derived DATETIME value.
type TimestampSpec struct {
	Year  string
	Month string
	Day   string
	Time  string
}

// DefaultTimestampSpec matches the archive column names.
func DefaultTimestampSpec() TimestampSpec {
	return TimestampSpec{Year: "YEAR", Month: "MON", Day: "DAY", Time: "TIME"}
}

var monthNumbers = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// timeLayouts accepted in the time-of-day column, tried in order.
var timeLayouts = []string{"15:04:05", "15:04"}

// BuildTimestamp combines year, three-letter month code, day, and time-of-day
// into one UTC point in time. An absent time, or a day normalized to the -1
// sentinel, yields the zero time: an explicit not-a-time, never a guess.
// Must run after day-sentinel normalization and the time punctuation fix.
func BuildTimestamp(spec TimestampSpec, rec *Record) (time.Time, error) {
	tf := rec.Fields[spec.Time]
	if !tf.Present {
		return time.Time{}, nil
	}

	year, ok := intCell(rec, spec.Year)
	if !ok {
		return time.Time{}, &CoercionError{State: rec.State, ID: rec.ID, Field: spec.Year, Text: fieldText(rec.Fields[spec.Year])}
	}
	day, ok := intCell(rec, spec.Day)
	if !ok || day <= 0 {
		return time.Time{}, nil
	}

	mf := rec.Fields[spec.Month]
	month, known := monthNumbers[fieldText(mf)]
	if !known {
		return time.Time{}, &CoercionError{State: rec.State, ID: rec.ID, Field: spec.Month, Text: fieldText(mf)}
	}

	for _, layout := range timeLayouts {
		tod, err := time.Parse(layout, tf.Text)
		if err != nil {
			continue
		}
		return time.Date(int(year), month, int(day), tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC), nil
	}
	return time.Time{}, &CoercionError{State: rec.State, ID: rec.ID, Field: spec.Time, Text: tf.Text}
}

// intCell reads an already-coerced int column from the record.
func intCell(rec *Record, name string) (int64, bool) {
	cell, ok := rec.Typed[name]
	if !ok || cell.Kind != KindInt {
		return 0, false
	}
	return cell.Int, true
}

// Validate checks that the named columns exist in the schema with the
// expected types.
func (s TimestampSpec) Validate(schema ColumnSchema) error {
	for _, name := range []string{s.Year, s.Month, s.Day, s.Time} {
		if _, ok := schema.Find(name); !ok {
			return fmt.Errorf("timestamp column %q not in schema", name)
		}
	}
	for _, name := range []string{s.Year, s.Day} {
		if col, _ := schema.Find(name); col.DType != DTypeInt {
			return fmt.Errorf("timestamp column %q must be int, is %q", name, col.DType)
		}
	}
	return nil
}
