package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		name string
		cell Cell
		want string
	}{
		{"null", NullCell(), ""},
		{"int", IntCell(-42), "-42"},
		{"float shortest form", FloatCell(15000000), "1.5e+07"},
		{"float plain", FloatCell(5.2), "5.2"},
		{"string", StringCell("KB-11"), "KB-11"},
		{"bool", BoolCell(true), "true"},
		{"time", TimeCell(time.Date(1957, 7, 19, 14, 0, 0, 0, time.UTC)), "1957-07-19T14:00:00Z"},
		{"zero time", TimeCell(time.Time{}), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cell.String())
		})
	}
}

func assembledTable(state string, ids ...int) *Table {
	schema := ColumnSchema{{Name: "ID", Start: 0, End: 5, DType: DTypeInt}}
	t := &Table{State: state, Schema: schema}
	for _, id := range ids {
		rec := &Record{
			ID:         id,
			State:      state,
			Fields:     map[string]Field{},
			Typed:      map[string]Cell{"ID": IntCell(int64(id))},
			Normalized: map[string]NormalizedField{},
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

func TestAssemble(t *testing.T) {
	t.Run("configured order and contiguous index", func(t *testing.T) {
		a := assembledTable("US", 1, 2)
		b := assembledTable("USSR", 1, 5)

		ds, err := Assemble([]*Table{a, b})
		require.NoError(t, err)

		require.Len(t, ds.Records, 4)
		assert.Equal(t, []string{"ID", "DATETIME", "STATE"}, ds.Columns)
		for i, rec := range ds.Records {
			assert.Equal(t, i, rec.Index)
		}
		assert.Equal(t, "US", ds.Records[0].State)
		assert.Equal(t, "US", ds.Records[1].State)
		assert.Equal(t, "USSR", ds.Records[2].State)
		// Per-state ids survive verbatim and may repeat across states.
		assert.Equal(t, 1, ds.Records[0].ID)
		assert.Equal(t, 1, ds.Records[2].ID)
	})

	t.Run("mixed schemas rejected", func(t *testing.T) {
		a := assembledTable("US", 1)
		b := &Table{State: "UK", Schema: ColumnSchema{{Name: "OTHER", Start: 0, End: 3, DType: DTypeInt}}}
		_, err := Assemble([]*Table{a, b})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "incompatible column set")
	})

	t.Run("empty input", func(t *testing.T) {
		ds, err := Assemble(nil)
		require.NoError(t, err)
		assert.Empty(t, ds.Records)
	})
}

func TestDatasetAppend(t *testing.T) {
	ds, err := Assemble([]*Table{assembledTable("US", 1, 2)})
	require.NoError(t, err)

	extra := assembledTable("UK", 9)
	ds.Append(extra.Records)

	require.Len(t, ds.Records, 3)
	assert.Equal(t, 2, ds.Records[2].Index)
	assert.Equal(t, "UK", ds.Records[2].State)
}

func TestRecordCell(t *testing.T) {
	rec := &Record{
		ID:    7,
		State: "US",
		Typed: map[string]Cell{"ID": IntCell(7)},
		Normalized: map[string]NormalizedField{
			"VENT": {Value: floatPtr(2000), Occurred: true, Remark: strPtr("<"), Original: strPtr("<V2k")},
		},
		Timestamp: time.Date(1957, 7, 19, 14, 0, 0, 0, time.UTC),
	}

	assert.Equal(t, FloatCell(2000), rec.Cell("VENT"))
	assert.Equal(t, BoolCell(true), rec.Cell("VENT_occured"))
	assert.Equal(t, StringCell("<V2k"), rec.Cell("VENT_orig"))
	assert.Equal(t, StringCell("<"), rec.Cell("VENT_value_remark"))
	assert.Equal(t, IntCell(7), rec.Cell("ID"))
	assert.Equal(t, StringCell("US"), rec.Cell(ColumnState))
	assert.Equal(t, TimeCell(rec.Timestamp), rec.Cell(ColumnDatetime))
	assert.Equal(t, NullCell(), rec.Cell("MISSING"))
}
