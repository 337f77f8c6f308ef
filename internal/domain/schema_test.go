package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() ColumnSchema {
	return ColumnSchema{
		{Name: "ID", Start: 0, End: 5, DType: DTypeInt},
		{Name: "NAME", Start: 5, End: 15, DType: DTypeString},
		{Name: "YIELD", Start: 15, End: 22, DType: DTypeFloat, Normalize: NormalizeYield},
	}
}

func TestSliceLine(t *testing.T) {
	schema := testSchema()

	t.Run("full line", func(t *testing.T) {
		fields := SliceLine(schema, "  12 TRINITY        21")
		assert.Equal(t, Present("12"), fields["ID"])
		assert.Equal(t, Present("TRINITY"), fields["NAME"])
		assert.Equal(t, Present("21"), fields["YIELD"])
	})

	t.Run("short line yields absence not a fault", func(t *testing.T) {
		fields := SliceLine(schema, "  12 TRI")
		assert.Equal(t, Present("12"), fields["ID"])
		assert.Equal(t, Present("TRI"), fields["NAME"])
		assert.Equal(t, Absent(), fields["YIELD"])
	})

	t.Run("empty line", func(t *testing.T) {
		fields := SliceLine(schema, "")
		for _, c := range schema {
			assert.Equal(t, Absent(), fields[c.Name])
		}
	})

	t.Run("whitespace-only cell is absent", func(t *testing.T) {
		fields := SliceLine(schema, "  12            ")
		assert.Equal(t, Absent(), fields["NAME"])
	})
}

func TestColumnSchemaValidate(t *testing.T) {
	tests := []struct {
		name    string
		schema  ColumnSchema
		wantErr string
	}{
		{"valid", testSchema(), ""},
		{"empty", ColumnSchema{}, "no columns"},
		{
			"duplicate name",
			ColumnSchema{
				{Name: "ID", Start: 0, End: 3, DType: DTypeInt},
				{Name: "ID", Start: 3, End: 6, DType: DTypeInt},
			},
			"declared twice",
		},
		{
			"inverted span",
			ColumnSchema{{Name: "ID", Start: 5, End: 3, DType: DTypeInt}},
			"invalid span",
		},
		{
			"unknown dtype",
			ColumnSchema{{Name: "ID", Start: 0, End: 3, DType: "decimal"}},
			"unknown dtype",
		},
		{
			"unknown normalizer",
			ColumnSchema{{Name: "ID", Start: 0, End: 3, DType: DTypeInt, Normalize: "boom"}},
			"unknown normalizer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.schema.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOutputColumns(t *testing.T) {
	schema := ColumnSchema{
		{Name: "ID", Start: 0, End: 5, DType: DTypeInt},
		{Name: "YIELD", Start: 5, End: 12, DType: DTypeFloat, Normalize: NormalizeYield},
		{Name: "VENT", Start: 12, End: 18, DType: DTypeString, Normalize: NormalizeVent},
	}

	assert.Equal(t, []string{
		"ID",
		"YIELD", "YIELD_orig", "YIELD_value_remark",
		"VENT", "VENT_occured", "VENT_orig", "VENT_value_remark",
		"DATETIME", "STATE",
	}, OutputColumns(schema))
}
