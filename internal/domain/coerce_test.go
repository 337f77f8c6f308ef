package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoerceRecord(t *testing.T) {
	schema := ColumnSchema{
		{Name: "ID", Start: 0, End: 5, DType: DTypeInt},
		{Name: "DEPTH", Start: 5, End: 12, DType: DTypeFloat},
		{Name: "SITE", Start: 12, End: 20, DType: DTypeString},
		{Name: "YIELD", Start: 20, End: 27, DType: DTypeFloat, Normalize: NormalizeYield},
	}

	t.Run("typed conversion", func(t *testing.T) {
		rec := recordWithFields(3, map[string]Field{
			"ID":    Present("3"),
			"DEPTH": Present("-0.5"),
			"SITE":  Present("NTS"),
			"YIELD": Present("not touched here"),
		})
		require.NoError(t, CoerceRecord(schema, rec))

		assert.Equal(t, IntCell(3), rec.Typed["ID"])
		assert.Equal(t, FloatCell(-0.5), rec.Typed["DEPTH"])
		assert.Equal(t, StringCell("NTS"), rec.Typed["SITE"])
		_, touched := rec.Typed["YIELD"]
		assert.False(t, touched, "normalized columns are not coerced")
	})

	t.Run("absence maps to null", func(t *testing.T) {
		rec := recordWithFields(4, map[string]Field{
			"ID":    Present("4"),
			"DEPTH": Absent(),
			"SITE":  Absent(),
		})
		require.NoError(t, CoerceRecord(schema, rec))

		assert.Equal(t, NullCell(), rec.Typed["DEPTH"])
		assert.Equal(t, NullCell(), rec.Typed["SITE"])
	})

	t.Run("non-numeric text is fatal", func(t *testing.T) {
		rec := recordWithFields(5, map[string]Field{
			"ID":    Present("5"),
			"DEPTH": Present("shallow"),
		})
		err := CoerceRecord(schema, rec)

		var coercion *CoercionError
		require.ErrorAs(t, err, &coercion)
		assert.Equal(t, 5, coercion.ID)
		assert.Equal(t, "DEPTH", coercion.Field)
		assert.Equal(t, "shallow", coercion.Text)
	})
}
