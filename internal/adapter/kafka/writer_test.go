package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	extracted := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	val := 23.0
	orig := "23"
	rec := &domain.Record{
		ID:    57,
		State: "US",
		Typed: map[string]domain.Cell{"ID": domain.IntCell(57)},
		Normalized: map[string]domain.NormalizedField{
			"YIELD": {Value: &val, Original: &orig},
		},
		Timestamp:   time.Date(1962, time.July, 6, 17, 0, 0, 0, time.UTC),
		ExtractedAt: extracted,
	}
	ds := &domain.Dataset{
		Columns: []string{"ID", "YIELD", "YIELD_orig", "YIELD_value_remark", "DATETIME", "STATE"},
		Records: []*domain.Record{rec},
	}

	msg, err := serializeToMessage(ds, rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("US-57"), msg.Key)

	var row map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &row))
	assert.Equal(t, 57.0, row["ID"])
	assert.Equal(t, 23.0, row["YIELD"])
	assert.Equal(t, "23", row["YIELD_orig"])
	assert.Nil(t, row["YIELD_value_remark"])
	assert.Equal(t, "1962-07-06T17:00:00Z", row["DATETIME"])
	assert.Equal(t, "US", row["STATE"])

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "state", msg.Headers[0].Key)
	assert.Equal(t, []byte("US"), msg.Headers[0].Value)
	assert.Equal(t, "extracted_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-08-30T12:00:00Z"), msg.Headers[1].Value)
}
