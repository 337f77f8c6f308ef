package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGeocoder struct {
	result GeocodingResult
	err    error
	calls  int
}

func (f *fakeGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (GeocodingResult, error) {
	f.calls++
	return f.result, f.err
}

func geoDataset(t *testing.T) *Dataset {
	t.Helper()
	schema := ColumnSchema{
		{Name: "ID", Start: 0, End: 3, DType: DTypeInt},
		{Name: "LAT", Start: 3, End: 10, DType: DTypeFloat},
		{Name: "LONG", Start: 10, End: 18, DType: DTypeFloat},
	}
	withCoords := &Record{
		ID: 1, State: "US",
		Typed: map[string]Cell{
			"ID": IntCell(1), "LAT": FloatCell(37.1), "LONG": FloatCell(-116.05),
		},
		Normalized: map[string]NormalizedField{},
	}
	noCoords := &Record{
		ID: 2, State: "US",
		Typed:      map[string]Cell{"ID": IntCell(2), "LAT": NullCell(), "LONG": NullCell()},
		Normalized: map[string]NormalizedField{},
	}
	ds, err := Assemble([]*Table{{State: "US", Schema: schema, Records: []*Record{withCoords, noCoords}}})
	require.NoError(t, err)
	return ds
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnrichWithGeocoding(t *testing.T) {
	t.Run("fills country and region columns", func(t *testing.T) {
		ds := geoDataset(t)
		g := &fakeGeocoder{result: GeocodingResult{CountryCode: "US", Region: "Nevada", PlaceName: "Nevada Test Site"}}

		EnrichWithGeocoding(context.Background(), ds, "LAT", "LONG", g, discardLogger())

		assert.Contains(t, ds.Columns, ColumnCountry)
		assert.Contains(t, ds.Columns, ColumnRegion)
		assert.Equal(t, StringCell("US"), ds.Records[0].Cell(ColumnCountry))
		assert.Equal(t, StringCell("Nevada"), ds.Records[0].Cell(ColumnRegion))
		assert.Equal(t, 1, g.calls, "records without coordinates are skipped")
		assert.Equal(t, NullCell(), ds.Records[1].Cell(ColumnCountry))
	})

	t.Run("provider failure degrades gracefully", func(t *testing.T) {
		ds := geoDataset(t)
		g := &fakeGeocoder{err: errors.New("rate limited")}

		EnrichWithGeocoding(context.Background(), ds, "LAT", "LONG", g, discardLogger())

		assert.Equal(t, NullCell(), ds.Records[0].Cell(ColumnCountry))
	})

	t.Run("nil geocoder is a no-op", func(t *testing.T) {
		ds := geoDataset(t)
		EnrichWithGeocoding(context.Background(), ds, "LAT", "LONG", nil, discardLogger())
		assert.NotContains(t, ds.Columns, ColumnCountry)
	})
}
