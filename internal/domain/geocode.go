package domain

import (
	"context"
	"log/slog"
)

// GeocodingResult holds place details for a coordinate pair.
type GeocodingResult struct {
	CountryCode string
	Region      string
	PlaceName   string
	Confidence  float64 // 0.0-1.0 provider confidence score
}

// Geocoder resolves test-site coordinates into country/region codes.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// EnrichWithGeocoding fills COUNTRY and REGION on every assembled record that
// carries coordinates, and appends the two columns to the dataset contract.
// Failures degrade gracefully: a record keeps empty enrichment fields and the
// run continues. Geocoding never aborts an extraction.
func EnrichWithGeocoding(ctx context.Context, ds *Dataset, latColumn, lonColumn string, geocoder Geocoder, logger *slog.Logger) {
	if geocoder == nil || ds == nil {
		return
	}
	ds.Columns = append(ds.Columns, ColumnCountry, ColumnRegion)

	for _, rec := range ds.Records {
		lat, okLat := floatCell(rec, latColumn)
		lon, okLon := floatCell(rec, lonColumn)
		if !okLat || !okLon {
			continue
		}
		result, err := geocoder.ReverseGeocode(ctx, lat, lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"state", rec.State,
				"id", rec.ID,
				"lat", lat,
				"lon", lon,
				"error", err,
			)
			continue
		}
		rec.Country = result.CountryCode
		rec.Region = result.Region
	}
}

func floatCell(rec *Record, name string) (float64, bool) {
	cell, ok := rec.Typed[name]
	if !ok {
		return 0, false
	}
	switch cell.Kind {
	case KindFloat:
		return cell.Num, true
	case KindInt:
		return float64(cell.Int), true
	}
	return 0, false
}
