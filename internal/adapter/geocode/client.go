// Package geocode resolves test-site coordinates into country and region
// codes using the Mapbox Geocoding API.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/observability"
)

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewClient creates a Mapbox reverse-geocoding client.
func NewClient(token string, timeout time.Duration, logger *slog.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    "https://api.mapbox.com/geocoding/v5/mapbox.places",
		logger:     logger,
		metrics:    metrics,
	}
}

// ReverseGeocode converts coordinates to country and region codes.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	// Mapbox uses lon,lat order.
	coord := fmt.Sprintf("%.6f,%.6f", lon, lat)
	u := fmt.Sprintf("%s/%s.json", c.baseURL, coord)
	params := url.Values{
		"access_token": {c.token},
		"types":        {"region,country"},
	}

	result, err := c.doRequest(ctx, u+"?"+params.Encode())
	c.observe(result, err)
	return result, err
}

func (c *Client) observe(result domain.GeocodingResult, err error) {
	if c.metrics == nil {
		return
	}
	switch {
	case err != nil:
		c.metrics.GeocodeRequests.WithLabelValues("error").Inc()
	case result.CountryCode == "" && result.Region == "":
		c.metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.GeocodeRequests.WithLabelValues("success").Inc()
	}
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.GeocodingResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("reverse geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return domain.GeocodingResult{}, fmt.Errorf("mapbox API error: status %d: %s", resp.StatusCode, body)
	}

	var mapboxResp response
	if err := json.NewDecoder(resp.Body).Decode(&mapboxResp); err != nil {
		return domain.GeocodingResult{}, fmt.Errorf("decode response: %w", err)
	}

	return mapResult(mapboxResp), nil
}

func mapResult(resp response) domain.GeocodingResult {
	result := domain.GeocodingResult{}
	for _, f := range resp.Features {
		switch {
		case hasType(f, "country"):
			result.CountryCode = strings.ToUpper(f.Properties.ShortCode)
			if result.PlaceName == "" {
				result.PlaceName = f.Text
			}
			result.Confidence = f.Relevance
		case hasType(f, "region"):
			result.Region = f.Text
			result.PlaceName = f.PlaceName
			result.Confidence = f.Relevance
		}
		// Region features carry the parent country in their context.
		for _, cx := range f.Context {
			if strings.HasPrefix(cx.ID, "country.") && result.CountryCode == "" {
				result.CountryCode = strings.ToUpper(cx.ShortCode)
			}
		}
	}
	return result
}

func hasType(f feature, placeType string) bool {
	for _, t := range f.PlaceType {
		if t == placeType {
			return true
		}
	}
	return false
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	PlaceType  []string         `json:"place_type"`
	PlaceName  string           `json:"place_name"`
	Text       string           `json:"text"`
	Relevance  float64          `json:"relevance"`
	Properties featureProps     `json:"properties"`
	Context    []contextElement `json:"context"`
}

type featureProps struct {
	ShortCode string `json:"short_code"`
}

type contextElement struct {
	ID        string `json:"id"`
	ShortCode string `json:"short_code"`
	Text      string `json:"text"`
}
