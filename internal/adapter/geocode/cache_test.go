package geocode

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sopkre/johnstonsarchive-nucleartest-reader/internal/domain"
)

type countingGeocoder struct {
	calls  int
	result domain.GeocodingResult
	err    error
}

func (m *countingGeocoder) ReverseGeocode(_ context.Context, _, _ float64) (domain.GeocodingResult, error) {
	m.calls++
	return m.result, m.err
}

func TestCachedGeocoder_Hit(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{CountryCode: "US", Region: "Nevada"}}
	cached := NewCachedGeocoder(inner, 10, nil)

	r1, err := cached.ReverseGeocode(context.Background(), 37.1, -116.05)
	require.NoError(t, err)
	assert.Equal(t, "Nevada", r1.Region)

	r2, err := cached.ReverseGeocode(context.Background(), 37.1, -116.05)
	require.NoError(t, err)
	assert.Equal(t, "Nevada", r2.Region)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedGeocoder_EmptyResultNotCached(t *testing.T) {
	inner := &countingGeocoder{}
	cached := NewCachedGeocoder(inner, 10, nil)

	_, err := cached.ReverseGeocode(context.Background(), 0.5, 0.5)
	require.NoError(t, err)
	_, err = cached.ReverseGeocode(context.Background(), 0.5, 0.5)
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedGeocoder_ErrorPassthrough(t *testing.T) {
	inner := &countingGeocoder{err: errors.New("boom")}
	cached := NewCachedGeocoder(inner, 10, nil)

	_, err := cached.ReverseGeocode(context.Background(), 1, 2)
	require.Error(t, err)
}

func TestLRUCache_Eviction(t *testing.T) {
	cache := newLRUCache(2)
	cache.put("a", domain.GeocodingResult{Region: "A"})
	cache.put("b", domain.GeocodingResult{Region: "B"})

	// Touch "a" so "b" becomes least recently used.
	_, ok := cache.get("a")
	require.True(t, ok)

	cache.put("c", domain.GeocodingResult{Region: "C"})

	_, ok = cache.get("b")
	assert.False(t, ok, "least recently used entry evicted")
	_, ok = cache.get("a")
	assert.True(t, ok)
	_, ok = cache.get("c")
	assert.True(t, ok)
}

func TestCachedGeocoder_KeyPrecision(t *testing.T) {
	inner := &countingGeocoder{result: domain.GeocodingResult{CountryCode: "US"}}
	cached := NewCachedGeocoder(inner, 10, nil)

	for i := 0; i < 3; i++ {
		_, err := cached.ReverseGeocode(context.Background(), 37.10001+float64(i)*1e-6, -116.05)
		require.NoError(t, err, fmt.Sprintf("call %d", i))
	}
	// Coordinates within 1e-4 degrees share a cache key.
	assert.Equal(t, 1, inner.calls)
}
