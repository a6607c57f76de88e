package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterKnownCities(t *testing.T) {
	matches := FilterKnownCities("бух")
	require.Len(t, matches, 1)
	assert.Equal(t, "Бухара", matches[0].Name)
	assert.NotNil(t, matches[0].Lat)
	assert.NotNil(t, matches[0].Lng)

	// Matching is case-insensitive
	upper := FilterKnownCities("ТАШ")
	require.Len(t, upper, 1)
	assert.Equal(t, "Ташкент", upper[0].Name)

	// Empty query matches everything but stays capped
	all := FilterKnownCities("")
	assert.Len(t, all, MaxPlaceResults)

	assert.Empty(t, FilterKnownCities("xyzzy"))
}

func TestMergeKnownCities(t *testing.T) {
	lat, lng := 39.7747, 64.4286
	live := []Place{{PlaceID: "abc", Name: "Бухара", Lat: &lat, Lng: &lng}}

	merged := mergeKnownCities(live, "бух")
	// Already present by name, nothing appended
	require.Len(t, merged, 1)
	assert.Equal(t, "abc", merged[0].PlaceID)

	merged = mergeKnownCities(nil, "бух")
	require.Len(t, merged, 1)
	assert.Equal(t, "Бухара", merged[0].Name)
}

func TestAutocompletePlacesFallsBackWithoutKey(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	result := AutocompletePlaces(context.Background(), "сам")
	assert.Equal(t, SourceFallback, result.Source)
	require.NotEmpty(t, result.Places)
	assert.Equal(t, "Самарканд", result.Places[0].Name)
}

func TestPlaceDetailsFallsBackWithoutKey(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	result := PlaceDetails(context.Background(), "some-place-id")
	assert.Equal(t, SourceFallback, result.Source)
	assert.Empty(t, result.FormattedAddress)
}

func TestReverseGeocodeOutOfRegion(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	// London is far outside the service region
	result := ReverseGeocode(context.Background(), 51.5074, -0.1278)
	assert.Equal(t, SourceFallback, result.Source)
	assert.Empty(t, result.FormattedAddress)
}

func TestReverseGeocodeNearestCityFallback(t *testing.T) {
	t.Setenv("GOOGLE_MAPS_API_KEY", "")

	// A point just outside Samarkand resolves to it
	result := ReverseGeocode(context.Background(), 39.70, 66.90)
	assert.Equal(t, SourceFallback, result.Source)
	assert.Equal(t, "Самарканд, Узбекистан", result.FormattedAddress)
}

func TestNearestCityFallback(t *testing.T) {
	result := nearestCityFallback(41.30, 69.25)
	assert.Equal(t, "Ташкент, Узбекистан", result.FormattedAddress)

	result = nearestCityFallback(37.25, 67.30)
	assert.Equal(t, "Термез, Узбекистан", result.FormattedAddress)
}
