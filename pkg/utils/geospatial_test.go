package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// Tashkent to Samarkand is roughly 270 km by air
	d := HaversineDistance(41.2995, 69.2401, 39.6542, 66.9597)
	assert.InDelta(t, 270, d, 15)

	// Zero distance for identical points
	assert.InDelta(t, 0, HaversineDistance(41.2995, 69.2401, 41.2995, 69.2401), 0.001)
}

func TestIsInServiceRegion(t *testing.T) {
	// Tashkent
	assert.True(t, IsInServiceRegion(41.2995, 69.2401))
	// Bukhara
	assert.True(t, IsInServiceRegion(39.7747, 64.4286))
	// Nukus, far west
	assert.True(t, IsInServiceRegion(42.4531, 59.6103))

	// London
	assert.False(t, IsInServiceRegion(51.5074, -0.1278))
	// Moscow
	assert.False(t, IsInServiceRegion(55.7558, 37.6173))
	// South of the border
	assert.False(t, IsInServiceRegion(35.0, 64.0))
}

func TestIsPointInBoundingBox(t *testing.T) {
	box := BoundingBox{
		NorthEast: Point{Lat: 10, Lng: 10},
		SouthWest: Point{Lat: 0, Lng: 0},
	}

	assert.True(t, IsPointInBoundingBox(Point{Lat: 5, Lng: 5}, box))
	assert.True(t, IsPointInBoundingBox(Point{Lat: 0, Lng: 0}, box))
	assert.True(t, IsPointInBoundingBox(Point{Lat: 10, Lng: 10}, box))
	assert.False(t, IsPointInBoundingBox(Point{Lat: 11, Lng: 5}, box))
	assert.False(t, IsPointInBoundingBox(Point{Lat: 5, Lng: -1}, box))
}
