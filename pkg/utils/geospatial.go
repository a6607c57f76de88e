package utils

import (
	"math"
)

// HaversineDistance calculates the distance between two points on Earth
// using the Haversine formula. Returns distance in kilometers.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371 // Earth's radius in kilometers

	// Convert degrees to radians
	lat1Rad := lat1 * math.Pi / 180
	lng1Rad := lng1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lng2Rad := lng2 * math.Pi / 180

	// Haversine formula
	dlat := lat2Rad - lat1Rad
	dlng := lng2Rad - lng1Rad

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dlng/2)*math.Sin(dlng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c
}

// Point represents a geographical point
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox represents a rectangular area
type BoundingBox struct {
	NorthEast Point `json:"northEast"`
	SouthWest Point `json:"southWest"`
}

// UzbekistanBounds is the service region. Coordinates outside this box
// are treated as out of region by the geocoding layer.
var UzbekistanBounds = BoundingBox{
	NorthEast: Point{Lat: 45.59, Lng: 73.14},
	SouthWest: Point{Lat: 37.18, Lng: 55.99},
}

// IsPointInBoundingBox checks if a point is within a bounding box
func IsPointInBoundingBox(point Point, bbox BoundingBox) bool {
	return point.Lat >= bbox.SouthWest.Lat &&
		point.Lat <= bbox.NorthEast.Lat &&
		point.Lng >= bbox.SouthWest.Lng &&
		point.Lng <= bbox.NorthEast.Lng
}

// IsInServiceRegion reports whether a coordinate falls inside Uzbekistan.
func IsInServiceRegion(lat, lng float64) bool {
	return IsPointInBoundingBox(Point{Lat: lat, Lng: lng}, UzbekistanBounds)
}
