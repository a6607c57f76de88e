package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/services"
	"github.com/safargo/safar-backend/pkg/utils"
)

// AutocompletePlaces suggests places for a partial query. Falls back to the
// built-in city list when the upstream geocoder is unavailable, and tags the
// response with where the results came from.
func AutocompletePlaces() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if len([]rune(query)) < 2 {
			c.JSON(400, gin.H{"error": "Query must be at least 2 characters"})
			return
		}

		result := services.AutocompletePlaces(c.Request.Context(), query)
		c.JSON(200, gin.H{"source": result.Source, "places": result.Places})
	}
}

// GetPlaceDetails resolves a place id to coordinates and a formatted address.
func GetPlaceDetails() gin.HandlerFunc {
	return func(c *gin.Context) {
		placeID := c.Query("placeId")
		if placeID == "" {
			c.JSON(400, gin.H{"error": "Query parameter placeId is required"})
			return
		}

		result := services.PlaceDetails(c.Request.Context(), placeID)
		c.JSON(200, result)
	}
}

// ReverseGeocode maps coordinates to the nearest known address. Coordinates
// outside the service region resolve through the fallback city list.
func ReverseGeocode() gin.HandlerFunc {
	return func(c *gin.Context) {
		lat, err := strconv.ParseFloat(c.Query("lat"), 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Query parameter lat must be a number"})
			return
		}
		lng, err := strconv.ParseFloat(c.Query("lng"), 64)
		if err != nil {
			c.JSON(400, gin.H{"error": "Query parameter lng must be a number"})
			return
		}

		result := services.ReverseGeocode(c.Request.Context(), lat, lng)
		c.JSON(200, gin.H{
			"result":          result,
			"inServiceRegion": utils.IsInServiceRegion(lat, lng),
		})
	}
}
