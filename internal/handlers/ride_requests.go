package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"github.com/safargo/safar-backend/internal/services"
	"gorm.io/gorm"
)

type CreateRideRequestInput struct {
	FromCity      string   `json:"fromCity" binding:"required"`
	ToCity        string   `json:"toCity" binding:"required"`
	PreferredDate string   `json:"preferredDate" binding:"required"`
	Passengers    int      `json:"passengers" binding:"required"`
	MaxPrice      *float64 `json:"maxPrice"`
	Note          string   `json:"note"`
}

// CreateRideRequest posts a passenger's demand for a route when no ride
// matches. Drivers browse these and can respond by publishing a ride.
// Posting a duplicate open request for the same route and day returns the
// existing one instead of creating another.
func CreateRideRequest(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input CreateRideRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if strings.EqualFold(strings.TrimSpace(input.FromCity), strings.TrimSpace(input.ToCity)) {
			c.JSON(400, gin.H{"error": "Origin and destination must be different"})
			return
		}
		if input.Passengers < 1 || input.Passengers > 8 {
			c.JSON(400, gin.H{"error": "Passengers must be between 1 and 8"})
			return
		}
		if input.MaxPrice != nil && *input.MaxPrice < 0 {
			c.JSON(400, gin.H{"error": "Max price cannot be negative"})
			return
		}

		preferred, err := time.Parse("2006-01-02", input.PreferredDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid preferred date, expected YYYY-MM-DD"})
			return
		}
		if preferred.Before(time.Now().Truncate(24 * time.Hour)) {
			c.JSON(400, gin.H{"error": "Preferred date must not be in the past"})
			return
		}

		var existing models.RideRequest
		if result := db.Where(
			"passenger_id = ? AND from_city = ? AND to_city = ? AND preferred_date = ? AND status = ?",
			userID, input.FromCity, input.ToCity, preferred, models.RideRequestStatusOpen).
			First(&existing); result.Error == nil {
			c.JSON(200, gin.H{"request": existing, "existing": true})
			return
		}

		request := models.RideRequest{
			PassengerID:   userID,
			FromCity:      input.FromCity,
			ToCity:        input.ToCity,
			PreferredDate: preferred,
			Passengers:    input.Passengers,
			MaxPrice:      input.MaxPrice,
			Note:          input.Note,
			Status:        models.RideRequestStatusOpen,
		}

		if result := db.Create(&request); result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				c.JSON(401, gin.H{"error": "profile not found, please log in again"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to create ride request"})
			return
		}

		db.Preload("Passenger").First(&request, request.ID)

		// Let drivers with open rides on this route know about the demand
		go notifyDriversOfRequest(db, hub, &request)

		c.JSON(201, gin.H{"request": request})
	}
}

// ListRideRequests lists open requests, optionally filtered by route and date.
func ListRideRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Passenger").
			Where("status = ? AND preferred_date >= ?", models.RideRequestStatusOpen,
				time.Now().Truncate(24*time.Hour))

		if from := c.Query("from"); from != "" {
			query = query.Where("from_city ILIKE ?", "%"+from+"%")
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("to_city ILIKE ?", "%"+to+"%")
		}
		if date := c.Query("date"); date != "" {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
				return
			}
			query = query.Where("preferred_date = ?", day)
		}

		var requests []models.RideRequest
		if result := query.Order("preferred_date ASC").Limit(100).Find(&requests); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch ride requests"})
			return
		}

		c.JSON(200, gin.H{"requests": requests})
	}
}

// GetMyRideRequests lists the authenticated passenger's own requests.
func GetMyRideRequests(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var requests []models.RideRequest
		if result := db.Where("passenger_id = ?", userID).
			Order("created_at DESC").
			Find(&requests); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch ride requests"})
			return
		}

		c.JSON(200, gin.H{"requests": requests})
	}
}

// CloseRideRequest closes an open request. Only its owner can close it.
func CloseRideRequest(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var request models.RideRequest
		if result := db.Where("id = ? AND passenger_id = ?", c.Param("id"), userID).
			First(&request); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride request not found"})
			return
		}
		if request.Status == models.RideRequestStatusClosed {
			c.JSON(400, gin.H{"error": "Ride request is already closed"})
			return
		}

		if result := db.Model(&request).Update("status", models.RideRequestStatusClosed); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to close ride request"})
			return
		}

		db.First(&request, request.ID)

		services.NotifyUsers(c.Request.Context(), hub, []uint{userID},
			services.EventRideRequestUpdate, request.UpdatedAt.UnixNano(), request)

		c.JSON(200, gin.H{"request": request})
	}
}

// notifyDriversOfRequest pushes a versioned event to drivers who have an
// active ride on the requested route and day.
func notifyDriversOfRequest(db *gorm.DB, hub *services.Hub, request *models.RideRequest) {
	day := request.PreferredDate

	var driverIDs []uint
	db.Model(&models.Ride{}).
		Where("status = ? AND from_city = ? AND to_city = ? AND departure_date >= ? AND departure_date < ?",
			models.RideStatusActive, request.FromCity, request.ToCity, day, day.AddDate(0, 0, 1)).
		Distinct().
		Pluck("driver_id", &driverIDs)
	if len(driverIDs) == 0 {
		return
	}

	services.NotifyUsers(context.Background(), hub, driverIDs,
		services.EventRideRequestUpdate, request.UpdatedAt.UnixNano(), request)
}
