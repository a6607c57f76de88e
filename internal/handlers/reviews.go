package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	BookingID uint   `json:"bookingId" binding:"required"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

// CreateReview leaves a rating for the other party of a completed booking.
// Each side of a booking can review once. The reviewee's aggregate rating
// is recomputed in the same transaction.
func CreateReview(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input CreateReviewInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Rating < 1 || input.Rating > 5 {
			c.JSON(400, gin.H{"error": "Rating must be between 1 and 5"})
			return
		}

		var booking models.Booking
		if result := db.Preload("Ride").First(&booking, input.BookingID); result.Error != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}
		if booking.Status != models.BookingStatusCompleted {
			c.JSON(400, gin.H{"error": "Only completed trips can be reviewed"})
			return
		}
		if booking.Ride == nil {
			c.JSON(500, gin.H{"error": "Booking has no ride"})
			return
		}

		var revieweeID uint
		var direction models.ReviewDirection
		switch userID {
		case booking.PassengerID:
			revieweeID = booking.Ride.DriverID
			direction = models.ReviewPassengerToDriver
		case booking.Ride.DriverID:
			revieweeID = booking.PassengerID
			direction = models.ReviewDriverToPassenger
		default:
			c.JSON(403, gin.H{"error": "Only trip participants can leave a review"})
			return
		}

		review := models.Review{
			BookingID:  booking.ID,
			AuthorID:   userID,
			RevieweeID: revieweeID,
			Rating:     input.Rating,
			Comment:    input.Comment,
			Direction:  direction,
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&review).Error; err != nil {
				return err
			}

			var stats struct {
				Avg   float64
				Count int64
			}
			if err := tx.Model(&models.Review{}).
				Select("AVG(rating) as avg, COUNT(*) as count").
				Where("reviewee_id = ?", revieweeID).
				Scan(&stats).Error; err != nil {
				return err
			}

			return tx.Model(&models.User{}).Where("id = ?", revieweeID).
				Updates(map[string]interface{}{
					"rating":       stats.Avg,
					"rating_count": stats.Count,
				}).Error
		})
		if err != nil {
			if isUniqueViolation(err) {
				c.JSON(409, gin.H{"error": "You have already reviewed this trip"})
				return
			}
			if isForeignKeyViolation(err) {
				c.JSON(401, gin.H{"error": "profile not found, please log in again"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to create review"})
			return
		}

		db.Preload("Author").First(&review, review.ID)

		c.JSON(201, gin.H{"review": review})
	}
}

// GetUserReviews lists reviews received by a user, newest first.
func GetUserReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if result := db.First(&user, c.Param("id")); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		var reviews []models.Review
		if result := db.Preload("Author").
			Where("reviewee_id = ?", user.ID).
			Order("created_at DESC").
			Limit(100).
			Find(&reviews); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch reviews"})
			return
		}

		c.JSON(200, gin.H{
			"reviews":     reviews,
			"rating":      user.Rating,
			"ratingCount": user.RatingCount,
		})
	}
}

// GetPendingReviews lists completed bookings the user has not reviewed yet.
func GetPendingReviews(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var bookings []models.Booking
		err := db.Preload("Ride").Preload("Ride.Driver").Preload("Passenger").
			Joins("LEFT JOIN reviews ON reviews.booking_id = bookings.id AND reviews.author_id = ? AND reviews.deleted_at IS NULL", userID).
			Joins("JOIN rides ON rides.id = bookings.ride_id").
			Where("bookings.status = ? AND reviews.id IS NULL AND (bookings.passenger_id = ? OR rides.driver_id = ?)",
				models.BookingStatusCompleted, userID, userID).
			Find(&bookings).Error
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch pending reviews"})
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}
