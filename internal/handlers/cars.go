package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"gorm.io/gorm"
)

type CarInput struct {
	Make  string `json:"make" binding:"required"`
	Model string `json:"model" binding:"required"`
	Color string `json:"color"`
	Plate string `json:"plate" binding:"required"`
	Seats int    `json:"seats" binding:"required"`
}

// AddCar registers a car for the authenticated user. Owning at least one
// car is what lets a user publish rides.
func AddCar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input CarInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Seats < 1 || input.Seats > 8 {
			c.JSON(400, gin.H{"error": "Seats must be between 1 and 8"})
			return
		}

		car := models.UserCar{
			UserID:   userID,
			Make:     input.Make,
			CarModel: input.Model,
			Color:    input.Color,
			Plate:    input.Plate,
			Seats:    input.Seats,
		}

		if result := db.Create(&car); result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				c.JSON(401, gin.H{"error": "profile not found, please log in again"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to add car"})
			return
		}

		c.JSON(201, gin.H{"car": car})
	}
}

// GetMyCars lists the authenticated user's cars.
func GetMyCars(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var cars []models.UserCar
		if result := db.Where("user_id = ?", userID).Find(&cars); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch cars"})
			return
		}

		c.JSON(200, gin.H{"cars": cars})
	}
}

// UpdateCar edits one of the user's cars.
func UpdateCar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var car models.UserCar
		if result := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).
			First(&car); result.Error != nil {
			c.JSON(404, gin.H{"error": "Car not found"})
			return
		}

		var input CarInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Seats < 1 || input.Seats > 8 {
			c.JSON(400, gin.H{"error": "Seats must be between 1 and 8"})
			return
		}

		updates := map[string]interface{}{
			"make":  input.Make,
			"model": input.Model,
			"color": input.Color,
			"plate": input.Plate,
			"seats": input.Seats,
		}
		if result := db.Model(&car).Updates(updates); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to update car"})
			return
		}

		c.JSON(200, gin.H{"car": car})
	}
}

// DeleteCar removes a car unless it is attached to a live ride.
func DeleteCar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var car models.UserCar
		if result := db.Where("id = ? AND user_id = ?", c.Param("id"), userID).
			First(&car); result.Error != nil {
			c.JSON(404, gin.H{"error": "Car not found"})
			return
		}

		var liveRides int64
		db.Model(&models.Ride{}).
			Where("car_id = ? AND status IN ?", car.ID,
				[]models.RideStatus{models.RideStatusActive, models.RideStatusFull}).
			Count(&liveRides)
		if liveRides > 0 {
			c.JSON(400, gin.H{"error": "Car is used by an upcoming ride"})
			return
		}

		if result := db.Delete(&car); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to delete car"})
			return
		}

		c.JSON(200, gin.H{"message": "Car deleted"})
	}
}
