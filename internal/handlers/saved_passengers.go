package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"gorm.io/gorm"
)

type SavePassengerInput struct {
	PassengerID uint   `json:"passengerId" binding:"required"`
	Nickname    string `json:"nickname"`
	Notes       string `json:"notes"`
}

// SavePassenger bookmarks a passenger for a driver, e.g. a regular commuter.
func SavePassenger(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input SavePassengerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.PassengerID == userID {
			c.JSON(400, gin.H{"error": "Cannot save yourself"})
			return
		}

		var passenger models.User
		if result := db.First(&passenger, input.PassengerID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		saved := models.SavedPassenger{
			DriverID:    userID,
			PassengerID: input.PassengerID,
			Nickname:    input.Nickname,
			Notes:       input.Notes,
		}

		if result := db.Create(&saved); result.Error != nil {
			if isUniqueViolation(result.Error) {
				c.JSON(409, gin.H{"error": "Passenger is already saved"})
				return
			}
			if isForeignKeyViolation(result.Error) {
				c.JSON(401, gin.H{"error": "profile not found, please log in again"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to save passenger"})
			return
		}

		db.Preload("Passenger").First(&saved, saved.ID)

		c.JSON(201, gin.H{"savedPassenger": saved})
	}
}

// GetSavedPassengers lists the driver's saved passengers.
func GetSavedPassengers(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var saved []models.SavedPassenger
		if result := db.Preload("Passenger").
			Where("driver_id = ?", userID).
			Order("created_at DESC").
			Find(&saved); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch saved passengers"})
			return
		}

		c.JSON(200, gin.H{"savedPassengers": saved})
	}
}

type UpdateSavedPassengerInput struct {
	Nickname *string `json:"nickname"`
	Notes    *string `json:"notes"`
}

// UpdateSavedPassenger edits the nickname or notes on a saved passenger.
func UpdateSavedPassenger(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var saved models.SavedPassenger
		if result := db.Where("id = ? AND driver_id = ?", c.Param("id"), userID).
			First(&saved); result.Error != nil {
			c.JSON(404, gin.H{"error": "Saved passenger not found"})
			return
		}

		var input UpdateSavedPassengerInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		updates := map[string]interface{}{}
		if input.Nickname != nil {
			updates["nickname"] = *input.Nickname
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if len(updates) > 0 {
			if result := db.Model(&saved).Updates(updates); result.Error != nil {
				c.JSON(500, gin.H{"error": "Failed to update saved passenger"})
				return
			}
		}

		db.Preload("Passenger").First(&saved, saved.ID)

		c.JSON(200, gin.H{"savedPassenger": saved})
	}
}

// RemoveSavedPassenger deletes a bookmark.
func RemoveSavedPassenger(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var saved models.SavedPassenger
		if result := db.Where("id = ? AND driver_id = ?", c.Param("id"), userID).
			First(&saved); result.Error != nil {
			c.JSON(404, gin.H{"error": "Saved passenger not found"})
			return
		}

		if result := db.Delete(&saved); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to remove saved passenger"})
			return
		}

		c.JSON(200, gin.H{"message": "Saved passenger removed"})
	}
}
