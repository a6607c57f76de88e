package handlers

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"github.com/safargo/safar-backend/internal/services"
	"gorm.io/gorm"
)

// GetProfile returns the authenticated user's own profile.
func GetProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var user models.User
		if result := db.First(&user, userID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		c.JSON(200, gin.H{"user": profileResponse(db, &user)})
	}
}

// GetPublicProfile returns another user's public profile with their cars.
func GetPublicProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user models.User
		if result := db.First(&user, c.Param("id")); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		var cars []models.UserCar
		db.Where("user_id = ?", user.ID).Find(&cars)

		var reviews []models.Review
		db.Preload("Author").
			Where("reviewee_id = ?", user.ID).
			Order("created_at DESC").
			Limit(20).
			Find(&reviews)

		c.JSON(200, gin.H{
			"user":    user.PublicProfile(),
			"cars":    cars,
			"reviews": reviews,
		})
	}
}

type UpdateProfileInput struct {
	Username    *string `json:"username"`
	PhoneNumber *string `json:"phoneNumber"`
}

// UpdateProfile updates the editable fields of the authenticated user.
func UpdateProfile(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input UpdateProfileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.First(&user, userID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		updates := map[string]interface{}{}
		if input.Username != nil {
			if *input.Username == "" {
				c.JSON(400, gin.H{"error": "Username cannot be empty"})
				return
			}
			updates["username"] = *input.Username
		}
		if input.PhoneNumber != nil {
			updates["phone_number"] = *input.PhoneNumber
		}

		if len(updates) > 0 {
			if result := db.Model(&user).Updates(updates); result.Error != nil {
				if isUniqueViolation(result.Error) {
					c.JSON(409, gin.H{"error": "Username is already taken"})
					return
				}
				c.JSON(500, gin.H{"error": "Failed to update profile"})
				return
			}
		}

		c.JSON(200, gin.H{"user": profileResponse(db, &user)})
	}
}

// UploadAvatar stores a new profile image and replaces the previous one.
func UploadAvatar(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var user models.User
		if result := db.First(&user, userID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		file, err := c.FormFile("avatar")
		if err != nil {
			c.JSON(400, gin.H{"error": "Avatar image is required"})
			return
		}

		url, err := services.UploadImage(file, "avatars")
		if err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		oldURL := user.AvatarURL
		if result := db.Model(&user).Update("avatar_url", url); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to update avatar"})
			return
		}

		if oldURL != "" {
			if err := services.DeleteImage(oldURL); err != nil {
				log.Printf("Failed to delete old avatar %s: %v", oldURL, err)
			}
		}

		c.JSON(200, gin.H{"avatarUrl": url})
	}
}

type UpdateFCMTokenInput struct {
	Token string `json:"token" binding:"required"`
}

// UpdateFCMToken stores the device's push token for the authenticated user.
func UpdateFCMToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input UpdateFCMTokenInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if result := db.Model(&models.User{}).Where("id = ?", userID).
			Update("fcm_token", input.Token); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to update FCM token"})
			return
		}

		c.JSON(200, gin.H{"message": "FCM token updated"})
	}
}

// RemoveFCMToken clears the stored push token, typically on logout.
func RemoveFCMToken(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		if result := db.Model(&models.User{}).Where("id = ?", userID).
			Update("fcm_token", ""); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to remove FCM token"})
			return
		}

		c.JSON(200, gin.H{"message": "FCM token removed"})
	}
}

// DeleteAccount removes the user and everything owned by them.
func DeleteAccount(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var user models.User
		if result := db.First(&user, userID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			// Cancel live bookings on the user's active rides first so
			// passengers are not left pointing at a deleted driver.
			var rideIDs []uint
			if err := tx.Model(&models.Ride{}).Where("driver_id = ?", userID).
				Pluck("id", &rideIDs).Error; err != nil {
				return err
			}
			if len(rideIDs) > 0 {
				if err := tx.Model(&models.Booking{}).
					Where("ride_id IN ? AND status IN ?", rideIDs,
						[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
					Update("status", models.BookingStatusCancelled).Error; err != nil {
					return err
				}
				if err := tx.Where("ride_id IN ?", rideIDs).Delete(&models.Booking{}).Error; err != nil {
					return err
				}
				if err := tx.Where("driver_id = ?", userID).Delete(&models.Ride{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("passenger_id = ?", userID).Delete(&models.Booking{}).Error; err != nil {
				return err
			}
			if err := tx.Where("passenger_id = ?", userID).Delete(&models.RideRequest{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&models.UserCar{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&models.OTP{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).Delete(&models.NotificationPreference{}).Error; err != nil {
				return err
			}
			if err := tx.Where("driver_id = ? OR passenger_id = ?", userID, userID).
				Delete(&models.SavedPassenger{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_a_id = ? OR user_b_id = ?", userID, userID).
				Delete(&models.Chat{}).Error; err != nil {
				return err
			}

			return tx.Delete(&user).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to delete account"})
			return
		}

		if user.AvatarURL != "" {
			if err := services.DeleteImage(user.AvatarURL); err != nil {
				log.Printf("Failed to delete avatar for user %d: %v", userID, err)
			}
		}

		c.JSON(200, gin.H{"message": "Account deleted"})
	}
}
