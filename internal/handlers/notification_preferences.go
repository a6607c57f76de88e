package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"gorm.io/gorm"
)

// GetNotificationPreferences returns the user's preferences, creating the
// default row if registration predates the preferences table.
func GetNotificationPreferences(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var prefs models.NotificationPreference
		if result := db.Where("user_id = ?", userID).First(&prefs); result.Error != nil {
			prefs = *models.DefaultPreferences(userID)
			if err := db.Create(&prefs).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to create notification preferences"})
				return
			}
		}

		c.JSON(200, gin.H{"preferences": prefs})
	}
}

type UpdatePreferencesInput struct {
	PushEnabled      *bool `json:"pushEnabled"`
	NewRidesPush     *bool `json:"newRidesPush"`
	BookingAlerts    *bool `json:"bookingAlerts"`
	ChatAlerts       *bool `json:"chatAlerts"`
	RideStatusAlerts *bool `json:"rideStatusAlerts"`
	EmailEnabled     *bool `json:"emailEnabled"`
	SMSEnabled       *bool `json:"smsEnabled"`
}

// UpdateNotificationPreferences applies a partial update to the preferences.
func UpdateNotificationPreferences(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input UpdatePreferencesInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var prefs models.NotificationPreference
		if result := db.Where("user_id = ?", userID).First(&prefs); result.Error != nil {
			prefs = *models.DefaultPreferences(userID)
			if err := db.Create(&prefs).Error; err != nil {
				c.JSON(500, gin.H{"error": "Failed to create notification preferences"})
				return
			}
		}

		updates := map[string]interface{}{}
		if input.PushEnabled != nil {
			updates["push_enabled"] = *input.PushEnabled
		}
		if input.NewRidesPush != nil {
			updates["new_rides_push"] = *input.NewRidesPush
		}
		if input.BookingAlerts != nil {
			updates["booking_alerts"] = *input.BookingAlerts
		}
		if input.ChatAlerts != nil {
			updates["chat_alerts"] = *input.ChatAlerts
		}
		if input.RideStatusAlerts != nil {
			updates["ride_status_alerts"] = *input.RideStatusAlerts
		}
		if input.EmailEnabled != nil {
			updates["email_enabled"] = *input.EmailEnabled
		}
		if input.SMSEnabled != nil {
			updates["sms_enabled"] = *input.SMSEnabled
		}

		if len(updates) > 0 {
			if result := db.Model(&prefs).Updates(updates); result.Error != nil {
				c.JSON(500, gin.H{"error": "Failed to update notification preferences"})
				return
			}
		}

		db.Where("user_id = ?", userID).First(&prefs)

		c.JSON(200, gin.H{"preferences": prefs})
	}
}
