package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"github.com/safargo/safar-backend/internal/services"
	"gorm.io/gorm"
)

type TopicInput struct {
	Topic string `json:"topic" binding:"required"`
}

// SubscribeToTopic subscribes the user's device to a broadcast topic,
// e.g. route announcements for a city.
func SubscribeToTopic(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input TopicInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.First(&user, userID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}
		if user.FCMToken == "" {
			c.JSON(400, gin.H{"error": "No device token registered"})
			return
		}

		if err := services.SubscribeToTopic(c.Request.Context(), []string{user.FCMToken}, input.Topic); err != nil {
			c.JSON(500, gin.H{"error": "Failed to subscribe to topic"})
			return
		}

		c.JSON(200, gin.H{"message": "Subscribed to " + input.Topic})
	}
}

// UnsubscribeFromTopic removes the user's device from a broadcast topic.
func UnsubscribeFromTopic(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input TopicInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var user models.User
		if result := db.First(&user, userID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}
		if user.FCMToken == "" {
			c.JSON(400, gin.H{"error": "No device token registered"})
			return
		}

		if err := services.UnsubscribeFromTopic(c.Request.Context(), []string{user.FCMToken}, input.Topic); err != nil {
			c.JSON(500, gin.H{"error": "Failed to unsubscribe from topic"})
			return
		}

		c.JSON(200, gin.H{"message": "Unsubscribed from " + input.Topic})
	}
}
