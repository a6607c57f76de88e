package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"github.com/safargo/safar-backend/internal/services"
	"gorm.io/gorm"
)

const (
	maxMessageLength = 2000
	previewLength    = 120
)

// messagePreview shortens a message body for a push notification without
// splitting a multi-byte character.
func messagePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength])
}

type StartChatInput struct {
	UserID uint  `json:"userId" binding:"required"`
	RideID *uint `json:"rideId"`
}

// StartChat finds or creates the chat between the authenticated user and
// another user. There is at most one chat per user pair.
func StartChat(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input StartChatInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.UserID == userID {
			c.JSON(400, gin.H{"error": "Cannot start a chat with yourself"})
			return
		}

		var other models.User
		if result := db.First(&other, input.UserID); result.Error != nil {
			c.JSON(404, gin.H{"error": "User not found"})
			return
		}

		a, b := models.NormalizeChatPair(userID, input.UserID)

		var chat models.Chat
		result := db.Where("user_a_id = ? AND user_b_id = ?", a, b).First(&chat)
		if result.Error != nil {
			chat = models.Chat{UserAID: a, UserBID: b, RideID: input.RideID}
			if err := db.Create(&chat).Error; err != nil {
				if isUniqueViolation(err) {
					// Lost the race to a concurrent StartChat, reuse theirs
					db.Where("user_a_id = ? AND user_b_id = ?", a, b).First(&chat)
				} else if isForeignKeyViolation(err) {
					c.JSON(401, gin.H{"error": "profile not found, please log in again"})
					return
				} else {
					c.JSON(500, gin.H{"error": "Failed to create chat"})
					return
				}
			}
		}

		db.Preload("UserA").Preload("UserB").First(&chat, chat.ID)

		c.JSON(200, gin.H{"chat": chat})
	}
}

// ListChats returns the user's chats with last message and unread count.
func ListChats(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var chats []models.Chat
		if result := db.Preload("UserA").Preload("UserB").
			Where("user_a_id = ? OR user_b_id = ?", userID, userID).
			Order("updated_at DESC").
			Find(&chats); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch chats"})
			return
		}

		type chatSummary struct {
			Chat        models.Chat     `json:"chat"`
			LastMessage *models.Message `json:"lastMessage"`
			UnreadCount int64           `json:"unreadCount"`
		}

		summaries := make([]chatSummary, 0, len(chats))
		for _, chat := range chats {
			var last models.Message
			var lastPtr *models.Message
			if err := db.Where("chat_id = ?", chat.ID).
				Order("created_at DESC").First(&last).Error; err == nil {
				lastPtr = &last
			}

			var unread int64
			db.Model(&models.Message{}).
				Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chat.ID, userID).
				Count(&unread)

			summaries = append(summaries, chatSummary{
				Chat:        chat,
				LastMessage: lastPtr,
				UnreadCount: unread,
			})
		}

		c.JSON(200, gin.H{"chats": summaries})
	}
}

// GetMessages returns a page of messages in a chat, newest last, and marks
// the other side's messages as read.
func GetMessages(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var chat models.Chat
		if result := db.First(&chat, c.Param("id")); result.Error != nil {
			c.JSON(404, gin.H{"error": "Chat not found"})
			return
		}
		if !chat.HasParticipant(userID) {
			c.JSON(403, gin.H{"error": "You are not a participant of this chat"})
			return
		}

		limit := 50
		query := db.Where("chat_id = ?", chat.ID).Order("created_at DESC").Limit(limit)
		if before := c.Query("before"); before != "" {
			ts, err := time.Parse(time.RFC3339, before)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid before cursor, expected RFC3339"})
				return
			}
			query = query.Where("created_at < ?", ts)
		}

		var messages []models.Message
		if result := query.Find(&messages); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch messages"})
			return
		}

		// Reverse to chronological order
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}

		now := time.Now()
		db.Model(&models.Message{}).
			Where("chat_id = ? AND sender_id <> ? AND read_at IS NULL", chat.ID, userID).
			Update("read_at", now)

		c.JSON(200, gin.H{"messages": messages})
	}
}

type SendMessageInput struct {
	Content string `json:"content" binding:"required"`
}

// SendMessage posts a message into a chat and pushes it to the recipient.
func SendMessage(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input SendMessageInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		content := strings.TrimSpace(input.Content)
		if content == "" {
			c.JSON(400, gin.H{"error": "Message cannot be empty"})
			return
		}
		if len(content) > maxMessageLength {
			c.JSON(400, gin.H{"error": "Message is too long"})
			return
		}

		var chat models.Chat
		if result := db.First(&chat, c.Param("id")); result.Error != nil {
			c.JSON(404, gin.H{"error": "Chat not found"})
			return
		}
		if !chat.HasParticipant(userID) {
			c.JSON(403, gin.H{"error": "You are not a participant of this chat"})
			return
		}

		message := models.Message{
			ChatID:   chat.ID,
			SenderID: userID,
			Content:  content,
		}
		if result := db.Create(&message); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to send message"})
			return
		}

		// Bump the chat so it sorts to the top of the list
		db.Model(&chat).Update("updated_at", time.Now())

		recipientID := chat.OtherParticipant(userID)
		services.NotifyUsers(c.Request.Context(), hub, []uint{recipientID},
			services.EventChatMessage, message.CreatedAt.UnixNano(), message)

		go pushChatAlert(db, recipientID, userID, chat.ID, content)

		c.JSON(201, gin.H{"message": message})
	}
}

func pushChatAlert(db *gorm.DB, recipientID, senderID, chatID uint, content string) {
	var recipient models.User
	if err := db.First(&recipient, recipientID).Error; err != nil {
		return
	}
	var prefs models.NotificationPreference
	if err := db.Where("user_id = ?", recipientID).First(&prefs).Error; err == nil {
		if !prefs.PushEnabled || !prefs.ChatAlerts {
			return
		}
	}

	var sender models.User
	if err := db.First(&sender, senderID).Error; err != nil {
		return
	}

	payload := services.NotificationPayload{
		Title: sender.Username,
		Body:  messagePreview(content),
		Data:  map[string]interface{}{"type": "chat_message", "chatId": chatID},
	}
	if err := services.SendNotificationToToken(context.Background(), recipient.FCMToken, payload); err != nil {
		log.Printf("Failed to push chat alert to user %d: %v", recipientID, err)
	}
}
