package models

import (
	"time"

	"gorm.io/gorm"
)

// Chat is a conversation between exactly two users, optionally tied to a
// ride. Chats are created lazily on first contact and never deleted.
// UserAID always holds the smaller of the two ids so the pair is unique
// regardless of who wrote first.
type Chat struct {
	gorm.Model
	UserAID uint  `json:"userAId" gorm:"not null;index:idx_chat_pair,unique"`
	UserA   *User `json:"userA,omitempty" gorm:"foreignKey:UserAID"`
	UserBID uint  `json:"userBId" gorm:"not null;index:idx_chat_pair,unique"`
	UserB   *User `json:"userB,omitempty" gorm:"foreignKey:UserBID"`
	RideID  *uint `json:"rideId"`
	Ride    *Ride `json:"ride,omitempty"`
}

// HasParticipant reports whether the user belongs to this chat.
func (c *Chat) HasParticipant(userID uint) bool {
	return c.UserAID == userID || c.UserBID == userID
}

// OtherParticipant returns the counterparty of the given user.
func (c *Chat) OtherParticipant(userID uint) uint {
	if c.UserAID == userID {
		return c.UserBID
	}
	return c.UserAID
}

// NormalizeChatPair orders two user ids so (a, b) and (b, a) address
// the same chat row.
func NormalizeChatPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}

type Message struct {
	gorm.Model
	ChatID   uint       `json:"chatId" gorm:"not null;index"`
	Chat     *Chat      `json:"-"`
	SenderID uint       `json:"senderId" gorm:"not null;index"`
	Sender   *User      `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Content  string     `json:"content" gorm:"type:text;not null"`
	ReadAt   *time.Time `json:"readAt"`
}
