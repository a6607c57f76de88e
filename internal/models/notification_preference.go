package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationPreference represents user notification preferences
type NotificationPreference struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"uniqueIndex;not null" json:"userId"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// General push notification toggle
	PushEnabled bool `gorm:"column:push_enabled;default:true" json:"pushEnabled"`

	// Specific notification preferences
	NewRidesPush     bool `gorm:"column:new_rides_push;default:true" json:"newRidesPush"`
	BookingAlerts    bool `gorm:"column:booking_alerts;default:true" json:"bookingAlerts"`
	ChatAlerts       bool `gorm:"column:chat_alerts;default:true" json:"chatAlerts"`
	RideStatusAlerts bool `gorm:"column:ride_status_alerts;default:true" json:"rideStatusAlerts"`

	// Email and SMS preferences
	EmailEnabled bool `gorm:"column:email_enabled;default:true" json:"emailEnabled"`
	SMSEnabled   bool `gorm:"column:sms_enabled;default:true" json:"smsEnabled"`
}

// TableName specifies the table name for NotificationPreference
func (NotificationPreference) TableName() string {
	return "notification_preferences"
}

// DefaultPreferences returns default notification preferences for a new user
func DefaultPreferences(userID uint) *NotificationPreference {
	return &NotificationPreference{
		UserID:           userID,
		PushEnabled:      true,
		NewRidesPush:     true,
		BookingAlerts:    true,
		ChatAlerts:       true,
		RideStatusAlerts: true,
		EmailEnabled:     true,
		SMSEnabled:       true,
	}
}
