package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Username     string  `json:"username" gorm:"column:username;unique;not null"`
	Email        string  `json:"email" gorm:"column:email;unique;not null"`
	PasswordHash string  `json:"-" gorm:"column:password_hash;not null"`
	PhoneNumber  string  `json:"phoneNumber" gorm:"column:phone_number"`
	IsVerified   bool    `json:"isVerified" gorm:"column:is_verified;default:false"`
	Rating       float64 `json:"rating" gorm:"column:rating;default:0"`
	RatingCount  int     `json:"ratingCount" gorm:"column:rating_count;default:0"`
	RidesCount   int     `json:"ridesCount" gorm:"column:rides_count;default:0"`
	AvatarURL    string  `json:"avatarUrl" gorm:"column:avatar_url"`
	FCMToken     string  `json:"-" gorm:"column:fcm_token"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// PublicProfile is the shape of a user as seen by other users.
func (u *User) PublicProfile() map[string]interface{} {
	return map[string]interface{}{
		"id":         u.ID,
		"username":   u.Username,
		"isVerified": u.IsVerified,
		"rating":     u.Rating,
		"ridesCount": u.RidesCount,
		"avatarUrl":  u.AvatarURL,
	}
}
