package models

import (
	"gorm.io/gorm"
)

type ReviewDirection string

const (
	ReviewDriverToPassenger ReviewDirection = "driver_to_passenger"
	ReviewPassengerToDriver ReviewDirection = "passenger_to_driver"
)

// Review is a 1-5 rating with an optional comment, tied to a completed
// booking. The (booking, author) pair is unique: each side reviews once.
type Review struct {
	gorm.Model
	BookingID  uint            `json:"bookingId" gorm:"not null;index:idx_review_once,unique"`
	Booking    *Booking        `json:"-"`
	AuthorID   uint            `json:"authorId" gorm:"not null;index:idx_review_once,unique"`
	Author     *User           `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	RevieweeID uint            `json:"revieweeId" gorm:"not null;index"`
	Reviewee   *User           `json:"-" gorm:"foreignKey:RevieweeID"`
	Rating     int             `json:"rating" gorm:"not null"`
	Comment    string          `json:"comment"`
	Direction  ReviewDirection `json:"direction" gorm:"not null"`
}
