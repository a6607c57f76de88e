package models

import (
	"time"

	"gorm.io/gorm"
)

type RideRequestStatus string

const (
	RideRequestStatusOpen   RideRequestStatus = "open"
	RideRequestStatusClosed RideRequestStatus = "closed"
)

// RideRequest is a passenger's standing "looking for a ride" posting.
// Drivers browse these and respond via chat; there is no automatic matching.
type RideRequest struct {
	gorm.Model
	PassengerID   uint              `json:"passengerId" gorm:"not null;index"`
	Passenger     *User             `json:"passenger,omitempty"`
	FromCity      string            `json:"fromCity" gorm:"not null"`
	ToCity        string            `json:"toCity" gorm:"not null"`
	PreferredDate time.Time         `json:"preferredDate" gorm:"not null"`
	Passengers    int               `json:"passengers" gorm:"not null;default:1"`
	MaxPrice      *float64          `json:"maxPrice"`
	Note          string            `json:"note"`
	Status        RideRequestStatus `json:"status" gorm:"not null;default:'open';index"`
}
