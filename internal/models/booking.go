package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

type Booking struct {
	gorm.Model
	PassengerID uint          `json:"passengerId" gorm:"not null;index"`
	Passenger   *User         `json:"passenger,omitempty"`
	RideID      uint          `json:"rideId" gorm:"not null;index"`
	Ride        *Ride         `json:"ride,omitempty"`
	Seats       int           `json:"seats" gorm:"not null"`
	TotalPrice  float64       `json:"totalPrice" gorm:"not null"`
	PickupNote  string        `json:"pickupNote"`
	Status      BookingStatus `json:"status" gorm:"not null;default:'pending';index"`
}

// IsLive reports whether the booking still holds seats on its ride.
func (b *Booking) IsLive() bool {
	return b.Status == BookingStatusPending || b.Status == BookingStatusConfirmed
}

// CancellableAt reports whether the passenger can still withdraw the
// booking at the given time. Cancellation closes once the ride departs.
// Requires Ride to be preloaded.
func (b *Booking) CancellableAt(now time.Time) bool {
	if !b.IsLive() {
		return false
	}
	return b.Ride != nil && b.Ride.DepartureDate.After(now)
}
