package models

import (
	"time"

	"gorm.io/gorm"
)

type RideStatus string

const (
	RideStatusActive    RideStatus = "active"
	RideStatusFull      RideStatus = "full"
	RideStatusCancelled RideStatus = "cancelled"
	RideStatusCompleted RideStatus = "completed"
)

type Ride struct {
	gorm.Model
	DriverID       uint       `json:"driverId" gorm:"not null;index"`
	Driver         *User      `json:"driver,omitempty"`
	CarID          uint       `json:"carId" gorm:"not null"`
	Car            *UserCar   `json:"car,omitempty"`
	FromCity       string     `json:"fromCity" gorm:"not null"`
	ToCity         string     `json:"toCity" gorm:"not null"`
	FromLat        *float64   `json:"fromLat"`
	FromLng        *float64   `json:"fromLng"`
	ToLat          *float64   `json:"toLat"`
	ToLng          *float64   `json:"toLng"`
	DepartureDate  time.Time  `json:"departureDate" gorm:"not null;index"`
	SeatsTotal     int        `json:"seatsTotal" gorm:"not null"`
	SeatsAvailable int        `json:"seatsAvailable" gorm:"not null"`
	PricePerSeat   float64    `json:"pricePerSeat" gorm:"not null"`
	Note           string     `json:"note"`
	DistanceKm     float64    `json:"distanceKm"`
	Status         RideStatus `json:"status" gorm:"not null;default:'active';index"`
}

// rideTransitions lists the allowed status transitions. Anything
// not in this map is rejected.
var rideTransitions = map[RideStatus][]RideStatus{
	RideStatusActive:    {RideStatusFull, RideStatusCancelled, RideStatusCompleted},
	RideStatusFull:      {RideStatusActive, RideStatusCancelled, RideStatusCompleted},
	RideStatusCancelled: {},
	RideStatusCompleted: {},
}

// CanTransition reports whether the ride status may change to target.
func (r *Ride) CanTransition(target RideStatus) bool {
	for _, s := range rideTransitions[r.Status] {
		if s == target {
			return true
		}
	}
	return false
}

// HasCoordinates reports whether both route endpoints carry coordinates.
func (r *Ride) HasCoordinates() bool {
	return r.FromLat != nil && r.FromLng != nil && r.ToLat != nil && r.ToLng != nil
}
