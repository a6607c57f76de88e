package models

import (
	"gorm.io/gorm"
)

// SavedPassenger is a driver's nickname/notes on a passenger they have
// carried before. Unique per (driver, passenger).
type SavedPassenger struct {
	gorm.Model
	DriverID    uint   `json:"driverId" gorm:"not null;index:idx_saved_pair,unique"`
	Driver      *User  `json:"-" gorm:"foreignKey:DriverID"`
	PassengerID uint   `json:"passengerId" gorm:"not null;index:idx_saved_pair,unique"`
	Passenger   *User  `json:"passenger,omitempty" gorm:"foreignKey:PassengerID"`
	Nickname    string `json:"nickname"`
	Notes       string `json:"notes"`
}
