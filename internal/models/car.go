package models

import (
	"gorm.io/gorm"
)

// UserCar is a vehicle registered by a user. Owning at least one car is
// what grants the driver capability: publishing rides requires a car.
type UserCar struct {
	gorm.Model
	UserID   uint   `json:"userId" gorm:"not null;index"`
	User     *User  `json:"-"`
	Make     string `json:"make" gorm:"not null"`
	CarModel string `json:"model" gorm:"column:model;not null"`
	Color    string `json:"color"`
	Plate    string `json:"plate" gorm:"not null"`
	Seats    int    `json:"seats" gorm:"not null;default:4"`
}

// TableName specifies the table name
func (UserCar) TableName() string {
	return "user_cars"
}
