package database

import (
	"github.com/safargo/safar-backend/internal/models"
	"gorm.io/gorm"
)

func RunMigrations(db *gorm.DB) error {
	// Create tables if they don't exist
	err := db.AutoMigrate(
		&models.User{},
		&models.UserCar{},
		&models.Ride{},
		&models.Booking{},
		&models.RideRequest{},
		&models.Chat{},
		&models.Message{},
		&models.Review{},
		&models.SavedPassenger{},
		&models.OTP{},
		&models.NotificationPreference{},
	)
	if err != nil {
		return err
	}

	// Update users table for installs that predate the rating columns
	if db.Migrator().HasTable(&models.User{}) {
		columns := []string{
			"ADD COLUMN IF NOT EXISTS rating numeric DEFAULT 0",
			"ADD COLUMN IF NOT EXISTS rating_count integer DEFAULT 0",
			"ADD COLUMN IF NOT EXISTS rides_count integer DEFAULT 0",
			"ADD COLUMN IF NOT EXISTS avatar_url text DEFAULT ''",
			"ADD COLUMN IF NOT EXISTS fcm_token text DEFAULT ''",
		}

		for _, column := range columns {
			if err := db.Exec("ALTER TABLE users " + column).Error; err != nil {
				return err
			}
		}
	}

	// Status check constraints
	db.Exec(`ALTER TABLE rides DROP CONSTRAINT IF EXISTS rides_status_check`)
	db.Exec(`ALTER TABLE rides ADD CONSTRAINT rides_status_check CHECK (status IN ('active', 'full', 'cancelled', 'completed'))`)
	db.Exec(`ALTER TABLE bookings DROP CONSTRAINT IF EXISTS bookings_status_check`)
	db.Exec(`ALTER TABLE bookings ADD CONSTRAINT bookings_status_check CHECK (status IN ('pending', 'confirmed', 'cancelled', 'completed'))`)

	// Guard the review invariants at the schema level as well
	db.Exec(`ALTER TABLE reviews DROP CONSTRAINT IF EXISTS reviews_rating_check`)
	db.Exec(`ALTER TABLE reviews ADD CONSTRAINT reviews_rating_check CHECK (rating BETWEEN 1 AND 5)`)

	return nil
}
