package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"github.com/safargo/safar-backend/internal/services"
	"github.com/safargo/safar-backend/pkg/utils"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	RideID     uint   `json:"rideId" binding:"required"`
	Seats      int    `json:"seats" binding:"required"`
	PickupNote string `json:"pickupNote"`
}

// CreateBooking requests seats on a ride. The booking starts pending and
// waits for the driver's decision.
func CreateBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input CreateBookingInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}
		if input.Seats < 1 {
			c.JSON(400, gin.H{"error": "Seats must be at least 1"})
			return
		}

		var ride models.Ride
		if result := db.First(&ride, input.RideID); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if ride.DriverID == userID {
			c.JSON(400, gin.H{"error": "You cannot book your own ride"})
			return
		}
		if ride.Status != models.RideStatusActive {
			c.JSON(400, gin.H{"error": "Ride is not accepting bookings"})
			return
		}
		if input.Seats > ride.SeatsAvailable {
			c.JSON(400, gin.H{"error": "Not enough seats available"})
			return
		}

		// One live booking per passenger per ride
		var existing models.Booking
		if result := db.Where("ride_id = ? AND passenger_id = ? AND status IN ?",
			ride.ID, userID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
			First(&existing); result.Error == nil {
			c.JSON(409, gin.H{"error": "You already have a booking on this ride", "booking": existing})
			return
		}

		booking := models.Booking{
			PassengerID: userID,
			RideID:      ride.ID,
			Seats:       input.Seats,
			TotalPrice:  float64(input.Seats) * ride.PricePerSeat,
			PickupNote:  input.PickupNote,
			Status:      models.BookingStatusPending,
		}

		if result := db.Create(&booking); result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				c.JSON(401, gin.H{"error": "profile not found, please log in again"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to create booking"})
			return
		}

		db.Preload("Passenger").Preload("Ride").Preload("Ride.Driver").First(&booking, booking.ID)

		services.NotifyUsers(c.Request.Context(), hub, []uint{ride.DriverID},
			services.EventBookingUpdate, booking.UpdatedAt.UnixNano(), booking)

		passengerName := ""
		if booking.Passenger != nil {
			passengerName = booking.Passenger.Username
		}
		go pushBookingAlert(db, ride.DriverID, "Новый запрос на бронирование",
			passengerName, "booking_request", booking.ID)

		c.JSON(201, gin.H{"booking": booking})
	}
}

// GetMyBookings lists the bookings the authenticated user made as passenger.
func GetMyBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		query := db.Preload("Ride").Preload("Ride.Driver").Preload("Ride.Car").
			Where("passenger_id = ?", userID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}

		var bookings []models.Booking
		if result := query.Order("created_at DESC").Find(&bookings); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}

// GetRideBookings lists the bookings on one of the driver's rides.
func GetRideBookings(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var ride models.Ride
		if result := db.Where("id = ? AND driver_id = ?", c.Param("id"), userID).
			First(&ride); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		var bookings []models.Booking
		if result := db.Preload("Passenger").
			Where("ride_id = ?", ride.ID).
			Order("created_at ASC").
			Find(&bookings); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch bookings"})
			return
		}

		c.JSON(200, gin.H{"bookings": bookings})
	}
}

// AcceptBooking confirms a pending booking and decrements available seats.
// A redis lock plus a status re-check inside the transaction makes the
// accept/reject decision exclusive even across instances.
func AcceptBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return decideBooking(db, hub, models.BookingStatusConfirmed)
}

// RejectBooking declines a pending booking.
func RejectBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return decideBooking(db, hub, models.BookingStatusCancelled)
}

func decideBooking(db *gorm.DB, hub *services.Hub, decision models.BookingStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var booking models.Booking
		if result := db.Preload("Ride").Preload("Passenger").
			First(&booking, c.Param("id")); result.Error != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}
		if booking.Ride == nil || booking.Ride.DriverID != userID {
			c.JSON(403, gin.H{"error": "Only the ride driver can decide on this booking"})
			return
		}

		acquired, err := services.AcquireBookingLock(c.Request.Context(), booking.ID)
		if err != nil {
			log.Printf("Booking lock error for booking %d: %v", booking.ID, err)
		} else if !acquired {
			c.JSON(409, gin.H{"error": "Booking decision already in progress"})
			return
		}
		if acquired {
			defer func() {
				if err := services.ReleaseBookingLock(context.Background(), booking.ID); err != nil {
					log.Printf("Failed to release booking lock %d: %v", booking.ID, err)
				}
			}()
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			// Re-read under the transaction so a concurrent decision loses
			var fresh models.Booking
			if err := tx.First(&fresh, booking.ID).Error; err != nil {
				return err
			}
			if fresh.Status != models.BookingStatusPending {
				return gorm.ErrInvalidData
			}

			if decision == models.BookingStatusConfirmed {
				result := tx.Model(&models.Ride{}).
					Where("id = ? AND seats_available >= ?", booking.RideID, booking.Seats).
					UpdateColumn("seats_available", gorm.Expr("seats_available - ?", booking.Seats))
				if result.Error != nil {
					return result.Error
				}
				if result.RowsAffected == 0 {
					return gorm.ErrInvalidData
				}

				var ride models.Ride
				if err := tx.First(&ride, booking.RideID).Error; err != nil {
					return err
				}
				if ride.SeatsAvailable == 0 && ride.CanTransition(models.RideStatusFull) {
					if err := tx.Model(&ride).Update("status", models.RideStatusFull).Error; err != nil {
						return err
					}
				}
			}

			return tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
				Update("status", decision).Error
		})
		if err != nil {
			if err == gorm.ErrInvalidData {
				c.JSON(409, gin.H{"error": "Booking was already decided or seats are no longer available"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to update booking"})
			return
		}

		db.Preload("Passenger").Preload("Ride").Preload("Ride.Driver").First(&booking, booking.ID)

		services.NotifyUsers(c.Request.Context(), hub,
			[]uint{booking.PassengerID, booking.Ride.DriverID},
			services.EventBookingUpdate, booking.UpdatedAt.UnixNano(), booking)

		if decision == models.BookingStatusConfirmed {
			go notifyBookingConfirmed(db, &booking)
		} else {
			go pushBookingAlert(db, booking.PassengerID, "Бронирование отклонено",
				booking.Ride.FromCity+" — "+booking.Ride.ToCity, "booking_rejected", booking.ID)
		}

		c.JSON(200, gin.H{"booking": booking})
	}
}

// CancelBooking lets the passenger withdraw a pending or confirmed booking.
// Confirmed seats are returned to the ride.
func CancelBooking(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var booking models.Booking
		if result := db.Preload("Ride").Preload("Passenger").
			Where("id = ? AND passenger_id = ?", c.Param("id"), userID).
			First(&booking); result.Error != nil {
			c.JSON(404, gin.H{"error": "Booking not found"})
			return
		}
		if !booking.IsLive() {
			c.JSON(400, gin.H{"error": "Booking is already finished"})
			return
		}
		if !booking.CancellableAt(time.Now()) {
			c.JSON(400, gin.H{"error": "Cannot cancel a booking after the ride has departed"})
			return
		}

		wasConfirmed := booking.Status == models.BookingStatusConfirmed

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Booking{}).Where("id = ?", booking.ID).
				Update("status", models.BookingStatusCancelled).Error; err != nil {
				return err
			}
			if wasConfirmed {
				if err := tx.Model(&models.Ride{}).Where("id = ?", booking.RideID).
					UpdateColumn("seats_available", gorm.Expr("seats_available + ?", booking.Seats)).Error; err != nil {
					return err
				}
				// A full ride with a freed seat goes back to accepting bookings
				if err := tx.Model(&models.Ride{}).
					Where("id = ? AND status = ?", booking.RideID, models.RideStatusFull).
					Update("status", models.RideStatusActive).Error; err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel booking"})
			return
		}

		db.Preload("Passenger").Preload("Ride").Preload("Ride.Driver").First(&booking, booking.ID)

		services.NotifyUsers(c.Request.Context(), hub,
			[]uint{booking.PassengerID, booking.Ride.DriverID},
			services.EventBookingUpdate, booking.UpdatedAt.UnixNano(), booking)

		go notifyBookingCancelledByPassenger(db, &booking)

		c.JSON(200, gin.H{"booking": booking})
	}
}

func notifyBookingConfirmed(db *gorm.DB, booking *models.Booking) {
	var passenger models.User
	if err := db.First(&passenger, booking.PassengerID).Error; err != nil {
		return
	}

	var prefs models.NotificationPreference
	hasPrefs := db.Where("user_id = ?", passenger.ID).First(&prefs).Error == nil

	if !hasPrefs || (prefs.PushEnabled && prefs.BookingAlerts) {
		payload := services.NotificationPayload{
			Title: "Бронирование подтверждено",
			Body:  booking.Ride.FromCity + " — " + booking.Ride.ToCity,
			Data:  map[string]interface{}{"type": "booking_confirmed", "bookingId": booking.ID},
		}
		if err := services.SendNotificationToToken(context.Background(), passenger.FCMToken, payload); err != nil {
			log.Printf("Failed to push booking confirmation to user %d: %v", passenger.ID, err)
		}
	}
	if (!hasPrefs || prefs.SMSEnabled) && passenger.PhoneNumber != "" {
		driverName := ""
		if booking.Ride.Driver != nil {
			driverName = booking.Ride.Driver.Username
		}
		var car models.UserCar
		plate := ""
		if err := db.First(&car, booking.Ride.CarID).Error; err == nil {
			plate = car.Plate
		}
		if err := utils.SendBookingConfirmedSMS(passenger.PhoneNumber, driverName, plate); err != nil {
			log.Printf("Failed to send booking SMS to user %d: %v", passenger.ID, err)
		}
	}
}

func notifyBookingCancelledByPassenger(db *gorm.DB, booking *models.Booking) {
	if booking.Ride == nil || booking.Ride.Driver == nil {
		return
	}
	driver := booking.Ride.Driver

	var prefs models.NotificationPreference
	hasPrefs := db.Where("user_id = ?", driver.ID).First(&prefs).Error == nil

	if !hasPrefs || (prefs.PushEnabled && prefs.BookingAlerts) {
		passengerName := ""
		if booking.Passenger != nil {
			passengerName = booking.Passenger.Username
		}
		payload := services.NotificationPayload{
			Title: "Пассажир отменил бронирование",
			Body:  passengerName,
			Data:  map[string]interface{}{"type": "booking_cancelled", "bookingId": booking.ID},
		}
		if err := services.SendNotificationToToken(context.Background(), driver.FCMToken, payload); err != nil {
			log.Printf("Failed to push cancellation to driver %d: %v", driver.ID, err)
		}
	}
	if !hasPrefs || prefs.EmailEnabled {
		if err := utils.SendBookingCancelledEmail(driver.Email,
			booking.Ride.FromCity, booking.Ride.ToCity); err != nil {
			log.Printf("Failed to send cancellation email to driver %d: %v", driver.ID, err)
		}
	}
}

func pushBookingAlert(db *gorm.DB, userID uint, title, body, alertType string, bookingID uint) {
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return
	}
	var prefs models.NotificationPreference
	if err := db.Where("user_id = ?", userID).First(&prefs).Error; err == nil {
		if !prefs.PushEnabled || !prefs.BookingAlerts {
			return
		}
	}
	payload := services.NotificationPayload{
		Title: title,
		Body:  body,
		Data:  map[string]interface{}{"type": alertType, "bookingId": bookingID},
	}
	if err := services.SendNotificationToToken(context.Background(), user.FCMToken, payload); err != nil {
		log.Printf("Failed to push booking alert to user %d: %v", userID, err)
	}
}
