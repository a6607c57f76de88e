package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/safargo/safar-backend/internal/models"
	"github.com/safargo/safar-backend/internal/services"
	"github.com/safargo/safar-backend/pkg/utils"
	"gorm.io/gorm"
)

type CreateRideInput struct {
	CarID         uint     `json:"carId" binding:"required"`
	FromCity      string   `json:"fromCity" binding:"required"`
	ToCity        string   `json:"toCity" binding:"required"`
	FromLat       *float64 `json:"fromLat"`
	FromLng       *float64 `json:"fromLng"`
	ToLat         *float64 `json:"toLat"`
	ToLng         *float64 `json:"toLng"`
	DepartureDate string   `json:"departureDate" binding:"required"`
	Seats         int      `json:"seats" binding:"required"`
	PricePerSeat  float64  `json:"pricePerSeat" binding:"required"`
	Note          string   `json:"note"`
}

// CreateRide publishes a new ride offer by the authenticated driver.
func CreateRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input CreateRideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		if input.Seats < 1 || input.Seats > 8 {
			c.JSON(400, gin.H{"error": "Seats must be between 1 and 8"})
			return
		}
		if strings.EqualFold(strings.TrimSpace(input.FromCity), strings.TrimSpace(input.ToCity)) {
			c.JSON(400, gin.H{"error": "Origin and destination must be different"})
			return
		}
		if input.PricePerSeat <= 0 {
			c.JSON(400, gin.H{"error": "Price per seat must be positive"})
			return
		}

		departure, err := time.Parse(time.RFC3339, input.DepartureDate)
		if err != nil {
			c.JSON(400, gin.H{"error": "Invalid departure date, expected RFC3339"})
			return
		}
		if departure.Before(time.Now()) {
			c.JSON(400, gin.H{"error": "Departure date must be in the future"})
			return
		}

		var car models.UserCar
		if result := db.Where("id = ? AND user_id = ?", input.CarID, userID).First(&car); result.Error != nil {
			c.JSON(400, gin.H{"error": "Car not found. Add a car before publishing rides"})
			return
		}
		if input.Seats > car.Seats {
			c.JSON(400, gin.H{"error": "Seats offered exceed car capacity"})
			return
		}

		ride := models.Ride{
			DriverID:       userID,
			CarID:          input.CarID,
			FromCity:       input.FromCity,
			ToCity:         input.ToCity,
			FromLat:        input.FromLat,
			FromLng:        input.FromLng,
			ToLat:          input.ToLat,
			ToLng:          input.ToLng,
			DepartureDate:  departure,
			SeatsTotal:     input.Seats,
			SeatsAvailable: input.Seats,
			PricePerSeat:   input.PricePerSeat,
			Note:           input.Note,
			Status:         models.RideStatusActive,
		}
		if ride.HasCoordinates() {
			ride.DistanceKm = utils.HaversineDistance(*input.FromLat, *input.FromLng, *input.ToLat, *input.ToLng)
		}

		if result := db.Create(&ride); result.Error != nil {
			if isForeignKeyViolation(result.Error) {
				c.JSON(401, gin.H{"error": "profile not found, please log in again"})
				return
			}
			c.JSON(500, gin.H{"error": "Failed to create ride"})
			return
		}

		db.Preload("Driver").Preload("Car").First(&ride, ride.ID)

		// Alert passengers with matching open ride requests
		go notifyMatchingRequests(db, &ride)

		c.JSON(201, gin.H{"ride": ride})
	}
}

// SearchRides lists active future rides, optionally filtered by route and date.
func SearchRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Preload("Driver").Preload("Car").
			Where("status = ? AND departure_date > ?", models.RideStatusActive, time.Now())

		if from := c.Query("from"); from != "" {
			query = query.Where("from_city ILIKE ?", "%"+from+"%")
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("to_city ILIKE ?", "%"+to+"%")
		}
		if date := c.Query("date"); date != "" {
			day, err := time.Parse("2006-01-02", date)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid date, expected YYYY-MM-DD"})
				return
			}
			query = query.Where("departure_date >= ? AND departure_date < ?", day, day.AddDate(0, 0, 1))
		}
		if seats := c.Query("seats"); seats != "" {
			query = query.Where("seats_available >= ?", seats)
		}

		var rides []models.Ride
		if result := query.Order("departure_date ASC").Limit(100).Find(&rides); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to search rides"})
			return
		}

		c.JSON(200, gin.H{"rides": rides})
	}
}

// GetRide returns one ride with its driver, car and live bookings.
func GetRide(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ride models.Ride
		if result := db.Preload("Driver").Preload("Car").
			First(&ride, c.Param("id")); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}

		var bookings []models.Booking
		db.Preload("Passenger").
			Where("ride_id = ? AND status IN ?", ride.ID,
				[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
			Find(&bookings)

		c.JSON(200, gin.H{"ride": ride, "bookings": bookings})
	}
}

// GetMyRides lists rides published by the authenticated driver.
func GetMyRides(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var rides []models.Ride
		if result := db.Preload("Car").
			Where("driver_id = ?", userID).
			Order("departure_date DESC").
			Find(&rides); result.Error != nil {
			c.JSON(500, gin.H{"error": "Failed to fetch rides"})
			return
		}

		c.JSON(200, gin.H{"rides": rides})
	}
}

type UpdateRideInput struct {
	DepartureDate *string  `json:"departureDate"`
	Seats         *int     `json:"seats"`
	PricePerSeat  *float64 `json:"pricePerSeat"`
	Note          *string  `json:"note"`
}

// UpdateRide lets the driver adjust departure, seats, price or note while
// the ride is still live.
func UpdateRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var input UpdateRideInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(400, gin.H{"error": err.Error()})
			return
		}

		var ride models.Ride
		if result := db.Where("id = ? AND driver_id = ?", c.Param("id"), userID).
			First(&ride); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if ride.Status == models.RideStatusCancelled || ride.Status == models.RideStatusCompleted {
			c.JSON(400, gin.H{"error": "Cannot edit a finished ride"})
			return
		}

		updates := map[string]interface{}{}
		if input.DepartureDate != nil {
			departure, err := time.Parse(time.RFC3339, *input.DepartureDate)
			if err != nil {
				c.JSON(400, gin.H{"error": "Invalid departure date, expected RFC3339"})
				return
			}
			if departure.Before(time.Now()) {
				c.JSON(400, gin.H{"error": "Departure date must be in the future"})
				return
			}
			updates["departure_date"] = departure
		}
		if input.Seats != nil {
			if *input.Seats < 1 || *input.Seats > 8 {
				c.JSON(400, gin.H{"error": "Seats must be between 1 and 8"})
				return
			}
			booked := ride.SeatsTotal - ride.SeatsAvailable
			if *input.Seats < booked {
				c.JSON(400, gin.H{"error": "Seats cannot drop below the number already booked"})
				return
			}
			updates["seats_total"] = *input.Seats
			updates["seats_available"] = *input.Seats - booked
		}
		if input.PricePerSeat != nil {
			if *input.PricePerSeat <= 0 {
				c.JSON(400, gin.H{"error": "Price per seat must be positive"})
				return
			}
			updates["price_per_seat"] = *input.PricePerSeat
		}
		if input.Note != nil {
			updates["note"] = *input.Note
		}

		if len(updates) > 0 {
			if result := db.Model(&ride).Updates(updates); result.Error != nil {
				c.JSON(500, gin.H{"error": "Failed to update ride"})
				return
			}
		}

		db.Preload("Driver").Preload("Car").First(&ride, ride.ID)

		// A seat-count edit can flip the ride between active and full
		if ride.SeatsAvailable == 0 && ride.Status == models.RideStatusActive {
			db.Model(&ride).Update("status", models.RideStatusFull)
			ride.Status = models.RideStatusFull
		} else if ride.SeatsAvailable > 0 && ride.Status == models.RideStatusFull {
			db.Model(&ride).Update("status", models.RideStatusActive)
			ride.Status = models.RideStatusActive
		}

		notifyRideParticipants(c, db, hub, &ride, services.EventRideUpdate)

		c.JSON(200, gin.H{"ride": ride})
	}
}

// CancelRide cancels a ride and all of its live bookings.
func CancelRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var ride models.Ride
		if result := db.Where("id = ? AND driver_id = ?", c.Param("id"), userID).
			First(&ride); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if !ride.CanTransition(models.RideStatusCancelled) {
			c.JSON(400, gin.H{"error": "Ride cannot be cancelled in its current status"})
			return
		}

		var passengers []models.User
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&ride).Update("status", models.RideStatusCancelled).Error; err != nil {
				return err
			}

			var bookings []models.Booking
			if err := tx.Preload("Passenger").
				Where("ride_id = ? AND status IN ?", ride.ID,
					[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed}).
				Find(&bookings).Error; err != nil {
				return err
			}
			for _, b := range bookings {
				if err := tx.Model(&models.Booking{}).Where("id = ?", b.ID).
					Update("status", models.BookingStatusCancelled).Error; err != nil {
					return err
				}
				if b.Passenger != nil {
					passengers = append(passengers, *b.Passenger)
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to cancel ride"})
			return
		}

		db.First(&ride, ride.ID)
		notifyRideParticipants(c, db, hub, &ride, services.EventRideUpdate)

		for _, p := range passengers {
			sendRideCancelledAlerts(db, &p, &ride)
		}

		c.JSON(200, gin.H{"ride": ride})
	}
}

// CompleteRide marks a ride as completed and closes out its bookings.
func CompleteRide(db *gorm.DB, hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)

		var ride models.Ride
		if result := db.Where("id = ? AND driver_id = ?", c.Param("id"), userID).
			First(&ride); result.Error != nil {
			c.JSON(404, gin.H{"error": "Ride not found"})
			return
		}
		if !ride.CanTransition(models.RideStatusCompleted) {
			c.JSON(400, gin.H{"error": "Ride cannot be completed in its current status"})
			return
		}
		if ride.DepartureDate.After(time.Now()) {
			c.JSON(400, gin.H{"error": "Ride cannot be completed before departure"})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&ride).Update("status", models.RideStatusCompleted).Error; err != nil {
				return err
			}

			var passengerIDs []uint
			if err := tx.Model(&models.Booking{}).
				Where("ride_id = ? AND status = ?", ride.ID, models.BookingStatusConfirmed).
				Pluck("passenger_id", &passengerIDs).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Booking{}).
				Where("ride_id = ? AND status = ?", ride.ID, models.BookingStatusConfirmed).
				Update("status", models.BookingStatusCompleted).Error; err != nil {
				return err
			}
			// Pending requests that were never answered just get cancelled.
			if err := tx.Model(&models.Booking{}).
				Where("ride_id = ? AND status = ?", ride.ID, models.BookingStatusPending).
				Update("status", models.BookingStatusCancelled).Error; err != nil {
				return err
			}

			if len(passengerIDs) > 0 {
				if err := tx.Model(&models.User{}).Where("id IN ?", passengerIDs).
					UpdateColumn("rides_count", gorm.Expr("rides_count + 1")).Error; err != nil {
					return err
				}
			}
			return tx.Model(&models.User{}).Where("id = ?", userID).
				UpdateColumn("rides_count", gorm.Expr("rides_count + 1")).Error
		})
		if err != nil {
			c.JSON(500, gin.H{"error": "Failed to complete ride"})
			return
		}

		db.First(&ride, ride.ID)
		notifyRideParticipants(c, db, hub, &ride, services.EventRideUpdate)

		c.JSON(200, gin.H{"ride": ride})
	}
}

// notifyRideParticipants pushes a versioned ride event to the driver and all
// passengers with live bookings on the ride.
func notifyRideParticipants(c *gin.Context, db *gorm.DB, hub *services.Hub, ride *models.Ride, eventType string) {
	userIDs := []uint{ride.DriverID}

	var passengerIDs []uint
	db.Model(&models.Booking{}).
		Where("ride_id = ? AND status IN ?", ride.ID,
			[]models.BookingStatus{models.BookingStatusPending, models.BookingStatusConfirmed,
				models.BookingStatusCancelled, models.BookingStatusCompleted}).
		Distinct().
		Pluck("passenger_id", &passengerIDs)
	userIDs = append(userIDs, passengerIDs...)

	services.NotifyUsers(c.Request.Context(), hub, userIDs, eventType,
		ride.UpdatedAt.UnixNano(), ride)
}

// notifyMatchingRequests pushes new-ride alerts to passengers whose open ride
// requests match the published route and day.
func notifyMatchingRequests(db *gorm.DB, ride *models.Ride) {
	day := ride.DepartureDate.Truncate(24 * time.Hour)

	var requests []models.RideRequest
	if err := db.Where(
		"status = ? AND from_city = ? AND to_city = ? AND preferred_date >= ? AND preferred_date < ?",
		models.RideRequestStatusOpen, ride.FromCity, ride.ToCity, day, day.AddDate(0, 0, 1),
	).Find(&requests).Error; err != nil {
		log.Printf("Failed to match ride requests for ride %d: %v", ride.ID, err)
		return
	}

	for _, req := range requests {
		if req.MaxPrice != nil && ride.PricePerSeat > *req.MaxPrice {
			continue
		}
		var prefs models.NotificationPreference
		if err := db.Where("user_id = ?", req.PassengerID).First(&prefs).Error; err == nil {
			if !prefs.PushEnabled || !prefs.NewRidesPush {
				continue
			}
		}
		var passenger models.User
		if err := db.First(&passenger, req.PassengerID).Error; err != nil {
			continue
		}
		payload := services.NotificationPayload{
			Title: "Новая поездка по вашему маршруту",
			Body:  ride.FromCity + " — " + ride.ToCity,
			Data:  map[string]interface{}{"type": "new_ride", "rideId": ride.ID},
		}
		if err := services.SendNotificationToToken(context.Background(), passenger.FCMToken, payload); err != nil {
			log.Printf("Failed to push new-ride alert to user %d: %v", passenger.ID, err)
		}
	}
}

func sendRideCancelledAlerts(db *gorm.DB, passenger *models.User, ride *models.Ride) {
	var prefs models.NotificationPreference
	hasPrefs := db.Where("user_id = ?", passenger.ID).First(&prefs).Error == nil

	if !hasPrefs || (prefs.PushEnabled && prefs.RideStatusAlerts) {
		payload := services.NotificationPayload{
			Title: "Поездка отменена",
			Body:  ride.FromCity + " — " + ride.ToCity,
			Data:  map[string]interface{}{"type": "ride_cancelled", "rideId": ride.ID},
		}
		if err := services.SendNotificationToToken(context.Background(), passenger.FCMToken, payload); err != nil {
			log.Printf("Failed to push cancellation alert to user %d: %v", passenger.ID, err)
		}
	}
	if (!hasPrefs || prefs.SMSEnabled) && passenger.PhoneNumber != "" {
		if err := utils.SendRideCancelledSMS(passenger.PhoneNumber, ride.FromCity, ride.ToCity); err != nil {
			log.Printf("Failed to send cancellation SMS to user %d: %v", passenger.ID, err)
		}
	}
}
