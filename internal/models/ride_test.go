package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRideCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    RideStatus
		to      RideStatus
		allowed bool
	}{
		{"active to full", RideStatusActive, RideStatusFull, true},
		{"active to cancelled", RideStatusActive, RideStatusCancelled, true},
		{"active to completed", RideStatusActive, RideStatusCompleted, true},
		{"full back to active", RideStatusFull, RideStatusActive, true},
		{"full to completed", RideStatusFull, RideStatusCompleted, true},
		{"cancelled is terminal", RideStatusCancelled, RideStatusActive, false},
		{"completed is terminal", RideStatusCompleted, RideStatusActive, false},
		{"completed cannot cancel", RideStatusCompleted, RideStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ride := Ride{Status: tt.from}
			assert.Equal(t, tt.allowed, ride.CanTransition(tt.to))
		})
	}
}

func TestRideHasCoordinates(t *testing.T) {
	lat, lng := 41.2995, 69.2401
	toLat, toLng := 39.7747, 64.4286

	full := Ride{FromLat: &lat, FromLng: &lng, ToLat: &toLat, ToLng: &toLng}
	assert.True(t, full.HasCoordinates())

	partial := Ride{FromLat: &lat, FromLng: &lng}
	assert.False(t, partial.HasCoordinates())

	empty := Ride{}
	assert.False(t, empty.HasCoordinates())
}

func TestBookingIsLive(t *testing.T) {
	assert.True(t, (&Booking{Status: BookingStatusPending}).IsLive())
	assert.True(t, (&Booking{Status: BookingStatusConfirmed}).IsLive())
	assert.False(t, (&Booking{Status: BookingStatusCancelled}).IsLive())
	assert.False(t, (&Booking{Status: BookingStatusCompleted}).IsLive())
}

func TestBookingCancellableAt(t *testing.T) {
	now := time.Now()
	future := &Ride{DepartureDate: now.Add(2 * time.Hour)}
	departed := &Ride{DepartureDate: now.Add(-2 * time.Hour)}

	assert.True(t, (&Booking{Status: BookingStatusPending, Ride: future}).CancellableAt(now))
	assert.True(t, (&Booking{Status: BookingStatusConfirmed, Ride: future}).CancellableAt(now))

	// No withdrawal once the ride has left
	assert.False(t, (&Booking{Status: BookingStatusConfirmed, Ride: departed}).CancellableAt(now))
	assert.False(t, (&Booking{Status: BookingStatusPending, Ride: departed}).CancellableAt(now))

	assert.False(t, (&Booking{Status: BookingStatusCancelled, Ride: future}).CancellableAt(now))
	assert.False(t, (&Booking{Status: BookingStatusConfirmed}).CancellableAt(now))
}
