package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// BookingLockTTL bounds how long a driver decision can hold a booking.
const BookingLockTTL = 10 * time.Second

// AcquireBookingLock takes a short exclusive lock on a booking so that
// concurrent accept/reject decisions cannot interleave. Returns true if
// the lock was acquired, false if another decision is in flight.
func AcquireBookingLock(ctx context.Context, bookingID uint) (bool, error) {
	key := fmt.Sprintf("lock:booking:%d", bookingID)
	return RedisClient.SetNX(ctx, key, "1", BookingLockTTL).Result()
}

// ReleaseBookingLock releases the lock for the given booking.
func ReleaseBookingLock(ctx context.Context, bookingID uint) error {
	key := fmt.Sprintf("lock:booking:%d", bookingID)
	return RedisClient.Del(ctx, key).Err()
}

// Geocode cache TTLs. Autocomplete results churn with provider data,
// details and reverse lookups are effectively static.
const (
	GeocodeAutocompleteTTL = 24 * time.Hour
	GeocodeDetailsTTL      = 7 * 24 * time.Hour
)

// GetCachedGeocode returns a cached geocoding response body, or redis.Nil.
func GetCachedGeocode(ctx context.Context, key string) ([]byte, error) {
	return RedisClient.Get(ctx, "geocode:"+key).Bytes()
}

// SetCachedGeocode stores a geocoding response body.
func SetCachedGeocode(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RedisClient.Set(ctx, "geocode:"+key, data, ttl).Err()
}

// userFeedChannel is the pub/sub channel pattern carrying row-change
// events for a user. Every API instance subscribes and fans out to its
// own sockets, so events reach users regardless of which instance holds
// their connection.
const userFeedPattern = "feed:user:*"

func userFeedChannel(userID uint) string {
	return fmt.Sprintf("feed:user:%d", userID)
}

// PublishUserEvent publishes a serialized change event on a user's feed
// channel.
func PublishUserEvent(ctx context.Context, userID uint, data []byte) error {
	return RedisClient.Publish(ctx, userFeedChannel(userID), data).Err()
}
