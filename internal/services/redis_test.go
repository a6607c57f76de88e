package services

import (
	"context"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMockRedis(t *testing.T) redismock.ClientMock {
	t.Helper()
	client, mock := redismock.NewClientMock()
	prev := RedisClient
	RedisClient = client
	t.Cleanup(func() { RedisClient = prev })
	return mock
}

func TestAcquireBookingLock(t *testing.T) {
	mock := withMockRedis(t)
	ctx := context.Background()

	mock.ExpectSetNX("lock:booking:42", "1", BookingLockTTL).SetVal(true)
	acquired, err := AcquireBookingLock(ctx, 42)
	require.NoError(t, err)
	assert.True(t, acquired)

	// Second attempt while the lock is held
	mock.ExpectSetNX("lock:booking:42", "1", BookingLockTTL).SetVal(false)
	acquired, err = AcquireBookingLock(ctx, 42)
	require.NoError(t, err)
	assert.False(t, acquired)

	mock.ExpectDel("lock:booking:42").SetVal(1)
	require.NoError(t, ReleaseBookingLock(ctx, 42))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeocodeCache(t *testing.T) {
	mock := withMockRedis(t)
	ctx := context.Background()

	payload := []byte(`{"source":"live","places":[]}`)

	mock.ExpectSet("geocode:autocomplete:таш", payload, GeocodeAutocompleteTTL).SetVal("OK")
	require.NoError(t, SetCachedGeocode(ctx, "autocomplete:таш", payload, GeocodeAutocompleteTTL))

	mock.ExpectGet("geocode:autocomplete:таш").SetVal(string(payload))
	data, err := GetCachedGeocode(ctx, "autocomplete:таш")
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublishUserEvent(t *testing.T) {
	mock := withMockRedis(t)
	ctx := context.Background()

	mock.ExpectPublish("feed:user:7", []byte(`{"type":"ride_update"}`)).SetVal(1)
	require.NoError(t, PublishUserEvent(ctx, 7, []byte(`{"type":"ride_update"}`)))

	assert.NoError(t, mock.ExpectationsWereMet())
}
