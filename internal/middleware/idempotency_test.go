package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupIdempotencyRouter(t *testing.T) (*gin.Engine, redismock.ClientMock, *int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	client, mock := redismock.NewClientMock()

	calls := 0
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("userId", uint(1)) })
	r.Use(IdempotencyMiddleware(client))
	r.POST("/bookings", func(c *gin.Context) {
		calls++
		c.JSON(201, gin.H{"id": 42})
	})
	return r, mock, &calls
}

func TestIdempotencyReplaysCachedResponse(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t)

	cached, err := json.Marshal(cachedResponse{
		StatusCode: 201,
		Body:       json.RawMessage(`{"id":42}`),
	})
	require.NoError(t, err)

	mock.ExpectGet("idempotency:1:key-123").SetVal(string(cached))

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "key-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	assert.JSONEq(t, `{"id":42}`, w.Body.String())
	assert.Equal(t, 0, *calls, "replayed request must not hit the handler")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencyCachesFirstResponse(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t)

	mock.ExpectGet("idempotency:1:key-456").RedisNil()
	expected, err := json.Marshal(cachedResponse{
		StatusCode: 201,
		Body:       json.RawMessage(`{"id":42}`),
	})
	require.NoError(t, err)
	mock.ExpectSet("idempotency:1:key-456", expected, 24*time.Hour).SetVal("OK")

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
	req.Header.Set("Idempotency-Key", "key-456")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, 1, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencySkipsWithoutKey(t *testing.T) {
	r, mock, calls := setupIdempotencyRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	assert.Equal(t, 1, *calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIdempotencySkipsReadRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client, mock := redismock.NewClientMock()

	r := gin.New()
	r.Use(IdempotencyMiddleware(client))
	r.GET("/bookings", func(c *gin.Context) { c.JSON(200, gin.H{"bookings": []int{}}) })

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set("Idempotency-Key", "key-789")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
