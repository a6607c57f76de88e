package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(hub *Hub, userID uint, buffer int) *Client {
	return &Client{
		ID:   userID,
		Send: make(chan []byte, buffer),
		Hub:  hub,
	}
}

func registerClient(t *testing.T, hub *Hub, client *Client) {
	t.Helper()
	hub.register <- client
	// Run processes registrations sequentially, poll until visible
	for i := 0; i < 100; i++ {
		hub.mutex.RLock()
		_, ok := hub.clients[client]
		hub.mutex.RUnlock()
		if ok {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("client was not registered")
}

func TestHubBroadcastToUser(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	alice := newTestClient(hub, 1, 8)
	bob := newTestClient(hub, 2, 8)
	registerClient(t, hub, alice)
	registerClient(t, hub, bob)

	assert.Equal(t, 2, hub.GetConnectedClients())

	hub.BroadcastToUser(1, []byte("hello"))

	select {
	case msg := <-alice.Send:
		assert.Equal(t, "hello", string(msg))
	case <-time.After(time.Second):
		t.Fatal("alice did not receive the message")
	}

	select {
	case msg := <-bob.Send:
		t.Fatalf("bob should not receive alice's message, got %q", msg)
	default:
	}
}

func TestHubBroadcastToAllUserConnections(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	phone := newTestClient(hub, 5, 8)
	laptop := newTestClient(hub, 5, 8)
	registerClient(t, hub, phone)
	registerClient(t, hub, laptop)

	hub.BroadcastToUser(5, []byte("ping"))

	for _, c := range []*Client{phone, laptop} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "ping", string(msg))
		case <-time.After(time.Second):
			t.Fatal("connection did not receive the message")
		}
	}
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := newTestClient(hub, 9, 1)
	registerClient(t, hub, slow)

	// First message fills the buffer, second one drops the client
	hub.BroadcastToUser(9, []byte("one"))
	hub.BroadcastToUser(9, []byte("two"))

	assert.Equal(t, 0, hub.GetConnectedClients())
}

func TestEventEncoding(t *testing.T) {
	event := Event{
		Type:    EventBookingUpdate,
		Version: 1756600000000000000,
		Data:    map[string]interface{}{"id": 42, "status": "confirmed"},
	}

	payload, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, "booking_update", decoded.Type)
	assert.Equal(t, int64(1756600000000000000), decoded.Version)
	assert.NotNil(t, decoded.Data)
}
