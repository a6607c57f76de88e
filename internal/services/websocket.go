package services

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for development
	},
}

// Client represents a WebSocket client
type Client struct {
	ID   uint
	Conn *websocket.Conn
	Send chan []byte
	Hub  *Hub
}

// Hub maintains the set of active clients and routes events to them
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			log.Printf("Client %d connected", client.ID)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mutex.Unlock()
			log.Printf("Client %d disconnected", client.ID)
		}
	}
}

// BroadcastToUser sends a message to every connection of a specific user
func (h *Hub) BroadcastToUser(userID uint, message []byte) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for client := range h.clients {
		if client.ID == userID {
			select {
			case client.Send <- message:
			default:
				// Slow consumer, drop the connection
				close(client.Send)
				delete(h.clients, client)
			}
		}
	}
}

// GetConnectedClients returns the number of connected clients
func (h *Hub) GetConnectedClients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Event is a row-change notification pushed to subscribed clients.
// Version is monotonic per row (UpdatedAt in unix nanoseconds), so a
// client can apply the payload directly and discard stale events
// instead of refetching the whole table.
type Event struct {
	Type    string      `json:"type"`
	Version int64       `json:"version"`
	Data    interface{} `json:"data"`
}

// Event types pushed over the feed.
const (
	EventBookingUpdate     = "booking_update"
	EventRideUpdate        = "ride_update"
	EventChatMessage       = "chat_message"
	EventRideRequestUpdate = "ride_request_update"
)

// NotifyUsers delivers a change event to the given users. Events go
// through the redis feed so every API instance can fan out to its own
// sockets; if redis is unavailable the local hub is used directly.
func NotifyUsers(ctx context.Context, hub *Hub, userIDs []uint, eventType string, version int64, data interface{}) {
	event := Event{
		Type:    eventType,
		Version: version,
		Data:    data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling %s event: %v", eventType, err)
		return
	}

	for _, userID := range userIDs {
		if err := PublishUserEvent(ctx, userID, payload); err != nil {
			log.Printf("Feed publish failed for user %d, delivering locally: %v", userID, err)
			hub.BroadcastToUser(userID, payload)
		}
	}
}

// StartFeedRelay subscribes to the redis user-feed channels and relays
// events to locally connected sockets. Runs until the context is done.
func StartFeedRelay(ctx context.Context, hub *Hub) {
	pubsub := RedisClient.PSubscribe(ctx, userFeedPattern)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		idPart := strings.TrimPrefix(msg.Channel, "feed:user:")
		userID, err := strconv.ParseUint(idPart, 10, 32)
		if err != nil {
			log.Printf("Malformed feed channel %q", msg.Channel)
			continue
		}
		hub.BroadcastToUser(uint(userID), []byte(msg.Payload))
	}
}

// HandleWebSocket handles WebSocket connections
func HandleWebSocket(hub *Hub, w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:   userID,
		Conn: conn,
		Send: make(chan []byte, 256),
		Hub:  hub,
	}

	client.Hub.register <- client

	// Start goroutines for reading and writing
	go client.writePump()
	go client.readPump()
}

// readPump drains the websocket connection. Clients do not send
// anything meaningful upstream; mutations go through the HTTP API.
// Reading is still required to process control frames and detect close.
func (c *Client) readPump() {
	defer func() {
		c.Hub.unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("WebSocket write error: %v", err)
			return
		}
	}
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
