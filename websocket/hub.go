package websocket

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userChannelPrefix = "user-"

// Event is the envelope every realtime message travels in.
type Event struct {
	Event   string      `json:"event"`
	Channel string      `json:"channel"`
	Payload interface{} `json:"payload,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn
	mu     sync.Mutex // serializes writes to the connection
}

// WriteEvent sends one event frame to the peer.
func (c *Client) WriteEvent(event Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(event)
}

// Hub maintains the set of active clients and routes events onto per-user
// channels. One connection per user; a newer connection replaces the old.
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[client.UserID]; ok && old != client {
				old.Conn.Close()
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// Publish sends an event to a channel. Only per-user channels exist; a
// channel with no connected client is logged and dropped so callers never
// fail because nobody is listening.
func (h *Hub) Publish(event, channel string, payload interface{}) error {
	userID, err := parseUserChannel(channel)
	if err != nil {
		return err
	}

	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		log.Printf("No websocket client on %s, dropping %s", channel, event)
		return nil
	}

	return client.WriteEvent(Event{
		Event:   event,
		Channel: channel,
		Payload: payload,
	})
}

// ClientCount reports how many users currently hold a connection.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func userChannel(userID primitive.ObjectID) string {
	return userChannelPrefix + userID.Hex()
}

func parseUserChannel(channel string) (primitive.ObjectID, error) {
	if !strings.HasPrefix(channel, userChannelPrefix) {
		return primitive.NilObjectID, fmt.Errorf("unknown channel %q", channel)
	}
	userID, err := primitive.ObjectIDFromHex(strings.TrimPrefix(channel, userChannelPrefix))
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid user channel %q: %w", channel, err)
	}
	return userID, nil
}
