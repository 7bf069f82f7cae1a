// Package realtime is the websocket side of the chat: presence via join,
// ephemeral typing and read notices, and pushes from the HTTP path.
package realtime

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"taskchat/internal/chat/models"
	"taskchat/internal/chat/presence"
	"taskchat/internal/common"
	"taskchat/internal/config"
)

// Publisher hands events for users that are not connected here to other
// instances.
type Publisher interface {
	Publish(ctx context.Context, userID string, event models.Event) error
}

type Hub struct {
	registry presence.Registry
	tokens   common.TokenVerifier
	activity common.ActivityRecorder
	relay    Publisher
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub builds the hub. activity and relay may be nil.
func NewHub(
	registry presence.Registry,
	tokens common.TokenVerifier,
	activity common.ActivityRecorder,
	relay Publisher,
	cfg *config.Config,
) *Hub {
	allowed := cfg.Server.AllowOrigin
	return &Hub{
		registry: registry,
		tokens:   tokens,
		activity: activity,
		relay:    relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowed == "" || allowed == "*" || origin == "" || origin == allowed
			},
		},
		clients: make(map[*Client]struct{}),
	}
}

// ServeWS authenticates the bearer token, upgrades the connection and starts
// its pumps.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := common.BearerToken(r)
	if token == "" {
		common.WriteError(w, common.NewUnauthorizedError("Authorization required"))
		return
	}
	claims, err := h.tokens.ValidToken(token)
	if err != nil {
		common.WriteError(w, common.NewUnauthorizedError("Invalid or expired token"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("upgrade failed: %v", err)
		return
	}

	client := newClient(uuid.NewString(), claims.UserID, h, conn)
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, known := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()

	if !known {
		return
	}
	if userID, removed := h.registry.Leave(c); removed {
		log.Printf("user %s disconnected", userID)
		h.broadcastOnlineUsers()
	}
}

// Shutdown closes every connection.
func (h *Hub) Shutdown() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.close()
	}
}

// ConnectionCount is the number of open websocket connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// DeliverLocal pushes event to userID if it is connected to this process.
func (h *Hub) DeliverLocal(userID string, event models.Event) bool {
	conn, ok := h.registry.Resolve(userID)
	if !ok {
		return false
	}
	if err := conn.Send(event); err != nil {
		log.Printf("Failed to push %s to user %s: %v", event.Name, userID, err)
	}
	return true
}

// forward delivers locally or through the relay.
func (h *Hub) forward(userID string, event models.Event) {
	if h.DeliverLocal(userID, event) || h.relay == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if err := h.relay.Publish(ctx, userID, event); err != nil {
		log.Printf("Failed to relay %s to user %s: %v", event.Name, userID, err)
	}
}

// broadcast sends event to every connection except skip.
func (h *Hub) broadcast(event models.Event, skip *Client) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c != skip {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range targets {
		_ = c.Send(event)
	}
}

func (h *Hub) broadcastOnlineUsers() {
	event, err := models.NewEvent(models.EventOnlineUsers, h.registry.OnlineUsers())
	if err != nil {
		return
	}
	h.broadcast(event, nil)
}

func (h *Hub) touch(userID string) {
	if h.activity == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.activity.TouchLastActive(ctx, userID, time.Now()); err != nil {
		log.Printf("Failed to record activity for user %s: %v", userID, err)
	}
}
