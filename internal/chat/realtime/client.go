package realtime

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"taskchat/internal/chat/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	sendBufferSize = 256
)

var (
	ErrSendBufferFull = errors.New("send buffer full")
	ErrClientClosed   = errors.New("client closed")
)

// Client is one websocket connection. It implements presence.Conn.
type Client struct {
	id     string
	userID string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(id, userID string, hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:     id,
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}
}

func (c *Client) ID() string {
	return c.id
}

// UserID is the authenticated user behind the connection.
func (c *Client) UserID() string {
	return c.userID
}

// Send queues event for the write pump. It never blocks: a full buffer drops
// the event.
func (c *Client) Send(event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	select {
	case <-c.done:
		return ErrClientClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	case <-c.done:
		return ErrClientClosed
	default:
		log.Printf("Dropping %s for user %s: send buffer full", event.Name, c.userID)
		return ErrSendBufferFull
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) readPump() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered in read pump for user %s: %v", c.userID, r)
		}
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { return c.conn.SetReadDeadline(time.Now().Add(pongWait)) })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error for user %s: %v", c.userID, err)
			}
			return
		}

		var event models.Event
		if err := json.Unmarshal(raw, &event); err != nil || event.Name == "" {
			c.sendError("invalid_event")
			continue
		}
		c.hub.handle(c, event)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered in write pump for user %s: %v", c.userID, r)
		}
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Client) sendError(reason string) {
	event, err := models.NewEvent(models.EventError, map[string]string{"message": reason})
	if err != nil {
		return
	}
	_ = c.Send(event)
}
