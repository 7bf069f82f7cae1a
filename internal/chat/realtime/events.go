package realtime

import (
	"encoding/json"
	"log"

	"taskchat/internal/chat/models"
)

type joinPayload struct {
	UserID string `json:"userId"`
}

type typingIn struct {
	RecipientID string `json:"recipientId"`
	IsTyping    bool   `json:"isTyping"`
}

type typingOut struct {
	SenderID string `json:"senderId"`
	IsTyping bool   `json:"isTyping"`
}

type messageReadNotice struct {
	SenderID    string `json:"senderId"`
	RecipientID string `json:"recipientId"`
	MessageID   string `json:"messageId"`
}

type directPayload struct {
	RecipientID string `json:"recipientId"`
}

func (h *Hub) handle(c *Client, event models.Event) {
	switch event.Name {
	case models.EventJoin:
		h.handleJoin(c, event.Data)
	case models.EventTyping:
		h.handleTyping(c, event.Data)
	case models.EventMessageRead:
		h.handleMessageRead(c, event.Data)
	case models.EventNewMessage:
		h.handleDirect(c, event)
	case models.EventProfileUpdate:
		h.broadcast(models.Event{Name: models.EventProfileUpdated, Data: event.Data}, c)
	default:
		c.sendError("unsupported_event")
	}
}

// handleJoin binds the connection to its user. The payload is either the
// bare user id or {"userId": ...}, and must name the token's user.
func (h *Hub) handleJoin(c *Client, data json.RawMessage) {
	var userID string
	if err := json.Unmarshal(data, &userID); err != nil {
		var p joinPayload
		if err := json.Unmarshal(data, &p); err != nil {
			c.sendError("invalid_join")
			return
		}
		userID = p.UserID
	}
	if userID != c.userID {
		c.sendError("join_user_mismatch")
		return
	}

	h.registry.Join(userID, c)
	log.Printf("user %s joined on connection %s", userID, c.ID())
	h.touch(userID)
	h.broadcastOnlineUsers()
}

func (h *Hub) handleTyping(c *Client, data json.RawMessage) {
	var in typingIn
	if err := json.Unmarshal(data, &in); err != nil || in.RecipientID == "" {
		c.sendError("invalid_typing")
		return
	}

	event, err := models.NewEvent(models.EventTyping, typingOut{SenderID: c.userID, IsTyping: in.IsTyping})
	if err != nil {
		return
	}
	h.forward(in.RecipientID, event)
}

// handleMessageRead tells the original sender that one message was seen.
// Persisted read state goes through the HTTP read endpoint instead.
func (h *Hub) handleMessageRead(c *Client, data json.RawMessage) {
	var notice messageReadNotice
	if err := json.Unmarshal(data, &notice); err != nil || notice.SenderID == "" {
		c.sendError("invalid_message_read")
		return
	}
	notice.RecipientID = c.userID

	event, err := models.NewEvent(models.EventMessageRead, notice)
	if err != nil {
		return
	}
	h.forward(notice.SenderID, event)
}

// handleDirect forwards a client-built newMessage without persisting it.
func (h *Hub) handleDirect(c *Client, event models.Event) {
	var p directPayload
	if err := json.Unmarshal(event.Data, &p); err != nil || p.RecipientID == "" {
		c.sendError("invalid_new_message")
		return
	}
	h.forward(p.RecipientID, event)
}
