package models

import (
	"encoding/json"
	"time"
)

// Event names on the real-time channel.
const (
	EventJoin           = "join"
	EventNewMessage     = "newMessage"
	EventTyping         = "typing"
	EventMessageRead    = "messageRead"
	EventMessagesRead   = "messagesRead"
	EventProfileUpdate  = "profileUpdate"
	EventProfileUpdated = "profileUpdated"
	EventOnlineUsers    = "onlineUsers"
	EventError          = "error"
)

// Event is the {event, data} envelope used in both directions.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

func NewEvent(name string, data interface{}) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, err
	}
	return Event{Name: name, Data: raw}, nil
}

type ConversationUpdate struct {
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

// NewMessagePayload is pushed to the recipient after a successful send.
type NewMessagePayload struct {
	Message            *Message           `json:"message"`
	Sender             *UserRef           `json:"sender"`
	ConversationUpdate ConversationUpdate `json:"conversationUpdate"`
}

// MessagesReadPayload tells a sender that the reader caught up on the thread.
type MessagesReadPayload struct {
	ReaderID      string    `json:"readerId"`
	ModifiedCount int64     `json:"modifiedCount"`
	ReadAt        time.Time `json:"readAt"`
}
