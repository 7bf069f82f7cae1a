package models

import (
	"encoding/json"
	"time"
)

// UserRef is the public view of a user embedded in messages and previews.
type UserRef struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	ProfileImage string     `json:"profileImage,omitempty"`
	LastActive   *time.Time `json:"lastActive,omitempty"`
	IsOnline     bool       `json:"isOnline"`
}

type ReadReceipt struct {
	UserID string    `json:"user"`
	ReadAt time.Time `json:"readAt"`
}

type Message struct {
	ID          string
	SenderID    string
	RecipientID string
	Sender      *UserRef
	Recipient   *UserRef
	Kind        MessageKind
	Body        Body
	Status      MessageStatus
	DeliveredAt *time.Time
	ReadAt      *time.Time
	IsDeleted   bool
	DeletedBy   *string
	DeletedAt   *time.Time
	ReadBy      []ReadReceipt
	CreatedAt   time.Time
}

// Content is the text column: literal text, or the original file name.
func (m *Message) Content() string {
	switch b := m.Body.(type) {
	case TextBody:
		return b.Text
	case FileBody:
		return b.OriginalName
	default:
		return ""
	}
}

func (m *Message) File() (FileBody, bool) {
	fb, ok := m.Body.(FileBody)
	return fb, ok
}

func (m *Message) Summary() string {
	if m.Body == nil {
		return ""
	}
	return m.Body.Summary()
}

type messageJSON struct {
	ID           string        `json:"id"`
	SenderID     string        `json:"senderId"`
	RecipientID  string        `json:"recipientId"`
	Sender       *UserRef      `json:"sender,omitempty"`
	Recipient    *UserRef      `json:"recipient,omitempty"`
	Content      string        `json:"content"`
	MessageType  MessageKind   `json:"messageType"`
	FileURL      string        `json:"fileUrl,omitempty"`
	FileName     string        `json:"fileName,omitempty"`
	FileSize     int64         `json:"fileSize,omitempty"`
	FileMIMEType string        `json:"fileMimeType,omitempty"`
	Status       MessageStatus `json:"status"`
	DeliveredAt  *time.Time    `json:"deliveredAt,omitempty"`
	ReadAt       *time.Time    `json:"readAt,omitempty"`
	IsDeleted    bool          `json:"isDeleted"`
	ReadBy       []ReadReceipt `json:"readBy"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// MarshalJSON flattens the body into the wire shape clients expect.
func (m Message) MarshalJSON() ([]byte, error) {
	out := messageJSON{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Sender:      m.Sender,
		Recipient:   m.Recipient,
		Content:     m.Content(),
		MessageType: m.Kind,
		Status:      m.Status,
		DeliveredAt: m.DeliveredAt,
		ReadAt:      m.ReadAt,
		IsDeleted:   m.IsDeleted,
		ReadBy:      m.ReadBy,
		CreatedAt:   m.CreatedAt,
	}
	if out.ReadBy == nil {
		out.ReadBy = []ReadReceipt{}
	}
	if fb, ok := m.File(); ok {
		out.FileURL = fb.Path
		out.FileName = fb.OriginalName
		out.FileSize = fb.Size
		out.FileMIMEType = fb.MIMEType
	}
	return json.Marshal(out)
}

type ConversationSummary struct {
	CounterpartID string    `json:"-"`
	User          *UserRef  `json:"user"`
	LastMessage   string    `json:"lastMessage"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	UnreadCount   int64     `json:"unreadCount"`
}

type MessagePage struct {
	Messages    []*Message `json:"messages"`
	TotalPages  int        `json:"totalPages"`
	CurrentPage int        `json:"currentPage"`
	Total       int64      `json:"total"`
}

// NewMessagePage fills the pagination metadata for one page of results.
func NewMessagePage(messages []*Message, total int64, page, limit int) *MessagePage {
	if messages == nil {
		messages = []*Message{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &MessagePage{
		Messages:    messages,
		TotalPages:  totalPages,
		CurrentPage: page,
		Total:       total,
	}
}
