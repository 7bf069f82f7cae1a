package common

import (
	"time"
)

type NotificationType string

const (
	MessageType    NotificationType = "message"
	TaskUpdateType NotificationType = "task_update"
	SystemType     NotificationType = "system"
)

type NotificationStatus string

const (
	StatusPending NotificationStatus = "pending"
	StatusSent    NotificationStatus = "sent"
	StatusRead    NotificationStatus = "read"
)

type NotificationMetadata map[string]interface{}

type NotificationEvent struct {
	Type          NotificationType
	UserID        string
	TriggerUserID *string
	Header        string
	Content       string
	Priority      int
	Metadata      NotificationMetadata
}

type NotificationResponse struct {
	ID            string               `json:"id"`
	Type          string               `json:"type"`
	Header        string               `json:"header"`
	Content       string               `json:"content"`
	TriggerUserID *string              `json:"triggerUserId,omitempty"`
	Status        string               `json:"status"`
	Priority      int                  `json:"priority"`
	Metadata      NotificationMetadata `json:"metadata"`
	CreatedAt     time.Time            `json:"createdAt"`
	ReadAt        *time.Time           `json:"readAt,omitempty"`
}
