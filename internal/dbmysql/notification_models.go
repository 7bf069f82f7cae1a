package dbmysql

import (
	"time"

	"taskchat/internal/common"
)

type Notification struct {
	ID            string                      `gorm:"primaryKey;size:36"`
	UserID        string                      `gorm:"not null;index;size:36"`
	Header        string                      `gorm:"not null;size:255"`
	Content       string                      `gorm:"not null;type:text"`
	Type          string                      `gorm:"not null;size:50"`
	Status        string                      `gorm:"default:'pending';size:50"`
	Priority      int                         `gorm:"default:1"`
	TriggerUserID *string                     `gorm:"size:36"`
	Metadata      common.NotificationMetadata `gorm:"serializer:json;type:text"`
	ReadAt        *time.Time
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
