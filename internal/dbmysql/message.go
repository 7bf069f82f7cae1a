package dbmysql

import (
	"time"
)

// Message is one direct message row. File columns are set only for image and
// file messages; RecipientID is nullable to leave room for group threads.
type Message struct {
	ID           string     `gorm:"primaryKey;size:36"`
	SenderID     string     `gorm:"not null;size:36;index:idx_messages_pair,priority:1"`
	RecipientID  *string    `gorm:"size:36;index:idx_messages_pair,priority:2"`
	Content      string     `gorm:"type:text"`
	MessageType  string     `gorm:"not null;size:20;default:'text'"`
	FileURL      *string    `gorm:"size:512;index"`
	FileName     *string    `gorm:"size:255"`
	FileSize     *int64
	FileMIMEType *string    `gorm:"column:file_mime_type;size:127"`
	Status       string     `gorm:"not null;size:20;default:'sent';index"`
	DeliveredAt  *time.Time
	ReadAt       *time.Time
	IsDeleted    bool       `gorm:"not null;default:false;index"`
	DeletedBy    *string    `gorm:"size:36"`
	DeletedAt    *time.Time
	CreatedAt    time.Time  `gorm:"index"`
	UpdatedAt    time.Time

	ReadBy []MessageRead `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}
