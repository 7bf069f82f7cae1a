package dbmysql

import "time"

// MessageRead is a read receipt: at most one per reader per message.
type MessageRead struct {
	MessageID string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"primaryKey;size:36"`
	ReadAt    time.Time `gorm:"not null"`
}

func (MessageRead) TableName() string {
	return "message_reads"
}
