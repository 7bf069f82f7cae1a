package dbmysql

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the chat service owns.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&User{}, &Message{}, &MessageRead{}, &Notification{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
