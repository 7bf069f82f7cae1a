package notif

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"taskchat/internal/common"
	"taskchat/internal/dbmysql"
)

const storeTimeout = 10 * time.Second

var _ common.Observer = (*DatabaseNotificationObserver)(nil)

// DatabaseNotificationObserver persists every event as a notification row.
type DatabaseNotificationObserver struct {
	repo dbmysql.NotificationRepository
}

func NewDatabaseNotificationObserver(repo dbmysql.NotificationRepository) *DatabaseNotificationObserver {
	return &DatabaseNotificationObserver{
		repo: repo,
	}
}

func (d *DatabaseNotificationObserver) Name() string {
	return "database_observer"
}

func (d *DatabaseNotificationObserver) Update(event common.NotificationEvent) error {
	now := time.Now().UTC()
	notification := &dbmysql.Notification{
		ID:            uuid.NewString(),
		UserID:        event.UserID,
		Type:          string(event.Type),
		Header:        event.Header,
		Content:       event.Content,
		Priority:      event.Priority,
		Status:        string(common.StatusPending),
		Metadata:      event.Metadata,
		TriggerUserID: event.TriggerUserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Runs on a worker after the request is gone, so it gets its own deadline.
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	if err := d.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to store notification: %w", err)
	}

	return nil
}
