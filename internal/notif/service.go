package notif

import (
	"context"
	"fmt"
	"log"

	"taskchat/internal/chat/models"
	"taskchat/internal/common"
	"taskchat/internal/config"
	"taskchat/internal/dbmysql"
)

const messagePriority = 4

type NotificationService struct {
	manager *NotificationManager
	repo    dbmysql.NotificationRepository
	enabled bool
}

func NewNotificationService(cfg *config.Config, repo dbmysql.NotificationRepository) *NotificationService {
	manager := NewNotificationManager(cfg.Notification.Workers, cfg.Notification.ChannelBufferSize)
	manager.Subscribe(NewDatabaseNotificationObserver(repo))

	return &NotificationService{
		manager: manager,
		repo:    repo,
		enabled: cfg.Notification.Enabled,
	}
}

// SendNotification validates event and delivers it synchronously.
func (s *NotificationService) SendNotification(ctx context.Context, event common.NotificationEvent) error {
	if err := s.validateEvent(event); err != nil {
		return err
	}

	s.manager.Notify(event)

	log.Printf("Notification sent: type=%s, user=%s", event.Type, event.UserID)
	return nil
}

// NotifyNewMessage queues the recipient's "new message" notification. It
// returns once the event is queued.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, msg *models.Message, senderName string) error {
	if !s.enabled {
		return nil
	}
	if senderName == "" {
		senderName = "someone"
	}

	senderID := msg.SenderID
	event := common.NotificationEvent{
		Type:          common.MessageType,
		UserID:        msg.RecipientID,
		TriggerUserID: &senderID,
		Header:        fmt.Sprintf("New message from %s", senderName),
		Content:       msg.Summary(),
		Priority:      messagePriority,
		Metadata: common.NotificationMetadata{
			"message_id":   msg.ID,
			"sender_id":    msg.SenderID,
			"message_type": string(msg.Kind),
		},
	}
	if err := s.validateEvent(event); err != nil {
		return err
	}

	return s.manager.NotifyAsync(event)
}

func (s *NotificationService) GetUserNotifications(
	ctx context.Context,
	userID string,
	limit, offset int,
) ([]*common.NotificationResponse, error) {
	notifications, err := s.repo.ByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, common.NewServerError("Failed to get notifications", err)
	}

	responses := make([]*common.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = &common.NotificationResponse{
			ID:            n.ID,
			Type:          n.Type,
			Header:        n.Header,
			Content:       n.Content,
			TriggerUserID: n.TriggerUserID,
			Status:        n.Status,
			Priority:      n.Priority,
			Metadata:      n.Metadata,
			CreatedAt:     n.CreatedAt,
			ReadAt:        n.ReadAt,
		}
	}

	return responses, nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, common.NewServerError("Failed to count notifications", err)
	}
	return count, nil
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID string) error {
	if notificationID == "" {
		return common.NewValidationError("Notification ID is required")
	}
	err := s.repo.MarkAsRead(ctx, notificationID, userID)
	if err != nil && !common.IsKind(err, common.KindNotFound) {
		return common.NewServerError("Failed to mark notification as read", err)
	}
	return err
}

func (s *NotificationService) validateEvent(event common.NotificationEvent) error {
	if event.UserID == "" {
		return common.NewValidationError("user_id is required")
	}

	if event.Header == "" {
		return common.NewValidationError("header is required")
	}

	if event.Content == "" {
		return common.NewValidationError("content is required")
	}

	if event.Priority < 1 || event.Priority > 5 {
		return common.NewValidationError("priority must be between 1 and 5")
	}

	return nil
}

// Shutdown drains queued notifications.
func (s *NotificationService) Shutdown() {
	s.manager.Shutdown()
	log.Println("NotificationService shutdown complete")
}
