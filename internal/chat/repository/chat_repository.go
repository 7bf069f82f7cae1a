package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskchat/internal/chat/models"
	"taskchat/internal/common"
	"taskchat/internal/dbmysql"
)

type ChatRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ByID(ctx context.Context, id string) (*models.Message, error)
	ListConversation(ctx context.Context, userA, userB string, page, pageSize int) ([]*models.Message, int64, error)
	ListConversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error)
	MarkRead(ctx context.Context, senderID, recipientID string, at time.Time) (int64, error)
	MarkDelivered(ctx context.Context, senderID, recipientID string, at time.Time) (int64, error)
	SoftDelete(ctx context.Context, id, deleterID string, at time.Time) error
	FindAttachment(ctx context.Context, path, requesterID string) (*models.Message, error)
}

type chatRepo struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepo{
		db: db,
	}
}

// notDeleted is applied to every listing and count.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("is_deleted = ?", false)
}

func between(a, b string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("((sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?))", a, b, b, a)
	}
}

func validateNew(msg *models.Message) error {
	if msg.SenderID == "" {
		return common.NewValidationError("Sender is required")
	}
	if !msg.Kind.Valid() {
		return common.NewValidationError(fmt.Sprintf("Invalid message type: %q", msg.Kind))
	}

	switch body := msg.Body.(type) {
	case models.FileBody:
		if !msg.Kind.RequiresFile() {
			return common.NewValidationError("File attached to a non-file message")
		}
		if body.Path == "" || body.OriginalName == "" {
			return common.NewValidationError("File metadata is incomplete")
		}
	case models.TextBody:
		if msg.Kind.RequiresFile() {
			return common.NewValidationError("File is required for this message type")
		}
		if body.Text == "" {
			return common.NewValidationError("Message content is required")
		}
	default:
		return common.NewValidationError("Message content is required")
	}
	return nil
}

func (r *chatRepo) Create(ctx context.Context, msg *models.Message) error {
	if err := validateNew(msg); err != nil {
		return err
	}
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Status == "" {
		msg.Status = models.StatusSent
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	if err := r.db.WithContext(ctx).Create(toRow(msg)).Error; err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *chatRepo) ByID(ctx context.Context, id string) (*models.Message, error) {
	var row dbmysql.Message
	err := r.db.WithContext(ctx).Preload("ReadBy").Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFoundError("Message not found")
		}
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	return toModel(&row), nil
}

func (r *chatRepo) ListConversation(ctx context.Context, userA, userB string, page, pageSize int) ([]*models.Message, int64, error) {
	if page < 1 {
		page = 1
	}

	var total int64
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Scopes(notDeleted, between(userA, userB)).
		Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count conversation: %w", err)
	}

	var rows []dbmysql.Message
	err = r.db.WithContext(ctx).
		Scopes(notDeleted, between(userA, userB)).
		Preload("ReadBy").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list conversation: %w", err)
	}

	messages := make([]*models.Message, len(rows))
	for i := range rows {
		messages[i] = toModel(&rows[i])
	}
	return messages, total, nil
}

func (r *chatRepo) ListConversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error) {
	var rows []dbmysql.Message
	err := r.db.WithContext(ctx).
		Select("id", "sender_id", "recipient_id", "content", "message_type", "file_url", "file_name", "created_at").
		Scopes(notDeleted).
		Where("(sender_id = ? OR recipient_id = ?) AND recipient_id IS NOT NULL", userID, userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	summaries := make([]*models.ConversationSummary, 0)
	seen := make(map[string]bool)
	for i := range rows {
		row := &rows[i]
		counterpart := row.SenderID
		if counterpart == userID {
			counterpart = *row.RecipientID
		}
		if counterpart == userID || seen[counterpart] {
			continue
		}
		seen[counterpart] = true

		summaries = append(summaries, &models.ConversationSummary{
			CounterpartID: counterpart,
			LastMessage:   toModel(row).Summary(),
			LastMessageAt: row.CreatedAt,
		})
	}

	for _, s := range summaries {
		err := r.db.WithContext(ctx).
			Model(&dbmysql.Message{}).
			Scopes(notDeleted).
			Where("sender_id = ? AND recipient_id = ? AND status <> ?", s.CounterpartID, userID, string(models.StatusRead)).
			Count(&s.UnreadCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count unread messages: %w", err)
		}
	}

	return summaries, nil
}

// insertReceipts records a receipt for every message the reader is about to
// mark read. It runs as one INSERT ... SELECT so the statement size does not
// grow with the backlog.
const insertReceipts = `INSERT INTO message_reads (message_id, user_id, read_at)
SELECT m.id, ?, ? FROM messages m
WHERE m.sender_id = ? AND m.recipient_id = ? AND m.status IN ?
AND NOT EXISTS (SELECT 1 FROM message_reads r WHERE r.message_id = m.id AND r.user_id = ?)`

func (r *chatRepo) MarkRead(ctx context.Context, senderID, recipientID string, at time.Time) (int64, error) {
	eligible := models.StatusesBefore(models.StatusRead)
	var modified int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(insertReceipts, recipientID, at, senderID, recipientID, eligible, recipientID).Error; err != nil {
			return err
		}

		result := tx.Model(&dbmysql.Message{}).
			Where("sender_id = ? AND recipient_id = ? AND status IN ?", senderID, recipientID, eligible).
			Updates(map[string]interface{}{
				"status":  string(models.StatusRead),
				"read_at": at,
			})
		if result.Error != nil {
			return result.Error
		}
		modified = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", err)
	}
	return modified, nil
}

func (r *chatRepo) MarkDelivered(ctx context.Context, senderID, recipientID string, at time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("sender_id = ? AND recipient_id = ? AND status IN ?", senderID, recipientID, models.StatusesBefore(models.StatusDelivered)).
		Updates(map[string]interface{}{
			"status":       string(models.StatusDelivered),
			"delivered_at": at,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to mark messages delivered: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *chatRepo) SoftDelete(ctx context.Context, id, deleterID string, at time.Time) error {
	var row dbmysql.Message
	err := r.db.WithContext(ctx).
		Select("id", "sender_id", "is_deleted").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.NewNotFoundError("Message not found")
		}
		return fmt.Errorf("failed to load message: %w", err)
	}

	if row.SenderID != deleterID {
		return common.NewForbiddenError("You can only delete your own messages")
	}
	if row.IsDeleted {
		return nil
	}

	err = r.db.WithContext(ctx).
		Model(&dbmysql.Message{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_deleted": true,
			"deleted_by": deleterID,
			"deleted_at": at,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// FindAttachment returns the message that owns path, provided requesterID is
// one of its two participants. Soft-deleted messages still authorize access.
func (r *chatRepo) FindAttachment(ctx context.Context, path, requesterID string) (*models.Message, error) {
	var row dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("file_url = ?", path).
		Where("(sender_id = ? OR recipient_id = ?)", requesterID, requesterID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NewNotFoundError("No message owns this file for the requester")
		}
		return nil, fmt.Errorf("failed to look up attachment: %w", err)
	}
	return toModel(&row), nil
}
