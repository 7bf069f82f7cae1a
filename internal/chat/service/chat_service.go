package service

//go:generate mockgen -destination=mocks/mock_chat_repository.go -package=mocks taskchat/internal/chat/repository ChatRepository
//go:generate mockgen -destination=mocks/mock_dependencies.go -package=mocks taskchat/internal/chat/service UserDirectory,Notifier,Relay

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"taskchat/internal/chat/models"
	"taskchat/internal/chat/presence"
	"taskchat/internal/chat/repository"
	"taskchat/internal/common"
	"taskchat/internal/config"
	"taskchat/internal/dbmysql"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100

	// MaxContentLength is in characters and fits a TEXT column at 4 bytes each.
	MaxContentLength = 10000
)

// UserDirectory is the slice of the user store the chat core reads.
type UserDirectory interface {
	GetUserByID(ctx context.Context, userID string) (*dbmysql.User, error)
	GetUsersByIDs(ctx context.Context, userIDs []string) (map[string]*dbmysql.User, error)
}

// Notifier queues the "new message" notification for a recipient. It must
// not block on delivery.
type Notifier interface {
	NotifyNewMessage(ctx context.Context, msg *models.Message, senderName string) error
}

// Relay forwards an event to a user connected to another instance.
type Relay interface {
	Publish(ctx context.Context, userID string, event models.Event) error
}

// SendInput is the body of a send request. File is set by the HTTP layer
// after a multipart upload has been stored.
type SendInput struct {
	RecipientID string             `json:"recipientId" validate:"required"`
	Content     string             `json:"content" validate:"max=10000"`
	MessageType models.MessageKind `json:"messageType" validate:"omitempty,oneof=text image file task_update"`
	File        *models.FileBody   `json:"-"`
}

// ChatService defines the interface exposed to the handler layer
type ChatService interface {
	SendMessage(ctx context.Context, senderID string, in SendInput) (*models.Message, error)
	GetMessageHistory(ctx context.Context, userID, otherID string, page, limit int) (*models.MessagePage, error)
	GetConversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error)
	MarkRead(ctx context.Context, userID, senderID string) (int64, error)
	MarkDelivered(ctx context.Context, userID, senderID string) (int64, error)
	DeleteMessage(ctx context.Context, userID, messageID string) error
	OnlineUsers(ctx context.Context) ([]*models.UserRef, error)
}

type chatService struct {
	repo      repository.ChatRepository
	users     UserDirectory
	registry  presence.Registry
	notifier  Notifier
	relay     Relay
	freshness time.Duration
	now       func() time.Time
}

// NewChatService wires the dispatcher. relay may be nil on single-instance
// deployments.
func NewChatService(
	repo repository.ChatRepository,
	users UserDirectory,
	registry presence.Registry,
	notifier Notifier,
	relay Relay,
	cfg *config.Config,
) ChatService {
	freshness := cfg.Presence.FreshnessWindow
	if freshness <= 0 {
		freshness = 5 * time.Minute
	}
	return &chatService{
		repo:      repo,
		users:     users,
		registry:  registry,
		notifier:  notifier,
		relay:     relay,
		freshness: freshness,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *chatService) SendMessage(ctx context.Context, senderID string, in SendInput) (*models.Message, error) {
	if err := common.Validate(in); err != nil {
		return nil, err
	}
	if in.RecipientID == senderID {
		return nil, common.NewValidationError("Cannot send a message to yourself")
	}
	kind, body, err := in.resolve()
	if err != nil {
		return nil, err
	}

	users, err := s.users.GetUsersByIDs(ctx, []string{senderID, in.RecipientID})
	if err != nil {
		return nil, serverError("Failed to look up users", err)
	}
	recipient, ok := users[in.RecipientID]
	if !ok {
		return nil, common.NewNotFoundError("Recipient not found")
	}

	now := s.now()
	status := models.StatusSent
	if recipient.ActiveWithin(now, s.freshness) {
		status = models.StatusDelivered
	}

	msg := &models.Message{
		SenderID:    senderID,
		RecipientID: in.RecipientID,
		Kind:        kind,
		Body:        body,
		Status:      status,
		CreatedAt:   now,
	}
	if status == models.StatusDelivered {
		msg.DeliveredAt = &now
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, serverError("Failed to send message", err)
	}

	msg.Sender = s.userRef(senderID, users[senderID])
	msg.Recipient = s.userRef(in.RecipientID, recipient)

	if s.notifier != nil {
		if err := s.notifier.NotifyNewMessage(ctx, msg, msg.Sender.Name); err != nil {
			log.Printf("Failed to queue notification for message %s: %v", msg.ID, err)
		}
	}

	event, err := models.NewEvent(models.EventNewMessage, models.NewMessagePayload{
		Message: msg,
		Sender:  msg.Sender,
		ConversationUpdate: models.ConversationUpdate{
			LastMessage:   msg.Summary(),
			LastMessageAt: msg.CreatedAt,
		},
	})
	if err != nil {
		log.Printf("Failed to encode newMessage event for %s: %v", msg.ID, err)
		return msg, nil
	}
	s.push(ctx, in.RecipientID, event)

	return msg, nil
}

// resolve picks the message kind and body. An attached file decides the kind
// by its MIME type; otherwise the declared kind must not need a file.
func (in SendInput) resolve() (models.MessageKind, models.Body, error) {
	if in.File != nil {
		kind := models.MessageKind(common.DetectFileType(in.File.MIMEType))
		return kind, *in.File, nil
	}

	kind := in.MessageType
	if kind == "" {
		kind = models.KindText
	}
	if kind.RequiresFile() {
		return "", nil, common.NewValidationError("File is required for this message type")
	}
	text := strings.TrimSpace(in.Content)
	if text == "" {
		return "", nil, common.NewValidationError("Message content is required")
	}
	return kind, models.TextBody{Text: text}, nil
}

func (s *chatService) GetMessageHistory(ctx context.Context, userID, otherID string, page, limit int) (*models.MessagePage, error) {
	if otherID == "" {
		return nil, common.NewValidationError("User ID is required")
	}
	page, limit = normalizePage(page, limit)

	messages, total, err := s.repo.ListConversation(ctx, userID, otherID, page, limit)
	if err != nil {
		return nil, serverError("Failed to fetch messages", err)
	}

	users, err := s.users.GetUsersByIDs(ctx, []string{userID, otherID})
	if err != nil {
		return nil, serverError("Failed to look up users", err)
	}
	refs := map[string]*models.UserRef{
		userID:  s.userRef(userID, users[userID]),
		otherID: s.userRef(otherID, users[otherID]),
	}
	for _, m := range messages {
		m.Sender = refs[m.SenderID]
		m.Recipient = refs[m.RecipientID]
	}

	return models.NewMessagePage(messages, total, page, limit), nil
}

func (s *chatService) GetConversations(ctx context.Context, userID string) ([]*models.ConversationSummary, error) {
	summaries, err := s.repo.ListConversations(ctx, userID)
	if err != nil {
		return nil, serverError("Failed to fetch conversations", err)
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	ids := make([]string, len(summaries))
	for i, c := range summaries {
		ids[i] = c.CounterpartID
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, serverError("Failed to look up users", err)
	}

	// Conversations with users that no longer exist are dropped.
	out := summaries[:0]
	for _, c := range summaries {
		u, ok := users[c.CounterpartID]
		if !ok {
			continue
		}
		c.User = s.userRef(c.CounterpartID, u)
		out = append(out, c)
	}
	return out, nil
}

func (s *chatService) MarkRead(ctx context.Context, userID, senderID string) (int64, error) {
	if senderID == "" {
		return 0, common.NewValidationError("senderId is required")
	}

	now := s.now()
	modified, err := s.repo.MarkRead(ctx, senderID, userID, now)
	if err != nil {
		return 0, serverError("Failed to mark messages as read", err)
	}

	if modified > 0 {
		event, err := models.NewEvent(models.EventMessagesRead, models.MessagesReadPayload{
			ReaderID:      userID,
			ModifiedCount: modified,
			ReadAt:        now,
		})
		if err == nil {
			s.push(ctx, senderID, event)
		}
	}
	return modified, nil
}

func (s *chatService) MarkDelivered(ctx context.Context, userID, senderID string) (int64, error) {
	if senderID == "" {
		return 0, common.NewValidationError("senderId is required")
	}

	modified, err := s.repo.MarkDelivered(ctx, senderID, userID, s.now())
	if err != nil {
		return 0, serverError("Failed to mark messages as delivered", err)
	}
	return modified, nil
}

func (s *chatService) DeleteMessage(ctx context.Context, userID, messageID string) error {
	if messageID == "" {
		return common.NewValidationError("Message ID is required")
	}
	if err := s.repo.SoftDelete(ctx, messageID, userID, s.now()); err != nil {
		return serverError("Failed to delete message", err)
	}
	return nil
}

func (s *chatService) OnlineUsers(ctx context.Context) ([]*models.UserRef, error) {
	ids := s.registry.OnlineUsers()
	if len(ids) == 0 {
		return []*models.UserRef{}, nil
	}

	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, serverError("Failed to look up users", err)
	}

	refs := make([]*models.UserRef, 0, len(ids))
	for _, id := range ids {
		if u, ok := users[id]; ok {
			refs = append(refs, s.userRef(id, u))
		}
	}
	return refs, nil
}

// push delivers to a local connection, or hands the event to the relay when
// the user is not connected here. Failures are logged only.
func (s *chatService) push(ctx context.Context, userID string, event models.Event) {
	if conn, ok := s.registry.Resolve(userID); ok {
		if err := conn.Send(event); err != nil {
			log.Printf("Failed to push %s to user %s: %v", event.Name, userID, err)
		}
		return
	}
	if s.relay != nil {
		if err := s.relay.Publish(ctx, userID, event); err != nil {
			log.Printf("Failed to relay %s to user %s: %v", event.Name, userID, err)
		}
	}
}

// userRef builds the public view of a user. IsOnline follows the live
// registry; LastActive is exposed for the freshness indicator.
func (s *chatService) userRef(id string, u *dbmysql.User) *models.UserRef {
	ref := &models.UserRef{
		ID:       id,
		IsOnline: s.registry.IsOnline(id),
	}
	if u != nil {
		ref.Name = u.Name
		ref.Email = u.Email
		ref.ProfileImage = u.ProfileImage
		ref.LastActive = u.LastActive
	}
	return ref
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// serverError keeps typed errors from lower layers and wraps everything
// else as a ServerError.
func serverError(message string, err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return common.NewServerError(message, err)
}
