package notif

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"taskchat/internal/chat/models"
	"taskchat/internal/common"
	"taskchat/internal/config"
	"taskchat/internal/dbmysql"
)

type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *dbmysql.Notification) error {
	args := m.Called(ctx, notification)
	return args.Error(0)
}

func (m *MockNotificationRepository) ByID(ctx context.Context, id string) (*dbmysql.Notification, error) {
	args := m.Called(ctx, id)
	if n, ok := args.Get(0).(*dbmysql.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) ByUserID(ctx context.Context, userID string, limit, offset int) ([]*dbmysql.Notification, error) {
	args := m.Called(ctx, userID, limit, offset)
	if n, ok := args.Get(0).([]*dbmysql.Notification); ok {
		return n, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockNotificationRepository) MarkAsRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func testConfig(enabled bool) *config.Config {
	return &config.Config{
		Notification: config.NotificationConfig{
			Workers:           2,
			ChannelBufferSize: 10,
			Enabled:           enabled,
		},
	}
}

func newMessage() *models.Message {
	return &models.Message{
		ID:          "msg-1",
		SenderID:    "alice",
		RecipientID: "bob",
		Kind:        models.KindText,
		Body:        models.TextBody{Text: "standup moved to 10"},
		Status:      models.StatusSent,
		CreatedAt:   time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestNotificationService_NotifyNewMessage(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *dbmysql.Notification) bool {
		return n.UserID == "bob" &&
			n.Type == string(common.MessageType) &&
			n.Header == "New message from Alice" &&
			n.Content == "standup moved to 10" &&
			n.Priority == messagePriority &&
			n.Status == string(common.StatusPending) &&
			n.TriggerUserID != nil && *n.TriggerUserID == "alice" &&
			n.Metadata["message_id"] == "msg-1" &&
			n.Metadata["message_type"] == "text" &&
			n.ID != ""
	})).Return(nil).Once()

	svc := NewNotificationService(testConfig(true), repo)

	require.NoError(t, svc.NotifyNewMessage(context.Background(), newMessage(), "Alice"))
	svc.Shutdown()

	repo.AssertExpectations(t)
}

func TestNotificationService_NotifyNewMessage_FileSummary(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(n *dbmysql.Notification) bool {
		return n.Content == "📎 plan.pdf" && n.Metadata["message_type"] == "file"
	})).Return(nil).Once()

	svc := NewNotificationService(testConfig(true), repo)

	msg := newMessage()
	msg.Kind = models.KindFile
	msg.Body = models.FileBody{Path: "uploads/messages/file-1-2.pdf", OriginalName: "plan.pdf", Size: 10, MIMEType: "application/pdf"}
	require.NoError(t, svc.NotifyNewMessage(context.Background(), msg, "Alice"))
	svc.Shutdown()

	repo.AssertExpectations(t)
}

func TestNotificationService_NotifyNewMessage_Disabled(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(testConfig(false), repo)

	require.NoError(t, svc.NotifyNewMessage(context.Background(), newMessage(), "Alice"))
	svc.Shutdown()

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestNotificationService_NotifyNewMessage_AfterShutdown(t *testing.T) {
	repo := new(MockNotificationRepository)
	svc := NewNotificationService(testConfig(true), repo)
	svc.Shutdown()

	err := svc.NotifyNewMessage(context.Background(), newMessage(), "Alice")
	assert.ErrorIs(t, err, ErrManagerClosed)
}

func TestNotificationService_SendNotification(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*dbmysql.Notification")).Return(nil).Once()

	svc := NewNotificationService(testConfig(true), repo)
	defer svc.Shutdown()

	err := svc.SendNotification(context.Background(), common.NotificationEvent{
		Type:     common.TaskUpdateType,
		UserID:   "bob",
		Header:   "Task updated",
		Content:  "Release checklist moved to Done",
		Priority: 2,
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestNotificationService_SendNotification_Validation(t *testing.T) {
	svc := NewNotificationService(testConfig(true), new(MockNotificationRepository))
	defer svc.Shutdown()

	valid := common.NotificationEvent{UserID: "bob", Header: "h", Content: "c", Priority: 1}

	cases := []struct {
		name   string
		mutate func(e *common.NotificationEvent)
	}{
		{"missing user", func(e *common.NotificationEvent) { e.UserID = "" }},
		{"missing header", func(e *common.NotificationEvent) { e.Header = "" }},
		{"missing content", func(e *common.NotificationEvent) { e.Content = "" }},
		{"priority too low", func(e *common.NotificationEvent) { e.Priority = 0 }},
		{"priority too high", func(e *common.NotificationEvent) { e.Priority = 6 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event := valid
			tc.mutate(&event)
			err := svc.SendNotification(context.Background(), event)
			assert.True(t, common.IsKind(err, common.KindValidation), "got %v", err)
		})
	}
}

func TestNotificationService_GetUserNotifications(t *testing.T) {
	repo := new(MockNotificationRepository)
	trigger := "alice"
	created := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	repo.On("ByUserID", mock.Anything, "bob", 20, 0).Return([]*dbmysql.Notification{
		{
			ID:            "n-1",
			UserID:        "bob",
			Type:          "message",
			Header:        "New message from Alice",
			Content:       "hi",
			Status:        "pending",
			Priority:      4,
			TriggerUserID: &trigger,
			CreatedAt:     created,
		},
	}, nil)

	svc := NewNotificationService(testConfig(true), repo)
	defer svc.Shutdown()

	got, err := svc.GetUserNotifications(context.Background(), "bob", 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "n-1", got[0].ID)
	assert.Equal(t, "New message from Alice", got[0].Header)
	assert.Equal(t, &trigger, got[0].TriggerUserID)
	assert.Equal(t, created, got[0].CreatedAt)
}

func TestNotificationService_GetUserNotifications_Error(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("ByUserID", mock.Anything, "bob", 20, 0).Return(nil, errors.New("db down"))

	svc := NewNotificationService(testConfig(true), repo)
	defer svc.Shutdown()

	_, err := svc.GetUserNotifications(context.Background(), "bob", 20, 0)
	assert.True(t, common.IsKind(err, common.KindServer))
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("MarkAsRead", mock.Anything, "n-1", "bob").Return(nil)
	repo.On("MarkAsRead", mock.Anything, "n-2", "bob").Return(common.NewNotFoundError("Notification not found"))
	repo.On("MarkAsRead", mock.Anything, "n-3", "bob").Return(errors.New("db down"))

	svc := NewNotificationService(testConfig(true), repo)
	defer svc.Shutdown()

	ctx := context.Background()
	assert.NoError(t, svc.MarkAsRead(ctx, "n-1", "bob"))
	assert.True(t, common.IsKind(svc.MarkAsRead(ctx, "n-2", "bob"), common.KindNotFound))
	assert.True(t, common.IsKind(svc.MarkAsRead(ctx, "n-3", "bob"), common.KindServer))
	assert.True(t, common.IsKind(svc.MarkAsRead(ctx, "", "bob"), common.KindValidation))
}

func TestNotificationService_UnreadCount(t *testing.T) {
	repo := new(MockNotificationRepository)
	repo.On("UnreadCount", mock.Anything, "bob").Return(int64(3), nil)

	svc := NewNotificationService(testConfig(true), repo)
	defer svc.Shutdown()

	count, err := svc.UnreadCount(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
