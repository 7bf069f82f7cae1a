package repository

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskchat/internal/chat/models"
	"taskchat/internal/common"
	"taskchat/internal/dbmysql"
	"taskchat/internal/dbmysql/dbtest"
)

var base = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func textMessage(id, from, to, text string, offset time.Duration) *models.Message {
	return &models.Message{
		ID:          id,
		SenderID:    from,
		RecipientID: to,
		Kind:        models.KindText,
		Body:        models.TextBody{Text: text},
		Status:      models.StatusSent,
		CreatedAt:   base.Add(offset),
	}
}

func fileMessage(id, from, to, path, name string, offset time.Duration) *models.Message {
	return &models.Message{
		ID:          id,
		SenderID:    from,
		RecipientID: to,
		Kind:        models.KindImage,
		Body:        models.FileBody{Path: path, OriginalName: name, Size: 10, MIMEType: "image/png"},
		Status:      models.StatusSent,
		CreatedAt:   base.Add(offset),
	}
}

func newSQLiteRepo(t *testing.T, msgs ...*models.Message) ChatRepository {
	t.Helper()
	repo := NewChatRepository(dbtest.New(t))
	for _, m := range msgs {
		require.NoError(t, repo.Create(context.Background(), m))
	}
	return repo
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock, func() { db.Close() }
}

func TestChatRepository_CreateValidation(t *testing.T) {
	repo := newSQLiteRepo(t)
	ctx := context.Background()

	tests := []struct {
		name string
		msg  *models.Message
	}{
		{"missing sender", &models.Message{RecipientID: "b", Kind: models.KindText, Body: models.TextBody{Text: "hi"}}},
		{"unknown kind", &models.Message{SenderID: "a", RecipientID: "b", Kind: "video", Body: models.TextBody{Text: "hi"}}},
		{"empty text", &models.Message{SenderID: "a", RecipientID: "b", Kind: models.KindText, Body: models.TextBody{}}},
		{"nil body", &models.Message{SenderID: "a", RecipientID: "b", Kind: models.KindText}},
		{"image without file", &models.Message{SenderID: "a", RecipientID: "b", Kind: models.KindImage, Body: models.TextBody{Text: "x.png"}}},
		{"file on text kind", &models.Message{SenderID: "a", RecipientID: "b", Kind: models.KindText, Body: models.FileBody{Path: "p", OriginalName: "n"}}},
		{"file without path", &models.Message{SenderID: "a", RecipientID: "b", Kind: models.KindFile, Body: models.FileBody{OriginalName: "n"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.msg)
			assert.True(t, common.IsKind(err, common.KindValidation), "got %v", err)
		})
	}
}

func TestChatRepository_CreateAndByID(t *testing.T) {
	msg := fileMessage("m1", "a", "b", "uploads/messages/file-1-2.png", "chart.png", 0)
	repo := newSQLiteRepo(t, msg)

	got, err := repo.ByID(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, models.KindImage, got.Kind)
	assert.Equal(t, "chart.png", got.Content())
	fb, ok := got.File()
	require.True(t, ok)
	assert.Equal(t, "uploads/messages/file-1-2.png", fb.Path)
	assert.Equal(t, "image/png", fb.MIMEType)

	_, err = repo.ByID(context.Background(), "missing")
	assert.True(t, common.IsKind(err, common.KindNotFound))
}

func TestChatRepository_CreateAssignsDefaults(t *testing.T) {
	repo := newSQLiteRepo(t)
	msg := &models.Message{SenderID: "a", RecipientID: "b", Kind: models.KindText, Body: models.TextBody{Text: "hi"}}

	require.NoError(t, repo.Create(context.Background(), msg))
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, models.StatusSent, msg.Status)
	assert.False(t, msg.CreatedAt.IsZero())
}

func TestChatRepository_ListConversationIsSymmetric(t *testing.T) {
	repo := newSQLiteRepo(t,
		textMessage("m1", "a", "b", "one", 1*time.Minute),
		textMessage("m2", "b", "a", "two", 2*time.Minute),
		textMessage("m3", "a", "b", "three", 3*time.Minute),
		textMessage("m4", "a", "c", "other thread", 4*time.Minute),
	)
	ctx := context.Background()

	ab, totalAB, err := repo.ListConversation(ctx, "a", "b", 1, 50)
	require.NoError(t, err)
	ba, totalBA, err := repo.ListConversation(ctx, "b", "a", 1, 50)
	require.NoError(t, err)

	assert.Equal(t, int64(3), totalAB)
	assert.Equal(t, totalAB, totalBA)
	require.Len(t, ab, 3)
	require.Len(t, ba, 3)
	for i := range ab {
		assert.Equal(t, ab[i].ID, ba[i].ID)
	}
	assert.Equal(t, "m3", ab[0].ID, "newest first")
}

func TestChatRepository_ListConversationPaginates(t *testing.T) {
	var msgs []*models.Message
	for i := 0; i < 5; i++ {
		msgs = append(msgs, textMessage(string(rune('a'+i))+"-msg", "a", "b", "hi", time.Duration(i)*time.Minute))
	}
	repo := newSQLiteRepo(t, msgs...)

	page2, total, err := repo.ListConversation(context.Background(), "a", "b", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, page2, 2)
	assert.Equal(t, "c-msg", page2[0].ID)
	assert.Equal(t, "b-msg", page2[1].ID)
}

func TestChatRepository_SoftDeleteVisibility(t *testing.T) {
	repo := newSQLiteRepo(t,
		textMessage("m1", "a", "b", "keep", 1*time.Minute),
		textMessage("m2", "a", "b", "drop", 2*time.Minute),
	)
	ctx := context.Background()

	before, err := repo.ListConversations(ctx, "b")
	require.NoError(t, err)
	require.Len(t, before, 1)
	assert.Equal(t, int64(2), before[0].UnreadCount)

	require.NoError(t, repo.SoftDelete(ctx, "m2", "a", base.Add(time.Hour)))

	list, total, err := repo.ListConversation(ctx, "a", "b", 1, 50)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "m1", list[0].ID)

	after, err := repo.ListConversations(ctx, "b")
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, int64(1), after[0].UnreadCount)
	assert.Equal(t, "keep", after[0].LastMessage)

	got, err := repo.ByID(ctx, "m2")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	require.NotNil(t, got.DeletedBy)
	assert.Equal(t, "a", *got.DeletedBy)
	assert.Equal(t, "drop", got.Content())
}

func TestChatRepository_SoftDeleteErrors(t *testing.T) {
	repo := newSQLiteRepo(t, textMessage("m1", "a", "b", "hi", 0))
	ctx := context.Background()

	err := repo.SoftDelete(ctx, "missing", "a", base)
	assert.True(t, common.IsKind(err, common.KindNotFound))

	err = repo.SoftDelete(ctx, "m1", "b", base)
	assert.True(t, common.IsKind(err, common.KindForbidden))

	require.NoError(t, repo.SoftDelete(ctx, "m1", "a", base))
	require.NoError(t, repo.SoftDelete(ctx, "m1", "a", base), "deleting twice is a no-op")
}

func TestChatRepository_ListConversations(t *testing.T) {
	repo := newSQLiteRepo(t,
		textMessage("m1", "b", "a", "old from b", 1*time.Minute),
		textMessage("m2", "a", "b", "reply to b", 2*time.Minute),
		textMessage("m3", "c", "a", "hello from c", 3*time.Minute),
		fileMessage("m4", "c", "a", "uploads/messages/file-9-9.png", "photo.png", 4*time.Minute),
		textMessage("m5", "b", "c", "not mine", 5*time.Minute),
	)

	summaries, err := repo.ListConversations(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	assert.Equal(t, "c", summaries[0].CounterpartID)
	assert.Equal(t, "📎 photo.png", summaries[0].LastMessage)
	assert.True(t, summaries[0].LastMessageAt.Equal(base.Add(4*time.Minute)))
	assert.Equal(t, int64(2), summaries[0].UnreadCount)

	assert.Equal(t, "b", summaries[1].CounterpartID)
	assert.Equal(t, "reply to b", summaries[1].LastMessage)
	assert.Equal(t, int64(1), summaries[1].UnreadCount)
}

func TestChatRepository_ListConversationsEmpty(t *testing.T) {
	summaries, err := newSQLiteRepo(t).ListConversations(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, summaries)
	assert.Empty(t, summaries)
}

func TestChatRepository_MarkReadIsIdempotent(t *testing.T) {
	delivered := textMessage("m2", "s", "r", "two", 2*time.Minute)
	delivered.Status = models.StatusDelivered
	repo := newSQLiteRepo(t,
		textMessage("m1", "s", "r", "one", 1*time.Minute),
		delivered,
		textMessage("m3", "r", "s", "other direction", 3*time.Minute),
	)
	ctx := context.Background()
	readAt := base.Add(time.Hour)

	n, err := repo.MarkRead(ctx, "s", "r", readAt)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.MarkRead(ctx, "s", "r", readAt.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := repo.ByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, got.Status)
	require.NotNil(t, got.ReadAt)
	require.Len(t, got.ReadBy, 1)
	assert.Equal(t, "r", got.ReadBy[0].UserID)

	other, err := repo.ByID(ctx, "m3")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, other.Status, "only the given direction changes")
}

func TestChatRepository_MarkDeliveredNeverRegresses(t *testing.T) {
	read := textMessage("m2", "s", "r", "two", 2*time.Minute)
	read.Status = models.StatusRead
	repo := newSQLiteRepo(t,
		textMessage("m1", "s", "r", "one", 1*time.Minute),
		read,
	)
	ctx := context.Background()

	n, err := repo.MarkDelivered(ctx, "s", "r", base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.ByID(ctx, "m2")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRead, got.Status)

	got, err = repo.ByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, got.Status)
	assert.NotNil(t, got.DeliveredAt)

	n, err = repo.MarkDelivered(ctx, "s", "r", base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestChatRepository_ListingDoesNotChangeStatus(t *testing.T) {
	repo := newSQLiteRepo(t, textMessage("m1", "a", "b", "hello", 0))
	ctx := context.Background()

	_, _, err := repo.ListConversation(ctx, "b", "a", 1, 50)
	require.NoError(t, err)
	_, err = repo.ListConversations(ctx, "b")
	require.NoError(t, err)

	got, err := repo.ByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSent, got.Status)
}

func TestChatRepository_FindAttachment(t *testing.T) {
	path := "uploads/messages/file-1-2.png"
	repo := newSQLiteRepo(t, fileMessage("m1", "a", "b", path, "chart.png", 0))
	ctx := context.Background()

	for _, user := range []string{"a", "b"} {
		got, err := repo.FindAttachment(ctx, path, user)
		require.NoError(t, err, user)
		assert.Equal(t, "m1", got.ID)
	}

	_, err := repo.FindAttachment(ctx, path, "mallory")
	assert.True(t, common.IsKind(err, common.KindNotFound))

	_, err = repo.FindAttachment(ctx, "uploads/messages/other.png", "a")
	assert.True(t, common.IsKind(err, common.KindNotFound))
}

func TestChatRepository_CreateDatabaseError(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `messages`")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	repo := NewChatRepository(db)
	err := repo.Create(context.Background(), textMessage("m1", "a", "b", "hi", 0))

	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_MarkReadRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO message_reads")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE `messages`")).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	repo := NewChatRepository(db)
	n, err := repo.MarkRead(context.Background(), "s", "r", base)

	require.Error(t, err)
	assert.Zero(t, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatRepository_MarkReadLargeBacklog(t *testing.T) {
	const backlog = 12000
	db := dbtest.New(t)
	recipient := "b"

	rows := make([]dbmysql.Message, backlog)
	for i := range rows {
		rows[i] = dbmysql.Message{
			ID:          fmt.Sprintf("m-%05d", i),
			SenderID:    "a",
			RecipientID: &recipient,
			Content:     "ping",
			MessageType: string(models.KindText),
			Status:      string(models.StatusSent),
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
	}
	require.NoError(t, db.CreateInBatches(rows, 500).Error)

	repo := NewChatRepository(db)
	n, err := repo.MarkRead(context.Background(), "a", "b", base.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(backlog), n)

	var unread int64
	require.NoError(t, db.Model(&dbmysql.Message{}).Where("status <> ?", "read").Count(&unread).Error)
	assert.Zero(t, unread)

	var receipts int64
	require.NoError(t, db.Model(&dbmysql.MessageRead{}).Where("user_id = ?", "b").Count(&receipts).Error)
	assert.Equal(t, int64(backlog), receipts)
}

func TestToModel_FallsBackToContentForFileName(t *testing.T) {
	path := "uploads/messages/x.pdf"
	row := &dbmysql.Message{ID: "m", MessageType: "file", Content: "report.pdf", FileURL: &path}

	fb, ok := toModel(row).File()
	require.True(t, ok)
	assert.Equal(t, "report.pdf", fb.OriginalName)
}
