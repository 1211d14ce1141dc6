package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashmarin/codemail/pkg/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "codemail.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func newTestAccount(t *testing.T, db *DB) *models.EmailAccount {
	t.Helper()

	account := &models.EmailAccount{
		Email:      "user@example.com",
		Password:   "encrypted",
		IMAPServer: "imap.example.com:993",
		ChatID:     -100123,
		TopicID:    7,
		IsActive:   true,
		CreatedBy:  42,
	}
	require.NoError(t, db.CreateAccount(context.Background(), account))
	require.NotZero(t, account.ID)
	return account
}

func TestAccountLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	account := newTestAccount(t, db)

	got, err := db.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Email, got.Email)

	got, err = db.GetAccountByChatAndTopic(ctx, account.ChatID, account.TopicID)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	require.NoError(t, db.UpdateAccountLastUID(ctx, account.ID, 99))
	got, err = db.GetAccountByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, uint32(99), got.LastUID)

	require.NoError(t, db.SetAccountActive(ctx, account.ID, false))
	active, err := db.GetAllActiveAccounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, db.DeleteAccount(ctx, account.ID))
	_, err = db.GetAccountByID(ctx, account.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAccountByChatAndTopic_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetAccountByChatAndTopic(context.Background(), 1, 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateMessage_DuplicateUID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	account := newTestAccount(t, db)

	msg := &models.EmailMessage{
		AccountID:   account.ID,
		UID:         10,
		FromAddr:    "noreply@example.com",
		Subject:     "Your code",
		BodyText:    "Your verification code is 654321",
		ContentType: models.ContentTypeText,
		Code:        "654321",
		ReceivedAt:  time.Now(),
	}
	require.NoError(t, db.CreateMessage(ctx, msg))
	require.NotZero(t, msg.ID)

	dup := *msg
	dup.ID = 0
	assert.ErrorIs(t, db.CreateMessage(ctx, &dup), ErrAlreadyExists)
}

func TestGetLatestCodeMessage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	account := newTestAccount(t, db)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := func(uid uint32, code string, at time.Time) *models.EmailMessage {
		msg := &models.EmailMessage{
			AccountID:   account.ID,
			UID:         uid,
			FromAddr:    "noreply@example.com",
			ContentType: models.ContentTypeText,
			Code:        code,
			ReceivedAt:  at,
		}
		require.NoError(t, db.CreateMessage(ctx, msg))
		return msg
	}

	store(1, "111111", base)
	latest := store(2, "222222", base.Add(time.Hour))
	store(3, "", base.Add(2*time.Hour)) // no code detected

	got, err := db.GetLatestCodeMessage(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)
	assert.Equal(t, "222222", got.Code)

	// Deleted messages drop out.
	require.NoError(t, db.MarkMessageAsDeleted(ctx, latest.ID))
	got, err = db.GetLatestCodeMessage(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "111111", got.Code)
}

func TestGetLatestCodeMessage_NoCodes(t *testing.T) {
	db := newTestDB(t)
	account := newTestAccount(t, db)

	_, err := db.GetLatestCodeMessage(context.Background(), account.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkMessageAsRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	account := newTestAccount(t, db)

	msg := &models.EmailMessage{
		AccountID:   account.ID,
		UID:         5,
		FromAddr:    "noreply@example.com",
		ContentType: models.ContentTypeHTML,
		ReceivedAt:  time.Now(),
	}
	require.NoError(t, db.CreateMessage(ctx, msg))

	require.NoError(t, db.MarkMessageAsRead(ctx, msg.ID))
	got, err := db.GetMessageByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}
