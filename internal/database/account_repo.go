package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ashmarin/codemail/pkg/models"
)

// ErrNotFound is returned when a record is not found
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists is returned when trying to insert a duplicate record
var ErrAlreadyExists = errors.New("record already exists")

// CreateAccount stores a watched mailbox and fills in its generated ID.
func (db *DB) CreateAccount(ctx context.Context, account *models.EmailAccount) error {
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	result, err := db.NamedExecContext(ctx, `
		INSERT INTO email_accounts (email, password, imap_server, chat_id, topic_id, is_active, last_uid, created_by, created_at, updated_at)
		VALUES (:email, :password, :imap_server, :chat_id, :topic_id, :is_active, :last_uid, :created_by, :created_at, :updated_at)
	`, account)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	account.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	return nil
}

// getAccount runs a single-row account query and maps no-rows to ErrNotFound.
func (db *DB) getAccount(ctx context.Context, query string, args ...any) (*models.EmailAccount, error) {
	var account models.EmailAccount
	err := db.GetContext(ctx, &account, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetAccountByID returns an account by ID.
func (db *DB) GetAccountByID(ctx context.Context, id int64) (*models.EmailAccount, error) {
	return db.getAccount(ctx, `SELECT * FROM email_accounts WHERE id = ?`, id)
}

// GetAccountByChatAndTopic returns the mailbox watched in a given topic.
// Each topic binds at most one mailbox.
func (db *DB) GetAccountByChatAndTopic(ctx context.Context, chatID int64, topicID int) (*models.EmailAccount, error) {
	return db.getAccount(ctx, `SELECT * FROM email_accounts WHERE chat_id = ? AND topic_id = ?`, chatID, topicID)
}

// GetAccountsByChatID returns every mailbox watched in a group, newest first.
func (db *DB) GetAccountsByChatID(ctx context.Context, chatID int64) ([]*models.EmailAccount, error) {
	var accounts []*models.EmailAccount
	err := db.SelectContext(ctx, &accounts,
		`SELECT * FROM email_accounts WHERE chat_id = ? ORDER BY created_at DESC`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}
	return accounts, nil
}

// GetAllActiveAccounts returns the accounts to restore on startup.
func (db *DB) GetAllActiveAccounts(ctx context.Context) ([]*models.EmailAccount, error) {
	var accounts []*models.EmailAccount
	err := db.SelectContext(ctx, &accounts, `SELECT * FROM email_accounts WHERE is_active = true`)
	if err != nil {
		return nil, fmt.Errorf("failed to get active accounts: %w", err)
	}
	return accounts, nil
}

// UpdateAccountLastUID records the highest IMAP UID already handled.
func (db *DB) UpdateAccountLastUID(ctx context.Context, id int64, uid uint32) error {
	_, err := db.ExecContext(ctx,
		`UPDATE email_accounts SET last_uid = ?, updated_at = ? WHERE id = ?`, uid, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update last uid: %w", err)
	}
	return nil
}

// SetAccountActive sets the active status of an account.
func (db *DB) SetAccountActive(ctx context.Context, id int64, active bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE email_accounts SET is_active = ?, updated_at = ? WHERE id = ?`, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to set account active: %w", err)
	}
	return nil
}

// DeleteAccount removes an account. Its stored messages go with it via the
// foreign-key cascade.
func (db *DB) DeleteAccount(ctx context.Context, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM email_accounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}
