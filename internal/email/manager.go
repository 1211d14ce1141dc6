package email

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ashmarin/codemail/internal/config"
	"github.com/ashmarin/codemail/pkg/models"
)

// MessageHandler receives each newly fetched message.
type MessageHandler func(accountID int64, msg *RawEmail)

// ErrorHandler receives connection and fetch errors.
type ErrorHandler func(accountID int64, err error)

// Manager owns one IMAP client per watched mailbox.
type Manager struct {
	mu          sync.RWMutex
	clients     map[int64]*watch
	config      *config.Config
	logger      *slog.Logger
	onMessage   MessageHandler
	onError     ErrorHandler
	decryptFunc func(string) string
}

// watch is a running client plus the goroutine controls for it.
type watch struct {
	client  *Client
	account *models.EmailAccount
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewManager creates a new email manager.
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{
		clients: make(map[int64]*watch),
		config:  cfg,
		logger:  logger.With("component", "email_manager"),
	}
}

// SetMessageHandler sets the handler for new messages.
func (m *Manager) SetMessageHandler(handler MessageHandler) {
	m.onMessage = handler
}

// SetErrorHandler sets the handler for errors.
func (m *Manager) SetErrorHandler(handler ErrorHandler) {
	m.onError = handler
}

// SetDecryptFunc sets the stored-password decryption function.
func (m *Manager) SetDecryptFunc(fn func(string) string) {
	m.decryptFunc = fn
}

// dial connects a client and selects INBOX, stopping it on failure.
func (m *Manager) dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	client := NewClient(cfg, m.logger)

	if err := client.Connect(ctx); err != nil {
		return nil, err
	}
	if _, err := client.SelectINBOX(ctx); err != nil {
		client.Stop()
		return nil, err
	}
	return client, nil
}

// TestConnection verifies credentials by logging in and selecting INBOX.
func (m *Manager) TestConnection(ctx context.Context, email, password, server string) error {
	client, err := m.dial(ctx, ClientConfig{
		Email:       email,
		Password:    password,
		Server:      server,
		IdleTimeout: m.config.IMAPIdleTimeout,
		DialTimeout: m.config.IMAPDialTimeout,
	})
	if err != nil {
		return err
	}
	client.Stop()
	return nil
}

// AddAccount starts watching a mailbox. Adding an account that is already
// watched is a no-op.
func (m *Manager) AddAccount(ctx context.Context, account *models.EmailAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clients[account.ID]; exists {
		return nil
	}

	password := account.Password
	if m.decryptFunc != nil {
		password = m.decryptFunc(password)
	}

	client, err := m.dial(ctx, ClientConfig{
		Email:        account.Email,
		Password:     password,
		Server:       account.IMAPServer,
		IdleTimeout:  m.config.IMAPIdleTimeout,
		DialTimeout:  m.config.IMAPDialTimeout,
		PollInterval: m.config.EmailPollInterval,
	})
	if err != nil {
		return err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	w := &watch{
		client:  client,
		account: account,
		ctx:     watchCtx,
		cancel:  cancel,
	}
	m.clients[account.ID] = w

	go m.runWatch(w)

	m.logger.Info("watching mailbox", "email", account.Email, "account_id", account.ID)
	return nil
}

// runWatch fetches the backlog once, then refetches on every IDLE wakeup.
func (m *Manager) runWatch(w *watch) {
	lastUID := w.account.LastUID

	m.fetchNewMessages(w, &lastUID)

	w.client.StartIDLE(w.ctx, func() {
		m.fetchNewMessages(w, &lastUID)
	})
}

// fetchNewMessages pulls everything above lastUID and hands each message to
// the handler, advancing lastUID as it goes.
func (m *Manager) fetchNewMessages(w *watch, lastUID *uint32) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Reselect in case the connection was rebuilt since the last fetch.
	if _, err := w.client.SelectINBOX(ctx); err != nil {
		m.reportError(w.account.ID, err, "failed to select INBOX")
		return
	}

	messages, err := w.client.FetchNewMessages(ctx, *lastUID)
	if err != nil {
		m.reportError(w.account.ID, err, "failed to fetch messages")
		return
	}

	for _, msg := range messages {
		if m.onMessage != nil {
			m.onMessage(w.account.ID, msg)
		}
		if msg.UID > *lastUID {
			*lastUID = msg.UID
		}
	}
}

func (m *Manager) reportError(accountID int64, err error, msg string) {
	m.logger.Error(msg, "error", err, "account_id", accountID)
	if m.onError != nil {
		m.onError(accountID, err)
	}
}

// RemoveAccount stops watching a mailbox.
func (m *Manager) RemoveAccount(accountID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, exists := m.clients[accountID]
	if !exists {
		return nil
	}

	w.cancel()
	w.client.Stop()
	delete(m.clients, accountID)

	m.logger.Info("stopped watching mailbox", "account_id", accountID)
	return nil
}

// GetStatus returns "connected", "reconnecting" or "disconnected".
func (m *Manager) GetStatus(accountID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, exists := m.clients[accountID]
	if !exists {
		return "disconnected"
	}
	if w.client.IsConnected() {
		return "connected"
	}
	return "reconnecting"
}

// MarkAsRead sets the \Seen flag on a message in the mailbox.
func (m *Manager) MarkAsRead(accountID int64, uid uint32) error {
	m.mu.RLock()
	w, exists := m.clients[accountID]
	m.mu.RUnlock()

	if !exists {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return w.client.MarkAsRead(ctx, uid)
}

// DeleteMessage deletes a message from the mailbox.
func (m *Manager) DeleteMessage(accountID int64, uid uint32) error {
	m.mu.RLock()
	w, exists := m.clients[accountID]
	m.mu.RUnlock()

	if !exists {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return w.client.DeleteMessage(ctx, uid)
}

// RestoreAll reconnects the given accounts in parallel and waits for all of
// them. Failures are logged and skipped so one bad mailbox does not block
// startup.
func (m *Manager) RestoreAll(ctx context.Context, accounts []*models.EmailAccount) {
	var wg sync.WaitGroup
	for _, account := range accounts {
		wg.Add(1)
		go func(acc *models.EmailAccount) {
			defer wg.Done()
			if err := m.AddAccount(ctx, acc); err != nil {
				m.logger.Error("failed to restore account", "email", acc.Email, "error", err)
			}
		}(account)
	}
	wg.Wait()

	m.logger.Info("restored email accounts", "count", len(accounts))
}

// StopAll stops every watch. Used on shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, w := range m.clients {
		w.cancel()
		w.client.Stop()
		delete(m.clients, id)
	}

	m.logger.Info("all email clients stopped")
}
