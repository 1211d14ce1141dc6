package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"

	"github.com/ashmarin/codemail/pkg/models"
)

const defaultDialTimeout = 30 * time.Second

var errNotConnected = errors.New("not connected")

// RawEmail is one fetched message before rendering and code extraction.
type RawEmail struct {
	UID         uint32
	MessageID   string
	From        *Address
	Subject     string
	Date        time.Time
	BodyHTML    string
	BodyText    string
	ContentType string // "html" when an HTML part is present, else "text"
}

// Address is a parsed sender address.
type Address struct {
	Name    string
	Address string
}

// ClientConfig holds the connection settings for one mailbox.
type ClientConfig struct {
	Email        string
	Password     string
	Server       string // host:port
	IdleTimeout  time.Duration
	DialTimeout  time.Duration
	PollInterval time.Duration
}

// Client is an IMAP connection to a single mailbox. All methods are safe for
// concurrent use; the mutex also guards the reconnect dance in StartIDLE.
type Client struct {
	config    ClientConfig
	client    *client.Client
	logger    *slog.Logger
	mu        sync.Mutex
	connected bool
	stopCh    chan struct{}
	stopped   bool
}

// NewClient creates a client. It does not connect.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	return &Client{
		config: cfg,
		logger: logger.With("email", cfg.Email),
		stopCh: make(chan struct{}),
	}
}

// Connect dials the server over TLS and logs in. Connecting twice is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return nil
	}

	c.logger.Info("connecting to IMAP server", "server", c.config.Server)

	timeout := c.config.DialTimeout
	if timeout == 0 {
		timeout = defaultDialTimeout
	}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: timeout}, "tcp", c.config.Server, nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	imapClient, err := client.New(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create IMAP client: %w", err)
	}

	if err := imapClient.Login(c.config.Email, c.config.Password); err != nil {
		imapClient.Logout()
		return fmt.Errorf("failed to login: %w", err)
	}

	c.client = imapClient
	c.connected = true
	c.logger.Info("connected to IMAP server")

	return nil
}

// conn returns the live connection. Callers must hold c.mu.
func (c *Client) conn() (*client.Client, error) {
	if !c.connected || c.client == nil {
		return nil, errNotConnected
	}
	return c.client, nil
}

// SelectINBOX selects INBOX read-write.
func (c *Client) SelectINBOX(ctx context.Context) (*imap.MailboxStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	imapClient, err := c.conn()
	if err != nil {
		return nil, err
	}

	mbox, err := imapClient.Select("INBOX", false)
	if err != nil {
		return nil, fmt.Errorf("failed to select INBOX: %w", err)
	}
	return mbox, nil
}

// FetchNewMessages fetches every message with UID above sinceUID. Messages
// that fail to parse are logged and skipped.
func (c *Client) FetchNewMessages(ctx context.Context, sinceUID uint32) ([]*RawEmail, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	imapClient, err := c.conn()
	if err != nil {
		return nil, err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddRange(sinceUID+1, 0) // 0 = *

	section := &imap.BodySectionName{}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, imap.FetchBody, section.FetchItem()}

	messages := make(chan *imap.Message, 100)
	done := make(chan error, 1)
	go func() {
		done <- imapClient.UidFetch(seqSet, items, messages)
	}()

	var emails []*RawEmail
	for msg := range messages {
		raw, err := c.toRawEmail(msg, section)
		if err != nil {
			c.logger.Warn("failed to parse message", "uid", msg.Uid, "error", err)
			continue
		}
		emails = append(emails, raw)
	}

	if err := <-done; err != nil {
		return emails, fmt.Errorf("failed to fetch: %w", err)
	}
	return emails, nil
}

// toRawEmail converts a fetched IMAP message into a RawEmail.
func (c *Client) toRawEmail(msg *imap.Message, section *imap.BodySectionName) (*RawEmail, error) {
	raw := &RawEmail{
		UID:  msg.Uid,
		From: &Address{},
	}

	if env := msg.Envelope; env != nil {
		raw.Subject = env.Subject
		raw.Date = env.Date
		raw.MessageID = env.MessageId
		if len(env.From) > 0 {
			raw.From = &Address{
				Name:    env.From[0].PersonalName,
				Address: env.From[0].Address(),
			}
		}
	}

	if body := msg.GetBody(section); body != nil {
		c.readBodyParts(raw, body)
	}

	raw.ContentType = models.ContentTypeText
	if raw.BodyHTML != "" {
		raw.ContentType = models.ContentTypeHTML
	}

	return raw, nil
}

// readBodyParts walks the MIME parts and keeps the first text/html and
// text/plain bodies it finds.
func (c *Client) readBodyParts(raw *RawEmail, body io.Reader) {
	mr, err := mail.CreateReader(body)
	if err != nil {
		c.logger.Warn("failed to create mail reader", "error", err)
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return
		}
		if err != nil {
			c.logger.Warn("failed to read part", "error", err)
			return
		}

		header, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			continue
		}

		contentType, _, _ := header.ContentType()
		content, err := io.ReadAll(part.Body)
		if err != nil {
			continue
		}

		switch {
		case strings.HasPrefix(contentType, "text/html"):
			raw.BodyHTML = string(content)
		case strings.HasPrefix(contentType, "text/plain"):
			raw.BodyText = string(content)
		}
	}
}

// setFlag adds a flag to one message by UID.
func (c *Client) setFlag(uid uint32, flag string) error {
	imapClient, err := c.conn()
	if err != nil {
		return err
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uid)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	return imapClient.UidStore(seqSet, item, []interface{}{flag}, nil)
}

// MarkAsRead adds the \Seen flag to a message.
func (c *Client) MarkAsRead(ctx context.Context, uid uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setFlag(uid, imap.SeenFlag); err != nil {
		return fmt.Errorf("failed to mark as read: %w", err)
	}
	return nil
}

// DeleteMessage adds the \Deleted flag and expunges.
func (c *Client) DeleteMessage(ctx context.Context, uid uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.setFlag(uid, imap.DeletedFlag); err != nil {
		return fmt.Errorf("failed to mark as deleted: %w", err)
	}

	if err := c.client.Expunge(nil); err != nil {
		return fmt.Errorf("failed to expunge: %w", err)
	}
	return nil
}

// StartIDLE runs the notification loop until the context is cancelled or the
// client is stopped. onNewMail is called after every IDLE wakeup or poll
// tick; on connection errors the loop reconnects and keeps going.
func (c *Client) StartIDLE(ctx context.Context, onNewMail func()) error {
	c.logger.Info("starting IDLE loop")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			return nil
		default:
		}

		if err := c.ensureConnected(ctx); err != nil {
			c.logger.Error("failed to reconnect", "error", err)
			time.Sleep(10 * time.Second)
			continue
		}

		c.mu.Lock()
		if c.client == nil {
			c.mu.Unlock()
			continue
		}
		idleClient := NewIdleClient(c.client, c.logger)
		c.mu.Unlock()

		stopIdle := make(chan struct{})
		idleDone := make(chan error, 1)
		go func() {
			idleDone <- idleClient.IdleWithFallback(stopIdle, c.config.PollInterval)
		}()

		select {
		case <-ctx.Done():
			close(stopIdle)
			return ctx.Err()
		case <-c.stopCh:
			close(stopIdle)
			return nil
		case err := <-idleDone:
			if err != nil {
				c.logger.Warn("IDLE error", "error", err)
				c.dropConnection()
				time.Sleep(5 * time.Second)
				continue
			}
		}

		onNewMail()
	}
}

// ensureConnected reconnects and reselects INBOX if the connection is down.
func (c *Client) ensureConnected(ctx context.Context) error {
	c.mu.Lock()
	_, err := c.conn()
	c.mu.Unlock()
	if err == nil {
		return nil
	}

	if err := c.Connect(ctx); err != nil {
		return err
	}
	if _, err := c.SelectINBOX(ctx); err != nil {
		return err
	}
	return nil
}

// dropConnection tears down a broken connection so the IDLE loop redials.
func (c *Client) dropConnection() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.connected = false
	if c.client != nil {
		c.client.Logout()
		c.client = nil
	}
}

// Stop shuts the client down. The logout runs in the background with a short
// deadline so a dead server cannot block shutdown.
func (c *Client) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	imapClient := c.client
	c.client = nil
	c.connected = false
	c.mu.Unlock()

	close(c.stopCh)

	if imapClient == nil {
		return
	}
	go func() {
		done := make(chan struct{})
		go func() {
			imapClient.Logout()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			imapClient.Terminate()
		}
	}()
}

// IsConnected reports whether the client has a live connection.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}
