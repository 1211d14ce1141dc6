package email

import (
	"log/slog"
	"time"

	"github.com/emersion/go-imap/client"
)

// defaultPollInterval is used when no poll interval is configured.
const defaultPollInterval = 15 * time.Second

// IdleClient wraps an IMAP client with new-mail waiting. IMAP IDLE support
// is flaky across providers, so it waits by polling.
type IdleClient struct {
	client *client.Client
	logger *slog.Logger
}

// NewIdleClient creates a new IDLE client.
func NewIdleClient(c *client.Client, logger *slog.Logger) *IdleClient {
	return &IdleClient{client: c, logger: logger}
}

// IdleWithFallback waits one poll interval or until stop is closed.
func (ic *IdleClient) IdleWithFallback(stop <-chan struct{}, interval time.Duration) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ic.logger.Debug("polling for new mail", "interval", interval)

	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-stop:
		return nil
	case <-timer.C:
		return nil
	}
}
