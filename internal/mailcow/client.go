// Package mailcow provisions mailboxes through the Mailcow admin API. It
// backs the /create command, the account-management side of the tool.
package mailcow

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"
)

// Client is a Mailcow API client.
type Client struct {
	baseURL    string
	apiKey     string
	domain     string
	httpClient *http.Client
}

// Config for Mailcow client.
type Config struct {
	BaseURL string // e.g., https://mail.example.com
	APIKey  string
	Domain  string // default domain for new mailboxes
}

// Mailbox represents a provisioned mailbox.
type Mailbox struct {
	LocalPart string `json:"local_part"`
	Domain    string `json:"domain"`
	Name      string `json:"name"`
	Password  string `json:"password,omitempty"`
	Quota     int    `json:"quota"` // MB
	Active    bool   `json:"active"`
}

// createMailboxRequest is the add/mailbox payload.
type createMailboxRequest struct {
	LocalPart     string `json:"local_part"`
	Domain        string `json:"domain"`
	Name          string `json:"name"`
	Password      string `json:"password"`
	Password2     string `json:"password2"`
	Quota         int    `json:"quota"`
	Active        int    `json:"active"`
	ForcePWUpdate int    `json:"force_pw_update"`
	TLSEnforceIn  int    `json:"tls_enforce_in"`
	TLSEnforceOut int    `json:"tls_enforce_out"`
	SOGoAccess    int    `json:"sogo_access"`
	IMAPAccess    int    `json:"imap_access"`
	POPAccess     int    `json:"pop3_access"`
	SMTPAccess    int    `json:"smtp_access"`
}

// apiResponse is the generic Mailcow response element.
type apiResponse struct {
	Type string        `json:"type"`
	Log  []interface{} `json:"log"`
	Msg  []string      `json:"msg"`
}

// NewClient creates a new Mailcow API client.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		domain:  cfg.Domain,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured returns true if Mailcow integration is configured.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.apiKey != "" && c.domain != ""
}

// GetDomain returns the configured domain.
func (c *Client) GetDomain() string {
	return c.domain
}

// CreateMailbox creates a new mailbox. An empty password means "generate
// one"; the generated password is returned in the Mailbox.
func (c *Client) CreateMailbox(ctx context.Context, localPart, name, password string, quotaMB int) (*Mailbox, error) {
	if !c.IsConfigured() {
		return nil, fmt.Errorf("mailcow not configured")
	}

	if password == "" {
		var err error
		password, err = GenerateSecurePassword(16)
		if err != nil {
			return nil, fmt.Errorf("failed to generate password: %w", err)
		}
	}

	// Default quota 1GB
	if quotaMB <= 0 {
		quotaMB = 1024
	}

	req := createMailboxRequest{
		LocalPart:     localPart,
		Domain:        c.domain,
		Name:          name,
		Password:      password,
		Password2:     password,
		Quota:         quotaMB,
		Active:        1,
		TLSEnforceIn:  1,
		TLSEnforceOut: 1,
		SOGoAccess:    1,
		IMAPAccess:    1,
		POPAccess:     1,
		SMTPAccess:    1,
	}

	if err := c.post(ctx, "/api/v1/add/mailbox", req); err != nil {
		return nil, err
	}

	return &Mailbox{
		LocalPart: localPart,
		Domain:    c.domain,
		Name:      name,
		Password:  password,
		Quota:     quotaMB,
		Active:    true,
	}, nil
}

// DeleteMailbox deletes a mailbox.
func (c *Client) DeleteMailbox(ctx context.Context, email string) error {
	if !c.IsConfigured() {
		return fmt.Errorf("mailcow not configured")
	}
	return c.post(ctx, "/api/v1/delete/mailbox", []string{email})
}

// post sends an authenticated request and checks the Mailcow status array.
func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API error: %s (status %d)", string(respBody), resp.StatusCode)
	}

	// Mailcow returns an array of per-item responses
	var items []apiResponse
	if err := json.Unmarshal(respBody, &items); err != nil {
		return fmt.Errorf("failed to parse response: %w (body: %s)", err, string(respBody))
	}
	if len(items) == 0 {
		return fmt.Errorf("empty response from API")
	}
	if items[0].Type != "success" {
		errMsg := "unknown error"
		if len(items[0].Msg) > 0 {
			errMsg = items[0].Msg[0]
		}
		return fmt.Errorf("API error: %s", errMsg)
	}

	return nil
}

// GenerateSecurePassword generates a cryptographically secure password.
func GenerateSecurePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*"

	password := make([]byte, length)
	for i := range password {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		password[i] = charset[num.Int64()]
	}

	return string(password), nil
}

// GetIMAPServer returns the IMAP endpoint for the Mailcow host.
func (c *Client) GetIMAPServer() string {
	host := strings.TrimPrefix(c.baseURL, "https://")
	host = strings.TrimPrefix(host, "http://")
	return host + ":993"
}
