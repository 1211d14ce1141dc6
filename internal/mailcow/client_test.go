package mailcow

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Domain:  "example.com",
	})
}

func TestCreateMailbox_Success(t *testing.T) {
	var gotReq createMailboxRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/add/mailbox", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode([]apiResponse{{Type: "success"}})
	})

	mb, err := c.CreateMailbox(context.Background(), "alice", "Alice", "s3cret-pass-123", 0)
	require.NoError(t, err)

	assert.Equal(t, "alice", mb.LocalPart)
	assert.Equal(t, "example.com", mb.Domain)
	assert.Equal(t, "s3cret-pass-123", mb.Password)
	assert.Equal(t, 1024, mb.Quota, "default quota")
	assert.Equal(t, "alice", gotReq.LocalPart)
	assert.Equal(t, gotReq.Password, gotReq.Password2)
}

func TestCreateMailbox_GeneratesPassword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]apiResponse{{Type: "success"}})
	})

	mb, err := c.CreateMailbox(context.Background(), "bob", "Bob", "", 512)
	require.NoError(t, err)
	assert.Len(t, mb.Password, 16)
}

func TestCreateMailbox_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]apiResponse{{Type: "danger", Msg: []string{"mailbox exists"}}})
	})

	_, err := c.CreateMailbox(context.Background(), "alice", "Alice", "pw-long-enough", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mailbox exists")
}

func TestDeleteMailbox(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/delete/mailbox", r.URL.Path)
		json.NewEncoder(w).Encode([]apiResponse{{Type: "success"}})
	})

	assert.NoError(t, c.DeleteMailbox(context.Background(), "alice@example.com"))
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(Config{})

	assert.False(t, c.IsConfigured())
	_, err := c.CreateMailbox(context.Background(), "a", "a", "", 0)
	assert.Error(t, err)
	assert.Error(t, c.DeleteMailbox(context.Background(), "a@b.c"))
}

func TestGetIMAPServer(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://mail.example.com/", APIKey: "k", Domain: "example.com"})
	assert.Equal(t, "mail.example.com:993", c.GetIMAPServer())
}

func TestGenerateSecurePassword(t *testing.T) {
	a, err := GenerateSecurePassword(24)
	require.NoError(t, err)
	b, err := GenerateSecurePassword(24)
	require.NoError(t, err)

	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
}
