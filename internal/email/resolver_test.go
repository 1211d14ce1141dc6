package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveIMAPServer_KnownProviders(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"user@gmail.com", "imap.gmail.com:993"},
		{"user@QQ.com", "imap.qq.com:993"},
		{"user@163.com", "imap.163.com:993"},
		{"user@outlook.com", "outlook.office365.com:993"},
	}

	for _, tt := range tests {
		server, err := ResolveIMAPServer(tt.email)
		require.NoError(t, err)
		assert.Equal(t, tt.want, server)
	}
}

func TestResolveIMAPServer_InvalidAddress(t *testing.T) {
	_, err := ResolveIMAPServer("not-an-email")
	assert.Error(t, err)
}

func TestGetDomainFromEmail(t *testing.T) {
	assert.Equal(t, "example.com", GetDomainFromEmail("a@Example.COM"))
	assert.Equal(t, "", GetDomainFromEmail("bad"))
	assert.Equal(t, "", GetDomainFromEmail("a@b@c"))
}
