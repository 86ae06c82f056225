package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, "data/fintrack.db", c.DBDSN)
	assert.Equal(t, 30*time.Second, c.HTTPTimeout)
	assert.Equal(t, 90, c.SyncWindowDays)
	assert.Equal(t, 25, c.PayDay)
	assert.Equal(t, 20, c.ChatHistoryLimit)
	assert.Equal(t, "https://openapi.investec.com/za/pb/v1", c.APIBaseURL())
}

func TestAPIBaseURL(t *testing.T) {
	tests := []struct {
		base, prefix, want string
	}{
		{"https://h/", "/v1/", "https://h/v1"},
		{"https://h", "v1", "https://h/v1"},
		{"https://h/", "", "https://h"},
	}
	for _, tt := range tests {
		c := Config{BankBaseURL: tt.base, BankAPIPrefix: tt.prefix}
		assert.Equal(t, tt.want, c.APIBaseURL())
	}
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}

	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}
