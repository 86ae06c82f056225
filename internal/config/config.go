package config

import (
	"strings"
	"time"
)

// Config holds runtime settings for the fintrack CLI.
type Config struct {
	DBDriver string
	DBDSN    string

	BankBaseURL   string
	BankAPIPrefix string
	BankRateLimit float64
	HTTPTimeout   time.Duration

	SyncWindowDays int
	PayDay         int

	LLMModel         string
	ChatHistoryLimit int

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBDriver = "sqlite"
	c.DBDSN = "data/fintrack.db"
	c.BankBaseURL = "https://openapi.investec.com"
	c.BankAPIPrefix = "/za/pb/v1"
	c.BankRateLimit = 5
	c.HTTPTimeout = 30 * time.Second
	c.SyncWindowDays = 90
	c.PayDay = 25
	c.LLMModel = "gemini-2.5-flash"
	c.ChatHistoryLimit = 20
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// APIBaseURL joins the base URL and the path prefix.
func (c *Config) APIBaseURL() string {
	prefix := strings.Trim(c.BankAPIPrefix, "/")
	base := strings.TrimRight(c.BankBaseURL, "/")
	if prefix == "" {
		return base
	}
	return base + "/" + prefix
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
