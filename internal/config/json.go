package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
	"github.com/dmitrijs2005/fintrack/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell an absent key from a zero value.
type JsonConfig struct {
	DBDriver         *string         `json:"db_driver"`
	DBDSN            *string         `json:"db_dsn"`
	BankBaseURL      *string         `json:"bank_base_url"`
	BankAPIPrefix    *string         `json:"bank_api_prefix"`
	BankRateLimit    *float64        `json:"bank_rate_limit"`
	HTTPTimeout      *timex.Duration `json:"http_timeout"`
	SyncWindowDays   *int            `json:"sync_window_days"`
	PayDay           *int            `json:"pay_day"`
	LLMModel         *string         `json:"llm_model"`
	ChatHistoryLimit *int            `json:"chat_history_limit"`
	LogLevel         *string         `json:"log_level"`
	LogFormat        *string         `json:"log_format"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// parseJson overlays cfg with the file named by -c or -config. Without
// either flag nothing is loaded. Read and decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JSONConfigPath()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.DBDriver, jc.DBDriver)
	set(&cfg.DBDSN, jc.DBDSN)
	set(&cfg.BankBaseURL, jc.BankBaseURL)
	set(&cfg.BankAPIPrefix, jc.BankAPIPrefix)
	set(&cfg.BankRateLimit, jc.BankRateLimit)
	if jc.HTTPTimeout != nil {
		cfg.HTTPTimeout = jc.HTTPTimeout.Duration
	}
	set(&cfg.SyncWindowDays, jc.SyncWindowDays)
	set(&cfg.PayDay, jc.PayDay)
	set(&cfg.LLMModel, jc.LLMModel)
	set(&cfg.ChatHistoryLimit, jc.ChatHistoryLimit)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
}
