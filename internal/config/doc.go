// Package config loads runtime configuration for the fintrack CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   database driver (sqlite or pgx)
//	-dsn string database DSN or file path
//	-b string   banking API base URL
//	-p string   banking API path prefix
//	-r float    banking API requests per second
//	-t int      HTTP timeout (seconds)
//	-w int      sync window (days)
//	-payday int day of month salaries arrive
//	-m string   LLM model name
//	-l string   log level
//	-f string   log format (text, json, console)
//
// # JSON schema
//
//	{
//	  "db_driver": "sqlite",
//	  "db_dsn": "data/fintrack.db",
//	  "bank_base_url": "https://openapi.investec.com",
//	  "bank_api_prefix": "/za/pb/v1",
//	  "bank_rate_limit": 5,
//	  "http_timeout": "30s",
//	  "sync_window_days": 90,
//	  "pay_day": 25,
//	  "llm_model": "gemini-2.5-flash",
//	  "chat_history_limit": 20,
//	  "log_level": "info",
//	  "log_format": "text"
//	}
//
// http_timeout is a timex.Duration: a Go duration string or integer
// nanoseconds. Keys missing from the file keep their default.
package config
