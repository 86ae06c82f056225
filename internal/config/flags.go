package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
)

var knownFlags = []string{"-d", "-dsn", "-b", "-p", "-r", "-t", "-w", "-payday", "-m", "-l", "-f"}

// parseFlags populates cfg from command-line flags. os.Args is filtered to
// the flags handled here so that -c/-config does not trip the parser.
// Parse errors and out-of-range values panic.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DBDriver, "d", cfg.DBDriver, "database driver (sqlite or pgx)")
	fs.StringVar(&cfg.DBDSN, "dsn", cfg.DBDSN, "database DSN or sqlite file path")
	fs.StringVar(&cfg.BankBaseURL, "b", cfg.BankBaseURL, "banking API base URL")
	fs.StringVar(&cfg.BankAPIPrefix, "p", cfg.BankAPIPrefix, "banking API path prefix")
	fs.Float64Var(&cfg.BankRateLimit, "r", cfg.BankRateLimit, "banking API requests per second (0 disables the limit)")
	timeout := fs.Int("t", int(cfg.HTTPTimeout.Seconds()), "HTTP timeout (in seconds)")
	fs.IntVar(&cfg.SyncWindowDays, "w", cfg.SyncWindowDays, "sync window (in days)")
	fs.IntVar(&cfg.PayDay, "payday", cfg.PayDay, "day of month salaries arrive")
	fs.StringVar(&cfg.LLMModel, "m", cfg.LLMModel, "LLM model name")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "f", cfg.LogFormat, "log format (text, json, console)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.HTTPTimeout = time.Duration(*timeout) * time.Second

	if cfg.PayDay < 1 || cfg.PayDay > 31 {
		panic(fmt.Sprintf("pay day must be within 1..31, got %d", cfg.PayDay))
	}
	if cfg.SyncWindowDays < 1 {
		panic(fmt.Sprintf("sync window must be positive, got %d", cfg.SyncWindowDays))
	}
}
