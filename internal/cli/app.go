package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/dmitrijs2005/fintrack/internal/bank"
	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/config"
	"github.com/dmitrijs2005/fintrack/internal/llm"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/models"
	"github.com/dmitrijs2005/fintrack/internal/secrets"
	"github.com/dmitrijs2005/fintrack/internal/services"
	"github.com/dmitrijs2005/fintrack/internal/storage"
	"go.uber.org/multierr"
)

// maxUnlockAttempts bounds passphrase retries at startup.
const maxUnlockAttempts = 3

// bankReader is the part of the bank client used directly by commands.
type bankReader interface {
	Accounts(ctx context.Context) ([]models.Account, error)
	Balance(ctx context.Context, accountID string) (*models.Balance, error)
}

// App owns every collaborator of the shell.
type App struct {
	out    io.Writer
	reader *bufio.Reader
	logger logging.Logger

	auth         services.AuthService
	bank         bankReader
	sync         services.SyncService
	analytics    services.AnalyticsService
	insight      services.ContextBuilder
	transactions services.TransactionService
	categories   services.CategoryService
	secrets      services.SecretStore

	// newChat builds the chat service on first use, once an LLM key exists.
	newChat func(ctx context.Context) (services.ChatService, error)
	chat    services.ChatService

	closers []io.Closer
}

// NewApp opens the store, unlocks the vault interactively and builds the
// service graph described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	store, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	if err := store.Init(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	a := &App{
		out:     os.Stdout,
		reader:  bufio.NewReader(os.Stdin),
		logger:  logger,
		closers: []io.Closer{store},
	}

	vault := secrets.NewVault(store.Metadata())
	if err := a.unlock(ctx, vault); err != nil {
		_ = a.Close()
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	exchanger := bank.NewExchanger(cfg.BankBaseURL, httpClient)
	auth := services.NewAuthService(exchanger, vault, logger)

	client := bank.NewClient(cfg.APIBaseURL(), httpClient, auth)
	client.SetRateLimit(cfg.BankRateLimit, 1)

	txs := store.Transactions()
	analytics := services.NewAnalyticsService(txs, cfg.PayDay)
	insight := services.NewInsightBuilder(analytics, txs)

	a.auth = auth
	a.bank = client
	a.sync = services.NewSyncService(store, services.NewFetcher(client, logger), txs, store.Metadata(),
		logger, cfg.SyncWindowDays)
	a.analytics = analytics
	a.insight = insight
	a.transactions = services.NewTransactionService(txs, store.Categories())
	a.categories = services.NewCategoryService(store.DB, store.Repos)
	a.secrets = vault
	a.newChat = func(ctx context.Context) (services.ChatService, error) {
		var key string
		ok, err := vault.Get(ctx, secrets.KeyLLMAPIKey, &key)
		if err != nil {
			return nil, fmt.Errorf("read LLM API key: %w", err)
		}
		if !ok {
			return nil, errors.New("no LLM API key stored, run setkey")
		}
		model, err := llm.NewGenAIModel(ctx, key, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return services.NewChatService(model, insight, logger, cfg.ChatHistoryLimit), nil
	}

	return a, nil
}

type unlocker interface {
	Initialized(ctx context.Context) (bool, error)
	Unlock(ctx context.Context, passphrase []byte) error
}

// unlock asks for the vault passphrase. A fresh vault takes the first
// passphrase entered as its own.
func (a *App) unlock(ctx context.Context, v unlocker) error {
	initialized, err := v.Initialized(ctx)
	if err != nil {
		return err
	}

	prompt := "Enter passphrase"
	if !initialized {
		fmt.Fprintln(a.out, "No secret store found, choose a passphrase to create one.")
		prompt = "New passphrase"
	}

	for attempt := 1; ; attempt++ {
		pass, err := getPassword(a.out, prompt)
		if err != nil {
			return err
		}
		err = v.Unlock(ctx, pass)
		common.WipeByteArray(pass)
		if err == nil {
			return nil
		}
		if !errors.Is(err, common.ErrWrongPassphrase) || attempt >= maxUnlockAttempts {
			return err
		}
		fmt.Fprintln(a.out, "Wrong passphrase, try again.")
	}
}

// Run starts the REPL on stdin and releases resources when it ends.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(ctx, "close failed", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "Welcome to fintrack (type 'help' for commands)")
	runREPL(ctx, a, a.reader)
}

// Close releases the store and anything else the app opened.
func (a *App) Close() error {
	var err error
	for _, c := range a.closers {
		err = multierr.Append(err, c.Close())
	}
	a.closers = nil
	return err
}
