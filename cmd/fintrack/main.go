package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/fintrack/internal/buildinfo"
	"github.com/dmitrijs2005/fintrack/internal/cli"
	"github.com/dmitrijs2005/fintrack/internal/config"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

func loadConfig() (cfg *config.Config) {
	defer func() {
		if r := recover(); r != nil {
			log.Fatalf("invalid configuration: %v", r)
		}
	}()
	return config.LoadConfig()
}

type runner interface {
	Run(ctx context.Context)
}

type appFactory func(ctx context.Context, cfg *config.Config, logger logging.Logger) (runner, error)

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (runner, error) {
	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// run owns the signal context so that its deferred stop also runs when the
// app cannot be built.
func run(cfg *config.Config, logger logging.Logger, build appFactory) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	app.Run(ctx)
	return nil
}

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg := loadConfig()

	logger, err := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := run(cfg, logger, newApp); err != nil {
		log.Fatalf("%v", err)
	}

}
