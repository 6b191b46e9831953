package serve

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/exchbot/bot"
	"github.com/sig-0/exchbot/cmd/env"
	"github.com/sig-0/exchbot/refresh"
	"github.com/sig-0/exchbot/server"
	"github.com/sig-0/exchbot/storage/memory"
)

type serveMemoryCfg struct {
	rootCfg *serveCfg
}

// newServeMemoryCmd creates the serve memory command
func newServeMemoryCmd(rootCfg *serveCfg) *ffcli.Command {
	cfg := &serveMemoryCfg{
		rootCfg: rootCfg,
	}

	fs := flag.NewFlagSet("memory", flag.ExitOnError)
	cfg.rootCfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "memory",
		ShortUsage: "serve memory [flags]",
		LongHelp:   "Serves the exchbot backend, using an in-memory datastore",
		FlagSet:    fs,
		Exec:       cfg.exec,
		Options: []ff.Option{
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveMemoryCfg) exec(ctx context.Context, _ []string) error {
	// Read the server configuration, if any
	if err := c.rootCfg.loadServerConfig(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// Load .env
	if err := godotenv.Load(); err != nil {
		logger.Warn("unable to load .env file")
	}

	token, adminID, err := botCredentials()
	if err != nil {
		return err
	}

	// Create an in-memory store
	store := memory.NewStorage()

	// Create the refresh service
	refresher := refresh.New(store, adminID, refresh.WithLogger(logger))
	for _, p := range defaultProviders(logger) {
		if err := refresher.Register(p); err != nil {
			return fmt.Errorf("unable to register provider: %w", err)
		}
	}

	// Create the Telegram bot
	b, err := bot.New(token, store, refresher, bot.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("unable to create bot, %w", err)
	}

	// Create the server instance
	s, err := server.New(
		store,
		refresher,
		server.WithLogger(logger),
		server.WithConfig(c.rootCfg.config),
	)
	if err != nil {
		return fmt.Errorf("unable to create server, %w", err)
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	// Start the bot
	group.Go(func() error {
		return b.Start(gCtx)
	})

	// Start the auto-refresh scheduler, if enabled
	if c.rootCfg.refreshInterval > 0 {
		scheduler, err := refresh.NewScheduler(refresher, c.rootCfg.refreshInterval)
		if err != nil {
			return fmt.Errorf("unable to create scheduler, %w", err)
		}

		group.Go(func() error {
			return scheduler.Start(gCtx)
		})
	}

	return group.Wait()
}
