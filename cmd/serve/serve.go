package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/sig-0/exchbot/cmd/env"
	"github.com/sig-0/exchbot/server/config"
)

var (
	errMissingBotToken = errors.New("missing " + env.Prefix + env.BotTokenSuffix)
	errMissingAdminID  = errors.New("missing " + env.Prefix + env.AdminIDSuffix)
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config *config.Config

	configPath      string
	refreshInterval time.Duration
}

// NewServeCmd creates the serve subcommand
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	cmd := &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve <subcommand> [flags]",
		LongHelp:   "Serves the exchbot backend",
		FlagSet:    fs,
		Exec: func(_ context.Context, _ []string) error {
			return flag.ErrHelp
		},
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}

	cmd.Subcommands = []*ffcli.Command{
		newServeSQLCmd(cfg),
		newServeMemoryCmd(cfg),
	}

	return cmd
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the API server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.DurationVar(
		&c.refreshInterval,
		"refresh-interval",
		0,
		"the automatic rate refresh interval (0 disables auto-refresh)",
	)
}

// loadServerConfig overrides the default server config from the
// config file, if one is set
func (c *serveCfg) loadServerConfig() error {
	if c.configPath == "" {
		return nil
	}

	serverCfg, err := config.Read(c.configPath)
	if err != nil {
		return fmt.Errorf("unable to read server config, %w", err)
	}

	c.config = serverCfg

	return nil
}

// botCredentials reads the bot token and the operator ID from
// the environment
func botCredentials() (string, int64, error) {
	token := os.Getenv(env.Prefix + env.BotTokenSuffix)
	if token == "" {
		return "", 0, errMissingBotToken
	}

	adminRaw := os.Getenv(env.Prefix + env.AdminIDSuffix)
	if adminRaw == "" {
		return "", 0, errMissingAdminID
	}

	adminID, err := strconv.ParseInt(adminRaw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid %s: %w", env.Prefix+env.AdminIDSuffix, err)
	}

	return token, adminID, nil
}
