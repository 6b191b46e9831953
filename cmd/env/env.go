// Package env holds the environment variable names shared
// across subcommands
package env

const (
	// Prefix is the common env var prefix
	Prefix = "EXCHBOT_"

	// DBURLSuffix carries the postgres connection string
	DBURLSuffix = "DB_URL"

	// BotTokenSuffix carries the Telegram bot API token
	BotTokenSuffix = "BOT_TOKEN"

	// AdminIDSuffix carries the privileged operator's Telegram ID
	AdminIDSuffix = "ADMIN_ID"
)
