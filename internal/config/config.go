// Package config loads bot configuration from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full bot configuration.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`

	// Prefix triggers text commands in ordinary messages.
	Prefix string `env:"COMMAND_PREFIX" envDefault:"!"`

	// StoragePath is the JSON datastore file.
	StoragePath string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	// InitSlashCommands registers the slash-command tree with Discord on
	// startup. Turn off during rapid local iteration to avoid rate limits.
	InitSlashCommands bool `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	// GuildBlacklist lists guild ids the bot refuses to serve.
	GuildBlacklist []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`

	// InteractionTimeout is the default await deadline for buttons, menus and
	// modals.
	InteractionTimeout time.Duration `env:"INTERACTION_TIMEOUT" envDefault:"5m"`
}

// New loads the configuration. A missing .env file is not an error.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using system environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}
