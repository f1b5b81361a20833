package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment with an
// optional .env file fallback.
type Config struct {
	DiscordToken   string        `env:"DISCORD_TOKEN"`
	StoragePath    string        `env:"STORAGE_PATH" envDefault:"data/turingbot.json"`
	ModulesPath    string        `env:"MODULES_PATH" envDefault:"modules.yml"`
	CommandPrefix  string        `env:"COMMAND_PREFIX" envDefault:"!"`
	ExecTimeout    time.Duration `env:"EXEC_TIMEOUT" envDefault:"30s"`
	DictionaryURL  string        `env:"DICTIONARY_URL" envDefault:"https://api.dictionaryapi.dev/api/v2/entries/en"`
}

// New loads the configuration. A missing .env file is fine; a missing
// DISCORD_TOKEN is not (the CLI entrypoint passes requireToken=false).
func New(requireToken bool) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using system environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if requireToken && cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set")
	}
	return &cfg, nil
}
