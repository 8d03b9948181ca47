// Package config loads process configuration from the environment
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the server configuration
type Config struct {
	Port           int           `env:"PORT"            envDefault:"8080"`
	DBPath         string        `env:"DB_PATH"         envDefault:"./dtwiki.db"`
	DataDir        string        `env:"DATA_DIR"        envDefault:"./data"`
	StaticDir      string        `env:"STATIC_DIR"      envDefault:"./frontend/dist"`
	RedisAddr      string        `env:"REDIS_ADDR"`
	DraftTTL       time.Duration `env:"DRAFT_TTL"       envDefault:"720h"`
	AutosaveDelay  time.Duration `env:"AUTOSAVE_DELAY"  envDefault:"500ms"`
	IssueRepoURL   string        `env:"ISSUE_REPO_URL"  envDefault:"https://github.com/meur/dtwiki"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000" envSeparator:","`
	AssetManifest  string        `env:"ASSET_MANIFEST"`
	AssetBaseURL   string        `env:"ASSET_BASE_URL"  envDefault:"/assets"`
}

// Validate checks values the env parser cannot
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT %d is out of range", c.Port)
	}
	if c.DraftTTL < 0 {
		return fmt.Errorf("DRAFT_TTL cannot be negative")
	}
	if c.AutosaveDelay < 0 {
		return fmt.Errorf("AUTOSAVE_DELAY cannot be negative")
	}
	return nil
}

// SuggestConfig is the suggestion processor configuration, read from the
// workflow environment
type SuggestConfig struct {
	EventPath  string `env:"GITHUB_EVENT_PATH"`
	OutputPath string `env:"GITHUB_OUTPUT"`
	DataDir    string `env:"DATA_DIR" envDefault:"./data"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses and validates the server configuration
func Load() (*Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
