package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	GeminiAPIKey   string        `env:"GEMINI_API_KEY,required,notEmpty"`
	GeminiModel    string        `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`
	SaveDir        string        `env:"SAVE_DIR" envDefault:".saves"`
	Store          string        `env:"STORE" envDefault:"file"`
	DBPath         string        `env:"DB_PATH" envDefault:".saves/city-quest.db"`
	ProfileID      string        `env:"PROFILE_ID" envDefault:"default"`
	PlayerName     string        `env:"PLAYER_NAME"`
	PlayerAge      int           `env:"PLAYER_AGE"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat      string        `env:"LOG_FORMAT" envDefault:"json"`
	LogFile        string        `env:"LOG_FILE"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":8080"`
	MaxToolSteps   int           `env:"MAX_TOOL_STEPS" envDefault:"5"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"60s"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if cfg.MaxToolSteps < 1 {
		return nil, fmt.Errorf("MAX_TOOL_STEPS must be at least 1, got %d", cfg.MaxToolSteps)
	}
	if cfg.PlayerAge < 0 {
		return nil, fmt.Errorf("PLAYER_AGE must not be negative, got %d", cfg.PlayerAge)
	}
	return &cfg, nil
}

// StorePath is the path handed to storage.Open for the configured store.
func (c *Config) StorePath() string {
	if c.Store == "sqlite" {
		return c.DBPath
	}
	return c.SaveDir
}
