package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	Trade         TradeConfig   `yaml:"trade"`
}

// TradeConfig tunes the trade state machine.
type TradeConfig struct {
	// RequestTimeout is how long a pending trade request stays open before
	// the next touch reverts the match to pending.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("SKILLTRADE_ADDR", ":8080"),
		JWTSecret:     getEnv("SKILLTRADE_JWT_SECRET", "supersecretkey"),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("SKILLTRADE_DATABASE_PATH", "skilltrade.db"),
		TokenDuration: 1 * time.Hour,
		Trade: TradeConfig{
			RequestTimeout: 24 * time.Hour,
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the configuration for values that are unsafe outside
// development and fills remaining defaults.
func (c *Config) Validate() error {
	env := os.Getenv("SKILLTRADE_ENV")
	if c.JWTSecret == "" || c.JWTSecret == "supersecretkey" {
		if env != "development" {
			return fmt.Errorf("jwt_secret must be set to a strong value outside development")
		}
	}
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.APITimeout <= 0 {
		c.APITimeout = 15 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 1 * time.Hour
	}
	if c.Trade.RequestTimeout <= 0 {
		c.Trade.RequestTimeout = 24 * time.Hour
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
