package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "STUDY"

// DotEnvFile is loaded into the process environment before the config is read.
// A missing file is not an error.
var DotEnvFile = ".env"

type Config struct {
	ServerURL     string        `mapstructure:"SERVER_URL"`
	HTTPTimeout   time.Duration `mapstructure:"HTTP_TIMEOUT"`
	DatabasePath  string        `mapstructure:"DATABASE_PATH"`
	Token         string        `mapstructure:"TOKEN"`
	TickInterval  time.Duration `mapstructure:"TICK_INTERVAL"`
	SubmitTimeout time.Duration `mapstructure:"SUBMIT_TIMEOUT"`
	Debug         bool          `mapstructure:"DEBUG"`
}

// Load reads defaults, then path (or ./config.yaml when path is empty), then
// STUDY_* environment variables. An explicit path must exist.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	v := viper.New()
	v.SetDefault("SERVER_URL", "http://127.0.0.1:5000")
	v.SetDefault("HTTP_TIMEOUT", "60s")
	v.SetDefault("DATABASE_PATH", "./data/study-assistant.db")
	v.SetDefault("TOKEN", "")
	v.SetDefault("TICK_INTERVAL", "1s")
	v.SetDefault("SUBMIT_TIMEOUT", "10s")
	v.SetDefault("DEBUG", false)

	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	c.ServerURL = strings.TrimRight(strings.TrimSpace(c.ServerURL), "/")
	if c.ServerURL == "" {
		return errors.New("SERVER_URL is required")
	}
	if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		return fmt.Errorf("SERVER_URL must be an http(s) URL, got %q", c.ServerURL)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	if c.TickInterval <= 0 {
		return errors.New("TICK_INTERVAL must be positive")
	}
	if c.SubmitTimeout <= 0 {
		return errors.New("SUBMIT_TIMEOUT must be positive")
	}
	c.Token = strings.TrimSpace(c.Token)
	return nil
}
