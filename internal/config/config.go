package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const envVarPrefix = "BIOLINK"

type Config struct {
	Addr            string        `envconfig:"ADDR"             default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL"        default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT"       default:"json"`
	MaxConcurrency  int           `envconfig:"MAX_CONCURRENCY"  default:"0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads the configuration from BIOLINK_* environment variables.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process(envVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("missing required config: %s_ADDR", envVarPrefix)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q: want json or text", c.LogFormat)
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("invalid max concurrency %d: must not be negative", c.MaxConcurrency)
	}
	return nil
}

// ParseLevel maps debug, info, warn and error to their slog levels.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return l, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return l, nil
}

// NewLogger builds the application logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.ToLower(c.LogFormat) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
