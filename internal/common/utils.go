package common

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dtnitsch/sweep-schedules/models"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// Exit codes.
const (
	ExitPartial = 1
	ExitFailure = 2
)

// LoadConfig loads the config file named by --config and applies the
// command-line overrides that are set.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}

	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("invalid-dir") {
		cfg.InvalidDir = c.String("invalid-dir")
	}
	if c.IsSet("assets") {
		cfg.AssetsFile = c.String("assets")
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewLogger builds the process logger. --quiet forces error level.
func NewLogger(c *cli.Context, cfg models.LogConfig) *slog.Logger {
	return newLogger(os.Stderr, cfg, c.Bool("quiet"))
}

func newLogger(w io.Writer, cfg models.LogConfig, quiet bool) *slog.Logger {
	logLevel := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	if quiet {
		logLevel = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if strings.ToLower(cfg.Format) == "text" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Output writes v to stdout as yaml (default) or json. Values without a
// table rendering fall back to yaml.
func Output(c *cli.Context, v interface{}) error {
	return write(os.Stdout, c.String("format"), v)
}

func write(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "", "yaml", "table":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to write yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
