// Package models defines data structures for configuration and parsing.
package models

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for building and serving sweep data.
// Values come from the YAML file, then the environment, then CLI flags.
type Config struct {
	DataDir    string `yaml:"data_dir"`
	InvalidDir string `yaml:"invalid_dir"`
	AssetsFile string `yaml:"assets_file"`
	Workers    int    `yaml:"workers"`
	Timezone   string `yaml:"timezone"`

	Watermark  WatermarkConfig `yaml:"watermark"`
	Cache      CacheConfig     `yaml:"cache"`
	Server     ServerConfig    `yaml:"server"`
	Tolerances ToleranceConfig `yaml:"tolerances"`
	Database   DatabaseConfig  `yaml:"database"`
	AMQP       AMQPConfig      `yaml:"amqp"`
	Log        LogConfig       `yaml:"log"`
}

type WatermarkConfig struct {
	Mode string `yaml:"mode"` // "file" or "db"
	Path string `yaml:"path"`
	// AdvanceOnPartialFailure moves the watermark even when some documents failed.
	AdvanceOnPartialFailure bool `yaml:"advance_on_partial_failure"`
}

type CacheConfig struct {
	Dir string        `yaml:"dir"`
	TTL time.Duration `yaml:"ttl"`
}

type ServerConfig struct {
	Port         int  `yaml:"port"`
	BuildOnStart bool `yaml:"build_on_start"`
}

// ToleranceConfig holds the row assembler's horizontal and vertical slack.
type ToleranceConfig struct {
	Cell float64 `yaml:"cell"`
	Row  float64 `yaml:"row"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, postgres, mysql
	DSN    string `yaml:"dsn"`
}

type AMQPConfig struct {
	URL      string `yaml:"url"`
	Exchange string `yaml:"exchange"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		DataDir:    "data",
		InvalidDir: "invalid",
		AssetsFile: ".glitch-assets",
		Workers:    4,
		Timezone:   "America/Los_Angeles",
		Watermark: WatermarkConfig{
			Mode: "file",
			Path: "data/lastChanged.txt",
		},
		Cache: CacheConfig{
			Dir: ".cache/pdf",
			TTL: 24 * time.Hour,
		},
		Server: ServerConfig{
			Port:         5555,
			BuildOnStart: true,
		},
		Tolerances: ToleranceConfig{
			Cell: 2,
			Row:  3,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "sweeps.db",
		},
		AMQP: AMQPConfig{
			Exchange: "sweeps",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads the YAML file at path (a missing file is not an error),
// loads .env if present and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("SWEEPS_DATA_DIR", c.DataDir)
	c.InvalidDir = getEnv("SWEEPS_INVALID_DIR", c.InvalidDir)
	c.AssetsFile = getEnv("SWEEPS_ASSETS_FILE", c.AssetsFile)
	c.Workers = getEnvAsInt("SWEEPS_WORKERS", c.Workers)
	c.Timezone = getEnv("SWEEPS_TIMEZONE", c.Timezone)
	c.Watermark.Mode = getEnv("SWEEPS_WATERMARK", c.Watermark.Mode)
	c.Watermark.Path = getEnv("SWEEPS_WATERMARK_PATH", c.Watermark.Path)
	c.Server.Port = getEnvAsInt("PORT", c.Server.Port)
	c.Database.Driver = getEnv("SWEEPS_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("SWEEPS_DB_DSN", c.Database.DSN)
	c.AMQP.URL = getEnv("SWEEPS_AMQP_URL", c.AMQP.URL)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return errors.New("workers must be positive")
	}
	if c.Tolerances.Cell < 0 || c.Tolerances.Row < 0 {
		return errors.New("tolerances cannot be negative")
	}
	switch c.Watermark.Mode {
	case "file", "db":
	default:
		return fmt.Errorf("unknown watermark mode %q", c.Watermark.Mode)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured time zone. Call Validate first.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
