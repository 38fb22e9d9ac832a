package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"
)

// Config represents the full application configuration surface.
type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Store    StoreConfig
	Backup   BackupConfig
	Timezone string
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
}

// StoreConfig locates the local key-value store.
type StoreConfig struct {
	Driver string
	Path   string
}

// BackupConfig holds the scheduled export settings. An empty CronSchedule
// disables backups.
type BackupConfig struct {
	CronSchedule string
	Dir          string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Store: StoreConfig{
			Driver: getenvWithDefault("STORE_DRIVER", StoreDriverSQLite),
			Path:   getenvWithDefault("STORE_PATH", "weighbridge.db"),
		},
		Backup: BackupConfig{
			CronSchedule: os.Getenv("BACKUP_CRON"),
			Dir:          getenvWithDefault("BACKUP_DIR", "backups"),
		},
		Timezone: getenvWithDefault("TIMEZONE", "Local"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch c.Store.Driver {
	case StoreDriverSQLite:
		if c.Store.Path == "" {
			return errors.New("STORE_PATH must be provided for the sqlite driver")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not supported", c.Store.Driver)
	}

	if c.Backup.CronSchedule != "" && c.Backup.Dir == "" {
		return errors.New("BACKUP_DIR must be provided when BACKUP_CRON is set")
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}

	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
