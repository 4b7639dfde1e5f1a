// Package config loads esostore settings from defaults, an optional YAML
// file, and ESOSTORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/voightp/esofile-storage/internal/blob"
	"github.com/voightp/esofile-storage/internal/store"
)

// Default values.
const (
	DefaultDatabasePath = "esofiles.db"
	DefaultDriver       = store.DriverCGo
	DefaultBusyTimeout  = store.DefaultBusyTimeout
	DefaultSeparator    = blob.DefaultSeparator
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
	DefaultOutputFormat = "text"
)

var (
	logLevels     = []string{"debug", "info", "warn", "error"}
	logFormats    = []string{"text", "json"}
	outputFormats = []string{"text", "json"}
)

// Config is the top-level configuration struct for esostore.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	Output   OutputConfig   `mapstructure:"output"`
}

// DatabaseConfig configures the result store.
type DatabaseConfig struct {
	// Path of the database file; ":memory:" keeps it in memory.
	Path        string        `mapstructure:"path"`
	Driver      string        `mapstructure:"driver"`
	Echo        bool          `mapstructure:"echo"`
	BusyTimeout time.Duration `mapstructure:"busy_timeout"`
	Separator   string        `mapstructure:"separator"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig configures command output.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// Sentinel errors for configuration validation.
var (
	ErrInvalidDriver       = errors.New("database.driver must be sqlite3 or sqlite")
	ErrInvalidBusyTimeout  = errors.New("database.busy_timeout must not be negative")
	ErrInvalidLogLevel     = errors.New("log.level must be debug, info, warn or error")
	ErrInvalidLogFormat    = errors.New("log.format must be text or json")
	ErrInvalidOutputFormat = errors.New("output.format must be text or json")
)

// Validate checks the config for invalid values. Empty values are valid
// and mean "use the default".
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "", store.DriverCGo, store.DriverPure:
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidDriver, c.Database.Driver)
	}

	if c.Database.BusyTimeout < 0 {
		return ErrInvalidBusyTimeout
	}

	if c.Log.Level != "" && !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Log.Level)
	}

	if c.Log.Format != "" && !slices.Contains(logFormats, c.Log.Format) {
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, c.Log.Format)
	}

	if c.Output.Format != "" && !slices.Contains(outputFormats, c.Output.Format) {
		return fmt.Errorf("%w: got %q", ErrInvalidOutputFormat, c.Output.Format)
	}

	return nil
}

// StoreConfig converts the database section to a store.Config.
func (c *Config) StoreConfig(logger *slog.Logger) store.Config {
	return store.Config{
		Path:        c.Database.Path,
		Echo:        c.Database.Echo,
		Driver:      c.Database.Driver,
		BusyTimeout: c.Database.BusyTimeout,
		Separator:   c.Database.Separator,
		Logger:      logger,
	}
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
