// Package config provides configuration management for the ShotDeck agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	// Default values
	DefaultPort        = 8788
	DefaultLogLevel    = "info"
	DefaultDataDir     = ".shotdeck"
	DefaultFallbackDir = "Projects"

	// Environment variable names
	EnvPort        = "SHOTDECK_PORT"
	EnvLogLevel    = "SHOTDECK_LOG_LEVEL"
	EnvDataDir     = "SHOTDECK_DATA_DIR"
	EnvTemplates   = "SHOTDECK_TEMPLATES"
	EnvFallbackDir = "SHOTDECK_FALLBACK_DIR"
	EnvHeadless    = "SHOTDECK_HEADLESS"
	EnvHistory     = "SHOTDECK_HISTORY_LIMIT"

	// Database filename
	DBFilename = "shotdeck.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	TemplatesPath() string
	FallbackDir() string
	Headless() bool
	HistoryLimit() int
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port          int
	logLevel      string
	dataDir       string
	templatesPath string
	fallbackDir   string
	headless      bool
	historyLimit  int
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	home, _ := os.UserHomeDir()

	cfg := &EnvConfig{
		port:        DefaultPort,
		logLevel:    DefaultLogLevel,
		dataDir:     defaultDataDir(home),
		fallbackDir: DefaultFallbackBase(home),
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.templatesPath = os.Getenv(EnvTemplates)

	if fd := os.Getenv(EnvFallbackDir); fd != "" {
		cfg.fallbackDir = fd
	}

	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		cfg.headless = headless
	}

	if h := os.Getenv(EnvHistory); h != "" {
		limit, err := strconv.Atoi(h)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvHistory, err)
		}
		cfg.historyLimit = limit
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// TemplatesPath returns the template file path; empty means built-in templates
func (c *EnvConfig) TemplatesPath() string {
	return c.templatesPath
}

// FallbackDir returns where projects go when the chosen folder is not writable
func (c *EnvConfig) FallbackDir() string {
	return c.fallbackDir
}

func (c *EnvConfig) Headless() bool {
	return c.headless
}

// HistoryLimit returns how many operation records to keep; 0 means the
// database default and a negative value keeps all of them.
func (c *EnvConfig) HistoryLimit() int {
	return c.historyLimit
}

// DefaultFallbackBase returns <home>/Projects. With no home directory there
// is no fallback, so an unwritable target fails instead of landing under the
// working directory.
func DefaultFallbackBase(home string) string {
	if home == "" {
		return ""
	}
	return filepath.Join(home, DefaultFallbackDir)
}

// defaultDataDir returns the default data directory path
func defaultDataDir(home string) string {
	if home == "" {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
