// Package config contains everything related to configuration
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey is returned when no usable admin key is configured.
var ErrMissingAPIKey = errors.New("OPENAI_ADMIN_KEY (or OPENAI_API_KEY) is required")

// placeholderAPIKey ships in the sample .env and is treated as unset.
const placeholderAPIKey = "Your_OpenAI_API_Key_Here"

// Config holds the application configuration.
type Config struct {
	AdminKey           string
	OrganizationID     string
	APIBase            string
	DatabasePath       string
	SessionPath        string
	SessionSecret      string
	LogLevel           string
	LogPath            string
	SessionTTL         time.Duration
	RequestTimeout     time.Duration
	CacheTTL           time.Duration
	CostsLimit         int
	ProjectsLimit      int
	CostAlertThreshold float64
}

// Default values
const (
	defaultAPIBase        = "https://api.openai.com/v1"
	defaultSessionTTL     = 24 * time.Hour
	defaultRequestTimeout = 60 * time.Second
	defaultCacheTTL       = time.Hour
	defaultCostsLimit     = 31
	defaultProjectsLimit  = 100
	defaultLogLevel       = "info"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	cfg, err := LoadLocal()
	if err != nil {
		return nil, err
	}
	if cfg.AdminKey == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

// LoadLocal loads everything except the API key requirement, for commands
// that only touch the local user store.
func LoadLocal() (*Config, error) {
	// First .env found wins; real environment variables are never overridden.
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		AdminKey:           getAPIKey(),
		OrganizationID:     getEnvString("OPENAI_ORG_ID", ""),
		APIBase:            strings.TrimRight(getEnvString("OPENAI_API_BASE", defaultAPIBase), "/"),
		DatabasePath:       getEnvString("DATABASE_PATH", getDefaultPath("oct.db")),
		SessionPath:        getEnvString("SESSION_PATH", getDefaultPath("session.json")),
		SessionSecret:      getEnvString("SESSION_SECRET", ""),
		LogLevel:           getEnvString("LOG_LEVEL", defaultLogLevel),
		LogPath:            getEnvString("LOG_PATH", getDefaultPath("oct.log")),
		SessionTTL:         getEnvDuration("SESSION_TTL", defaultSessionTTL),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", defaultRequestTimeout),
		CacheTTL:           getEnvDuration("CACHE_TTL", defaultCacheTTL),
		CostsLimit:         getEnvInt("COSTS_LIMIT", defaultCostsLimit),
		ProjectsLimit:      getEnvInt("PROJECTS_LIMIT", defaultProjectsLimit),
		CostAlertThreshold: getEnvFloat("COST_ALERT_THRESHOLD", 0),
	}

	for _, p := range []string{cfg.DatabasePath, cfg.SessionPath, cfg.LogPath} {
		if err := ensureDir(filepath.Dir(p)); err != nil {
			return nil, err
		}
	}

	if cfg.SessionSecret == "" {
		secret, err := loadOrCreateSecret(secretPathFor(cfg.DatabasePath))
		if err != nil {
			return nil, err
		}
		cfg.SessionSecret = secret
	}

	return cfg, nil
}

// getAPIKey prefers the admin key and ignores the sample placeholder.
func getAPIKey() string {
	for _, key := range []string{"OPENAI_ADMIN_KEY", "OPENAI_API_KEY"} {
		value := strings.TrimSpace(os.Getenv(key))
		if value != "" && value != placeholderAPIKey {
			return value
		}
	}
	return ""
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "oct", ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultPath returns name inside the oct config directory.
func getDefaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", "oct", name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves a positive integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// getEnvFloat retrieves a float environment variable or returns the default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
