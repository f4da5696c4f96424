// ABOUTME: Configuration loading for gcalsync
// ABOUTME: Layers defaults, XDG config file, .env file, and environment overrides
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

const (
	// AppName names the XDG directories, the keyring service, and the
	// provenance tag written on generic events.
	AppName = "gcalsync"

	ConfigFileName = "config.json"

	DefaultTimeZone     = "Europe/Berlin"
	DefaultCalendarName = "contacts"
	DefaultPageSize     = 10
	DefaultLogLevel     = "info"

	TokenStoreFile    = "file"
	TokenStoreKeyring = "keyring"
)

// Config holds all runtime settings.
type Config struct {
	ClientSecretFile string `json:"client_secret_file,omitempty"`
	ClientID         string `json:"client_id,omitempty"`
	ClientSecret     string `json:"client_secret,omitempty"`

	TokenStore string `json:"token_store,omitempty"`
	TokenFile  string `json:"token_file,omitempty"`

	TimeZone        string `json:"time_zone,omitempty"`
	DefaultCalendar string `json:"default_calendar,omitempty"`
	PageSize        int64  `json:"page_size,omitempty"`
	ContinueOnError bool   `json:"continue_on_error"`

	LogLevel string `json:"log_level,omitempty"`

	// ContactsFile switches the contacts source from the People API to a
	// local vCard file.
	ContactsFile string `json:"contacts_file,omitempty"`
}

// ConfigDir returns the XDG config directory for gcalsync.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the default config file location.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), ConfigFileName)
}

// DataDir returns the XDG data directory for gcalsync.
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Default returns a config with every field at its default.
func Default() *Config {
	return &Config{
		ClientSecretFile: filepath.Join(ConfigDir(), "credentials.json"),
		TokenStore:       TokenStoreFile,
		TokenFile:        filepath.Join(DataDir(), "token.json"),
		TimeZone:         DefaultTimeZone,
		DefaultCalendar:  DefaultCalendarName,
		PageSize:         DefaultPageSize,
		LogLevel:         DefaultLogLevel,
	}
}

// Load reads the config file at path (ConfigPath when empty), then applies
// a .env file from the working directory and environment overrides.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv populates the process environment from an optional .env
// file. Variables already set win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GCALSYNC_CLIENT_SECRET_FILE"); v != "" {
		cfg.ClientSecretFile = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv("GCALSYNC_TOKEN_STORE"); v != "" {
		cfg.TokenStore = v
	}
	if v := os.Getenv("GCALSYNC_TOKEN_FILE"); v != "" {
		cfg.TokenFile = v
	}
	if v := os.Getenv("GCALSYNC_TIME_ZONE"); v != "" {
		cfg.TimeZone = v
	}
	if v := os.Getenv("GCALSYNC_DEFAULT_CALENDAR"); v != "" {
		cfg.DefaultCalendar = v
	}
	if v := os.Getenv("GCALSYNC_PAGE_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid GCALSYNC_PAGE_SIZE %q: %w", v, err)
		}
		cfg.PageSize = n
	}
	if v := os.Getenv("GCALSYNC_CONTINUE_ON_ERROR"); v != "" {
		cfg.ContinueOnError = v == "true" || v == "1"
	}
	if v := os.Getenv("GCALSYNC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("GCALSYNC_CONTACTS_FILE"); v != "" {
		cfg.ContactsFile = v
	}
	return nil
}

// fillDefaults restores defaults for fields an explicit config left empty.
func (c *Config) fillDefaults() {
	def := Default()
	if c.TokenStore == "" {
		c.TokenStore = def.TokenStore
	}
	if c.TokenFile == "" {
		c.TokenFile = def.TokenFile
	}
	if c.TimeZone == "" {
		c.TimeZone = def.TimeZone
	}
	if c.DefaultCalendar == "" {
		c.DefaultCalendar = def.DefaultCalendar
	}
	if c.PageSize == 0 {
		c.PageSize = def.PageSize
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
}

// Validate checks that settings are usable.
func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.TimeZone); err != nil {
		return fmt.Errorf("invalid time_zone %q: %w", c.TimeZone, err)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	switch c.TokenStore {
	case TokenStoreFile, TokenStoreKeyring:
	default:
		return fmt.Errorf("unknown token_store %q (want %q or %q)", c.TokenStore, TokenStoreFile, TokenStoreKeyring)
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Save writes the config as indented JSON with user-only permissions.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
