// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/awnumar/memguard"

	"github.com/ericfisherdev/accessvault/internal/adapter/driven/aesgcm"
	"github.com/ericfisherdev/accessvault/internal/domain/model"
	"github.com/ericfisherdev/accessvault/internal/logging"
)

// Environment variable names read by Load.
const (
	EnvSecretKey       = "ACCESSVAULT_SECRET_KEY"
	EnvAlertWindowDays = "ACCESSVAULT_ALERT_WINDOW_DAYS"
	EnvScanHour        = "ACCESSVAULT_SCAN_HOUR"
	EnvListenAddr      = "ACCESSVAULT_LISTEN_ADDR"
	EnvDBPath          = "ACCESSVAULT_DB_PATH"
	EnvIdentityHeader  = "ACCESSVAULT_IDENTITY_HEADER"
	EnvUsersFile       = "ACCESSVAULT_USERS_FILE"
	EnvLogFormat       = "ACCESSVAULT_LOG_FORMAT"
	EnvLogLevel        = "ACCESSVAULT_LOG_LEVEL"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	AlertWindowDays int
	ScanHour        int
	ListenAddr      string
	DBPath          string
	IdentityHeader  string
	UsersFile       string
	LogFormat       string
	LogLevel        slog.Level

	key *memguard.Enclave
}

// Load reads configuration from environment variables and returns a validated Config.
// ACCESSVAULT_SECRET_KEY is required and must decode to exactly 32 bytes; the
// decoded key is sealed in a memguard enclave and the decoded copy wiped.
// Optional variables with defaults: ACCESSVAULT_ALERT_WINDOW_DAYS (7),
// ACCESSVAULT_SCAN_HOUR (1), ACCESSVAULT_LISTEN_ADDR (127.0.0.1:8080),
// ACCESSVAULT_DB_PATH (accessvault.db), ACCESSVAULT_IDENTITY_HEADER
// (X-Authenticated-Email), ACCESSVAULT_LOG_FORMAT (text), ACCESSVAULT_LOG_LEVEL (info).
func Load() (*Config, error) {
	cfg, err := LoadWithoutKey()
	if err != nil {
		return nil, err
	}

	material, ok := os.LookupEnv(EnvSecretKey)
	if !ok || strings.TrimSpace(material) == "" {
		return nil, fmt.Errorf("%w: %s is required", model.ErrConfiguration, EnvSecretKey)
	}
	key, err := aesgcm.DecodeKey(strings.TrimSpace(material))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", EnvSecretKey, err)
	}
	// NewEnclave wipes key after sealing it.
	cfg.key = memguard.NewEnclave(key)

	return cfg, nil
}

// LoadWithoutKey reads every setting except the secret key. Commands that
// never touch secrets (migrate, users import) use it.
func LoadWithoutKey() (*Config, error) {
	alertWindow, err := intEnv(EnvAlertWindowDays, 7)
	if err != nil {
		return nil, err
	}
	if alertWindow <= 0 {
		return nil, fmt.Errorf("%w: %s must be positive, got %d", model.ErrConfiguration, EnvAlertWindowDays, alertWindow)
	}

	scanHour, err := intEnv(EnvScanHour, 1)
	if err != nil {
		return nil, err
	}
	if scanHour < 0 || scanHour > 23 {
		return nil, fmt.Errorf("%w: %s must be between 0 and 23, got %d", model.ErrConfiguration, EnvScanHour, scanHour)
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv(EnvListenAddr); ok {
		listenAddr = v
	}

	dbPath := "accessvault.db"
	if v, ok := os.LookupEnv(EnvDBPath); ok {
		dbPath = v
	}

	identityHeader := "X-Authenticated-Email"
	if v, ok := os.LookupEnv(EnvIdentityHeader); ok && strings.TrimSpace(v) != "" {
		identityHeader = strings.TrimSpace(v)
	}

	usersFile := strings.TrimSpace(os.Getenv(EnvUsersFile))

	logFormat := "text"
	if v, ok := os.LookupEnv(EnvLogFormat); ok && v != "" {
		logFormat = strings.ToLower(strings.TrimSpace(v))
	}
	if logFormat != "text" && logFormat != "json" {
		return nil, fmt.Errorf("%w: %s must be text or json, got %q", model.ErrConfiguration, EnvLogFormat, logFormat)
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		if logLevel, err = logging.ParseLevel(v); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", model.ErrConfiguration, EnvLogLevel, err)
		}
	}

	return &Config{
		AlertWindowDays: alertWindow,
		ScanHour:        scanHour,
		ListenAddr:      listenAddr,
		DBPath:          dbPath,
		IdentityHeader:  identityHeader,
		UsersFile:       usersFile,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	}, nil
}

// HasKey reports whether the secret key was loaded.
func (c *Config) HasKey() bool {
	return c.key != nil
}

// WithKey opens the sealed key, passes it to fn and wipes the plaintext copy
// when fn returns. fn must not retain the slice.
func (c *Config) WithKey(fn func(key []byte) error) error {
	if c.key == nil {
		return fmt.Errorf("%w: secret key not loaded", model.ErrConfiguration)
	}

	buf, err := c.key.Open()
	if err != nil {
		return fmt.Errorf("open key enclave: %w", err)
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

func intEnv(name string, def int) (int, error) {
	v, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w: %s has invalid integer %q", model.ErrConfiguration, name, v)
	}
	return n, nil
}
