// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxUploadBytes is the upload size ceiling when none is configured (10 MiB).
const DefaultMaxUploadBytes = 10 << 20

// Config holds the application configuration.
type Config struct {
	App     AppConfig
	Logger  LoggerConfig
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	Upload  UploadConfig
	Models  ModelsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 30s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// StorageConfig holds data directory configuration.
// BasePath contains the sqlite database, the uploads directory,
// the inference cache, and generated key material.
type StorageConfig struct {
	BasePath    string
	UploadsPath string // Defaults to {base}/uploads
}

// AuthConfig holds identity verification configuration.
// The server verifies PASETO v4.public assertions signed by the external
// identity provider; it never issues sessions of its own.
type AuthConfig struct {
	// IdentityPublicKey is the provider's Ed25519 public key, hex-encoded.
	// When empty in development, a local keypair is generated under the
	// storage path so devtoken can mint assertions.
	IdentityPublicKey string
	Issuer            string
	Audience          string
}

// UploadConfig holds ingestion policy configuration.
type UploadConfig struct {
	// MaxBytes is the upload size ceiling (default: 10 MiB).
	MaxBytes int64
	// RequireTitle rejects uploads without a title instead of falling
	// back to the original filename.
	RequireTitle bool
	// RatePerMinute limits uploads per user (default: 30).
	RatePerMinute float64
}

// ModelsConfig holds inference service configuration.
type ModelsConfig struct {
	// Enabled toggles captioning/tagging. When false both model calls
	// return empty results immediately.
	Enabled bool
	// BaseURL is the inference sidecar serving /caption and /score.
	BaseURL string
	// Timeout bounds a single inference call (default: 30s).
	Timeout time.Duration
	// MinConfidence drops tag scores below this floor (default: 0.1).
	MinConfidence float64
	// VocabularyPath optionally points to a newline-separated static tag
	// vocabulary merged with caption-derived keywords.
	VocabularyPath string
	// CacheResults enables the on-disk inference result cache.
	CacheResults bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for server data (db, uploads, cache)")
	uploadsPath := flag.String("uploads-path", "", "Path for uploaded files (default: {data}/uploads)")

	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 30s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	identityKey := flag.String("identity-public-key", "", "Hex-encoded Ed25519 public key of the identity provider")
	issuer := flag.String("identity-issuer", "", "Expected assertion issuer")
	audience := flag.String("identity-audience", "", "Expected assertion audience")

	maxUpload := flag.String("max-upload-bytes", "", "Upload size ceiling in bytes (default: 10 MiB)")
	requireTitle := flag.String("require-title", "", "Reject uploads without a title (default: false)")

	modelsEnabled := flag.String("models-enabled", "", "Enable captioning/tagging (default: true when model-url is set)")
	modelURL := flag.String("model-url", "", "Base URL of the inference service")
	modelTimeout := flag.String("model-timeout", "", "Per-call inference timeout (default: 30s)")
	vocabularyPath := flag.String("vocabulary-path", "", "Optional static tag vocabulary file")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Storage: StorageConfig{
			BasePath:    getConfigValue(*dataPath, "DATA_PATH", ""),
			UploadsPath: getConfigValue(*uploadsPath, "UPLOADS_PATH", ""),
		},
		Auth: AuthConfig{
			IdentityPublicKey: getConfigValue(*identityKey, "IDENTITY_PUBLIC_KEY", ""),
			Issuer:            getConfigValue(*issuer, "IDENTITY_ISSUER", "campuslens-identity"),
			Audience:          getConfigValue(*audience, "IDENTITY_AUDIENCE", "campuslens-server"),
		},
		Upload: UploadConfig{
			MaxBytes:      getInt64ConfigValue(*maxUpload, "MAX_UPLOAD_BYTES", DefaultMaxUploadBytes),
			RequireTitle:  getBoolConfigValue(*requireTitle, "REQUIRE_TITLE", false),
			RatePerMinute: 30,
		},
		Models: ModelsConfig{
			BaseURL:        getConfigValue(*modelURL, "MODEL_URL", ""),
			MinConfidence:  0.1,
			VocabularyPath: getConfigValue(*vocabularyPath, "VOCABULARY_PATH", ""),
			CacheResults:   getBoolConfigValue("", "MODEL_CACHE", true),
		},
	}

	// Models default to enabled only when an inference URL is configured.
	cfg.Models.Enabled = getBoolConfigValue(*modelsEnabled, "MODELS_ENABLED", cfg.Models.BaseURL != "")

	var err error
	cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}
	cfg.Models.Timeout, err = parseDurationValue(*modelTimeout, "MODEL_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}

	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("invalid upload ceiling: %d", c.Upload.MaxBytes)
	}

	if c.Models.Enabled && c.Models.BaseURL == "" {
		return errors.New("models enabled but MODEL_URL is not set")
	}

	if c.App.Environment == "production" && c.Auth.IdentityPublicKey == "" {
		return errors.New("IDENTITY_PUBLIC_KEY is required in production")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandStoragePaths expands ~ and makes the storage paths absolute.
// UploadsPath defaults to {base}/uploads.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultBase := filepath.Join(homeDir, "CampusLens", "data")

	expanded, err := expandPath(c.Storage.BasePath, defaultBase)
	if err != nil {
		return err
	}
	c.Storage.BasePath = expanded

	defaultUploads := filepath.Join(c.Storage.BasePath, "uploads")
	expanded, err = expandPath(c.Storage.UploadsPath, defaultUploads)
	if err != nil {
		return err
	}
	c.Storage.UploadsPath = expanded

	return nil
}

// parseDurationValue resolves a duration from flag, env var, or default.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), raw, err)
	}
	return d, nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getInt64ConfigValue returns an int64 from flag, env var, or default.
func getInt64ConfigValue(flagValue, envKey string, defaultValue int64) int64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int64
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
