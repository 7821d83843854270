// Package config provides application configuration management with support for
// environment variables, command-line flags, and .env files.
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

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Data     DataConfig
	Server   ServerConfig
	Auth     AuthConfig
	Search   SearchConfig
	Mail     MailConfig
	Throttle ThrottleConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds data storage configuration.
type DataConfig struct {
	// BasePath is the directory holding the SQLite database and auth key.
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string
	FrontendURL    string // Used to build verification/reset links in emails
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// PASETO v4 symmetric key for signed action tokens (32 bytes).
	// Loaded by auth.LoadOrGenerateKey in the DI layer.
	TokenKey []byte
	// ActionTokenDuration bounds email verification and password reset links.
	ActionTokenDuration time.Duration // e.g., 72h
	// SessionTokenDuration bounds remember-me session tokens.
	SessionTokenDuration time.Duration // e.g., 720h (30 days)
}

// SearchConfig holds search and feed tuning.
// The trending window and similarity threshold are deliberately configuration,
// not literals, so the product can tune discovery without a deploy.
type SearchConfig struct {
	// SimilarityThreshold is the minimum trigram similarity for a fuzzy match.
	SimilarityThreshold float64
	// TrendingWindow restricts the trending feed to recently created stories.
	TrendingWindow time.Duration
	// PageSize is the story listing page size.
	PageSize int
	// RepliesPageSize is the chapter replies page size.
	RepliesPageSize int
	// AuthorsPageSize is the author directory page size.
	AuthorsPageSize int
	// FeedLimit caps the latest/trending/personal/following feeds.
	FeedLimit int
}

// MailConfig holds outbound email configuration.
type MailConfig struct {
	FromAddress string
	// SMTPAddr is host:port of the relay; empty means log-only delivery (dev).
	SMTPAddr string
}

// ThrottleConfig holds login/reset throttling configuration,
// keyed by client address.
type ThrottleConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	frontendURL := flag.String("frontend-url", "", "Frontend base URL for email links")
	allowedOrigins := flag.String("allowed-origins", "", "Comma-separated CORS origins")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	actionTokenDuration := flag.String("action-token-duration", "", "Email action token lifetime (e.g., 72h)")
	sessionTokenDuration := flag.String("session-token-duration", "", "Session token lifetime (e.g., 720h)")

	similarityThreshold := flag.Float64("similarity-threshold", 0, "Search similarity acceptance threshold")
	trendingWindow := flag.String("trending-window", "", "Trending feed window (default: 168h)")

	mailFrom := flag.String("mail-from", "", "From address for outbound mail")
	smtpAddr := flag.String("smtp-addr", "", "SMTP relay host:port (empty: log-only)")

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
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			FrontendURL: getConfigValue(*frontendURL, "FRONTEND_URL", "http://localhost:3000"),
		},
		Search: SearchConfig{
			SimilarityThreshold: getFloatConfigValue(*similarityThreshold, "SIMILARITY_THRESHOLD", 0.1),
			PageSize:            getIntConfigValue("", "STORIES_PAGE_SIZE", 9),
			RepliesPageSize:     getIntConfigValue("", "REPLIES_PAGE_SIZE", 6),
			AuthorsPageSize:     getIntConfigValue("", "AUTHORS_PAGE_SIZE", 20),
			FeedLimit:           getIntConfigValue("", "FEED_LIMIT", 10),
		},
		Mail: MailConfig{
			FromAddress: getConfigValue(*mailFrom, "MAIL_FROM", "no-reply@goldenpens.app"),
			SMTPAddr:    getConfigValue(*smtpAddr, "SMTP_ADDR", ""),
		},
		Throttle: ThrottleConfig{
			RequestsPerSecond: getFloatConfigValue(0, "THROTTLE_RPS", 1),
			Burst:             getIntConfigValue("", "THROTTLE_BURST", 5),
		},
	}

	origins := getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", cfg.Server.FrontendURL)
	for _, origin := range strings.Split(origins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.Server.AllowedOrigins = append(cfg.Server.AllowedOrigins, origin)
		}
	}

	// Parse durations.
	var err error
	if cfg.Auth.ActionTokenDuration, err = parseDurationValue(*actionTokenDuration, "ACTION_TOKEN_DURATION", "72h"); err != nil {
		return nil, err
	}
	if cfg.Auth.SessionTokenDuration, err = parseDurationValue(*sessionTokenDuration, "SESSION_TOKEN_DURATION", "720h"); err != nil {
		return nil, err
	}
	if cfg.Search.TrendingWindow, err = parseDurationValue(*trendingWindow, "TRENDING_WINDOW", "168h"); err != nil {
		return nil, err
	}
	if cfg.Server.ReadTimeout, err = parseDurationValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = parseDurationValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = parseDurationValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
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

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Search.SimilarityThreshold <= 0 || c.Search.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in (0, 1], got %v", c.Search.SimilarityThreshold)
	}
	if c.Search.TrendingWindow <= 0 {
		return errors.New("trending window must be positive")
	}
	if c.Search.PageSize <= 0 || c.Search.RepliesPageSize <= 0 || c.Search.AuthorsPageSize <= 0 {
		return errors.New("page sizes must be positive")
	}

	return nil
}

// DatabasePath returns the SQLite database file location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.BasePath, "goldenpens.db")
}

// expandDataPath expands ~ and makes the path absolute,
// defaulting to ~/GoldenPens/data.
func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, "GoldenPens", "data")

	path := c.Data.BasePath
	if path == "" {
		c.Data.BasePath = defaultPath
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		path = filepath.Join(homeDir, path[2:])
	}
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	c.Data.BasePath = filepath.Clean(path)
	return nil
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

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue float64, envKey string, defaultValue float64) float64 {
	if flagValue != 0 {
		return flagValue
	}
	strValue := os.Getenv(envKey)
	if strValue == "" {
		return defaultValue
	}
	var result float64
	if _, err := fmt.Sscanf(strValue, "%g", &result); err != nil {
		return defaultValue
	}
	return result
}

// parseDurationValue resolves a duration setting with flag/env/default precedence.
func parseDurationValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	raw := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(strings.ReplaceAll(envKey, "_", " ")), raw, err)
	}
	return d, nil
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
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Real env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
