package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Environment variable keys
const (
	KeyPort            = "PORT"
	KeyDownloadsDir    = "DOWNLOADS_DIR"
	KeyCookiesDir      = "COOKIES_DIR"
	KeyHistoryPath     = "HISTORY_PATH"
	KeyProxyURL        = "PROXY_URL"
	KeyCookieTTL       = "COOKIE_TTL_MINUTES"
	KeyDownloadTimeout = "DOWNLOAD_TIMEOUT_MINUTES"
	KeyDownloadTTL     = "DOWNLOAD_TTL_MINUTES"
	KeyMaxHistory      = "MAX_HISTORY"
	KeyMaxParallel     = "MAX_PARALLEL"
	KeyAdminPassword   = "ADMIN_PASSWORD"
	KeyAPIUploadToken  = "API_UPLOAD_TOKEN"
	KeySessionSecret   = "SESSION_SECRET"
)

// Default values
const (
	DefaultPort            = "8080"
	DefaultCookieTTL       = 60 * time.Minute
	DefaultDownloadTimeout = 10 * time.Minute
	DefaultDownloadTTL     = 120 * time.Minute
	DefaultMaxHistory      = 200
	DefaultMaxParallel     = 2
	MaxParallelLimit       = 10
)

// Settings manages service configuration sourced from the environment.
type Settings struct {
	lookup func(string) string
}

// NewSettings creates a settings manager reading from the process
// environment.
func NewSettings() *Settings {
	return &Settings{lookup: os.Getenv}
}

// NewSettingsFrom creates a settings manager reading from the given map.
// Used in tests.
func NewSettingsFrom(env map[string]string) *Settings {
	return &Settings{lookup: func(key string) string { return env[key] }}
}

// GetPort returns the HTTP listen port.
func (s *Settings) GetPort() string {
	if port := s.lookup(KeyPort); port != "" {
		return port
	}
	return DefaultPort
}

// GetDownloadsDirectory returns the directory downloaded media is written to.
func (s *Settings) GetDownloadsDirectory() string {
	if dir := s.lookup(KeyDownloadsDir); dir != "" {
		return dir
	}
	return filepath.Join(workingDir(), "downloads")
}

// GetCookiesDirectory returns the directory uploaded cookie files live in.
func (s *Settings) GetCookiesDirectory() string {
	if dir := s.lookup(KeyCookiesDir); dir != "" {
		return dir
	}
	return filepath.Join(workingDir(), "cookies")
}

// GetHistoryPath returns the path of the download history file.
func (s *Settings) GetHistoryPath() string {
	if path := s.lookup(KeyHistoryPath); path != "" {
		return path
	}
	return filepath.Join(workingDir(), "history.json")
}

// GetProxyURL returns the proxy URL passed to the extraction library,
// empty if none is configured.
func (s *Settings) GetProxyURL() string {
	return s.lookup(KeyProxyURL)
}

// GetCookieTTL returns how long an uploaded cookie file stays valid.
func (s *Settings) GetCookieTTL() time.Duration {
	return s.minutes(KeyCookieTTL, DefaultCookieTTL)
}

// GetDownloadTimeout returns the hard timeout around one extraction call.
func (s *Settings) GetDownloadTimeout() time.Duration {
	return s.minutes(KeyDownloadTimeout, DefaultDownloadTimeout)
}

// GetDownloadTTL returns how long downloaded files are kept before the
// cleanup loop removes them.
func (s *Settings) GetDownloadTTL() time.Duration {
	return s.minutes(KeyDownloadTTL, DefaultDownloadTTL)
}

// GetMaxHistory returns the maximum number of history entries kept.
func (s *Settings) GetMaxHistory() int {
	value, err := strconv.Atoi(s.lookup(KeyMaxHistory))
	if err != nil || value <= 0 {
		return DefaultMaxHistory
	}
	return value
}

// GetMaxParallelDownloads returns the maximum number of parallel downloads.
func (s *Settings) GetMaxParallelDownloads() int {
	value, err := strconv.Atoi(s.lookup(KeyMaxParallel))
	if err != nil || value < 1 {
		return DefaultMaxParallel
	}
	if value > MaxParallelLimit {
		return MaxParallelLimit
	}
	return value
}

// GetAdminPassword returns the admin page password, empty if admin access
// is disabled.
func (s *Settings) GetAdminPassword() string {
	return s.lookup(KeyAdminPassword)
}

// GetAPIUploadToken returns the token protecting the automated cookie
// upload endpoint, empty if the endpoint is disabled.
func (s *Settings) GetAPIUploadToken() string {
	return s.lookup(KeyAPIUploadToken)
}

// GetSessionSecret returns the secret used to sign browser session values,
// empty if a random per-boot secret should be generated.
func (s *Settings) GetSessionSecret() string {
	return s.lookup(KeySessionSecret)
}

// minutes reads an env key holding a minute count, falling back on parse
// failure or non-positive values.
func (s *Settings) minutes(key string, fallback time.Duration) time.Duration {
	value, err := strconv.Atoi(s.lookup(key))
	if err != nil || value <= 0 {
		return fallback
	}
	return time.Duration(value) * time.Minute
}

func workingDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	return dir
}
