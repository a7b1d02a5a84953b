// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as the bot token, database path, logging, rate limiting, and the
// operational HTTP server.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stanbotdev/stanbot/internal/sysutil"
)

// FeedConfig defines how incoming stream events are rendered.
type FeedConfig struct {
	ProxyHost  string   // FEED_PROXY_HOST: host used for single-video posts
	MediaHosts []string // FEED_MEDIA_HOSTS: substrings identifying media CDN links
}

// Config holds all configuration values for the application.
type Config struct {
	// Bot
	BotToken string // TELEGRAM_BOT_TOKEN (required)

	// Ops HTTP server
	HTTPPort string // just the number
	GinMode  string // debug|release|test

	// Logging
	LogLevel  string // debug|info|warn|error|fatal|panic
	LogPretty bool   // pretty console logs in dev

	// App
	DBPath          string        // SQLite path
	FlushInterval   time.Duration // counter flush cadence
	LeaderboardSize int           // default rows in leaderboard replies

	// Outbound rate limiting
	SendRate  float64 // messages per second (> 0)
	SendBurst int     // bucket size (>= 1)

	// Feed rendering
	Feed FeedConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		BotToken: getenv("TELEGRAM_BOT_TOKEN", ""),

		HTTPPort: getenv("HTTP_PORT", "8080"),
		GinMode:  strings.ToLower(getenv("GIN_MODE", "release")),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getbool("LOG_PRETTY", false),

		DBPath:          getenv("DB_PATH", "stanbot.db"),
		FlushInterval:   getdur("FLUSH_INTERVAL", time.Minute),
		LeaderboardSize: getint("LEADERBOARD_SIZE", 10),

		SendRate:  getfloat("SEND_RATE", 1.0),
		SendBurst: getint("SEND_BURST", 5),

		Feed: FeedConfig{
			ProxyHost:  getenv("FEED_PROXY_HOST", "fxtwitter.com"),
			MediaHosts: splitCSV(getenv("FEED_MEDIA_HOSTS", "twimg")),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.BotToken) == "" {
		return cfg, errors.New("TELEGRAM_BOT_TOKEN must not be empty")
	}
	if strings.TrimSpace(cfg.HTTPPort) == "" {
		return cfg, errors.New("HTTP_PORT must not be empty")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.FlushInterval <= 0 {
		return cfg, errors.New("FLUSH_INTERVAL must be a positive duration")
	}
	if cfg.LeaderboardSize < 1 {
		return cfg, errors.New("LEADERBOARD_SIZE must be >= 1")
	}
	if cfg.SendRate <= 0 {
		return cfg, errors.New("SEND_RATE must be > 0")
	}
	if cfg.SendBurst < 1 {
		return cfg, errors.New("SEND_BURST must be >= 1")
	}
	if strings.TrimSpace(cfg.Feed.ProxyHost) == "" {
		return cfg, errors.New("FEED_PROXY_HOST must not be empty")
	}
	if len(cfg.Feed.MediaHosts) == 0 {
		return cfg, errors.New("FEED_MEDIA_HOSTS must not be empty")
	}

	return cfg, nil
}

// ---- helpers ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
