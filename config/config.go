package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Ashenafi-pixel/simple-roulette/spin"
)

type Config struct {
	Port        int
	DataDir     string
	PresetsDir  string
	AppID       string // wallet host app identifier; empty disables nothing but is logged
	AppEnv      string
	DatabaseURL string
	LogLevel    slog.Level

	WalletBridgeURL string
	AuthStatement   string
	SessionMaxAge   time.Duration

	Spin spin.Policy

	WebhookURL    string
	WebhookSecret string
}

// Load reads the configuration from the environment. Unset variables take
// their defaults; malformed numbers, durations and levels are errors.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            8080,
		DataDir:         envOr("ROULETTE_DATA_DIR", "data"),
		PresetsDir:      envOr("ROULETTE_PRESETS_DIR", "presets"),
		AppID:           os.Getenv("APP_ID"),
		AppEnv:          envOr("APP_ENV", "development"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		WalletBridgeURL: strings.TrimRight(os.Getenv("WALLET_BRIDGE_URL"), "/"),
		AuthStatement:   os.Getenv("AUTH_STATEMENT"),
		Spin:            spin.DefaultPolicy(),
		WebhookURL:      os.Getenv("RESULT_WEBHOOK_URL"),
		WebhookSecret:   os.Getenv("RESULT_WEBHOOK_SECRET"),
	}
	if cfg.AppID == "" {
		cfg.AppID = os.Getenv("NEXT_PUBLIC_APP_ID")
	}
	if p := os.Getenv("PORT"); p != "" {
		v, err := strconv.Atoi(p)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("config: invalid PORT %q", p)
		}
		cfg.Port = v
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return nil, err
	}
	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"SESSION_MAX_AGE", &cfg.SessionMaxAge},
		{"SPIN_REVEAL_DELAY", &cfg.Spin.RevealDelay},
		{"SPIN_CONFETTI_DURATION", &cfg.Spin.ConfettiDuration},
		{"SPIN_TRANSITION_DURATION", &cfg.Spin.TransitionDuration},
	}
	for _, d := range durations {
		if err := envDuration(d.key, d.dst); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string { return ":" + strconv.Itoa(c.Port) }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, dst *time.Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		// bare integers are milliseconds
		ms, convErr := strconv.Atoi(v)
		if convErr != nil {
			return fmt.Errorf("config: invalid %s %q: %w", key, v, err)
		}
		d = time.Duration(ms) * time.Millisecond
	}
	if d < 0 {
		return fmt.Errorf("config: %s must not be negative", key)
	}
	*dst = d
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown LOG_LEVEL %q", s)
}
