package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Host holds process settings read from the environment.
type Host struct {
	Port         int    `env:"MYSTICISM_PORT"          envDefault:"2222"`
	HostKey      string `env:"MYSTICISM_HOST_KEY"      envDefault:"server_host_key"`
	ConfigPath   string `env:"MYSTICISM_CONFIG"        envDefault:"config.yml"`
	LogLevel     string `env:"MYSTICISM_LOG_LEVEL"     envDefault:"info"`
	OTelEndpoint string `env:"MYSTICISM_OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"MYSTICISM_OTEL_ENABLED"`
}

// LoadHost parses Host from the environment.
func LoadHost() (Host, error) {
	var h Host
	if err := env.Parse(&h); err != nil {
		return Host{}, fmt.Errorf("config: parse env: %w", err)
	}
	return h, nil
}

// SlogLevel maps LogLevel to a slog level. Unknown names mean info.
func (h Host) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(h.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
