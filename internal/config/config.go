package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the bus. The log bound and tail interval mirror the classic
// capped-collection deployment: a 10 MiB circular log polled every 200ms.
const (
	DefaultLogMaxSizeBytes     = 10 * 1024 * 1024
	DefaultTailRetryIntervalMs = 200
	DefaultHeartbeatIntervalMs = 15000
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	AllowAutoCreateNamespaces bool   `json:"allowAutoCreateNamespaces" yaml:"allowAutoCreateNamespaces"`
	DefaultNamespaceName      string `json:"defaultNamespaceName" yaml:"defaultNamespaceName"`
	// LogMaxSizeBytes bounds each namespace log; the oldest entries are
	// overwritten once the bound is exceeded.
	LogMaxSizeBytes int64 `json:"logMaxSizeBytes" yaml:"logMaxSizeBytes"`
	// TailRetryIntervalMs is the bounded wait of a single blocking tail read.
	TailRetryIntervalMs int `json:"tailRetryIntervalMs" yaml:"tailRetryIntervalMs"`
	// HeartbeatIntervalMs is the suggested presence ping cadence for callers
	// that want periodic liveness (the engine itself never pings on a timer).
	HeartbeatIntervalMs int `json:"heartbeatIntervalMs" yaml:"heartbeatIntervalMs"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		AllowAutoCreateNamespaces: true,
		DefaultNamespaceName:      "default",
		LogMaxSizeBytes:           DefaultLogMaxSizeBytes,
		TailRetryIntervalMs:       DefaultTailRetryIntervalMs,
		HeartbeatIntervalMs:       DefaultHeartbeatIntervalMs,
	}
}

// TailRetryInterval returns the tail poll interval as a Duration.
func (c Config) TailRetryInterval() time.Duration {
	if c.TailRetryIntervalMs <= 0 {
		return DefaultTailRetryIntervalMs * time.Millisecond
	}
	return time.Duration(c.TailRetryIntervalMs) * time.Millisecond
}

// HeartbeatInterval returns the ping cadence as a Duration.
func (c Config) HeartbeatInterval() time.Duration {
	if c.HeartbeatIntervalMs <= 0 {
		return DefaultHeartbeatIntervalMs * time.Millisecond
	}
	return time.Duration(c.HeartbeatIntervalMs) * time.Millisecond
}

// Load reads configuration from a JSON or YAML file (by extension). If path is
// empty, returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	return cfg, nil
}
