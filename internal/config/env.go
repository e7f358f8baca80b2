package config

import (
	"os"
	"strconv"
)

// FromEnv overlays VUBSUB_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("VUBSUB_ALLOW_AUTO_CREATE_NAMESPACES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowAutoCreateNamespaces = b
		}
	}
	if v := os.Getenv("VUBSUB_DEFAULT_NAMESPACE_NAME"); v != "" {
		cfg.DefaultNamespaceName = v
	}
	if v := os.Getenv("VUBSUB_LOG_MAX_SIZE_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.LogMaxSizeBytes = n
		}
	}
	if v := os.Getenv("VUBSUB_TAIL_RETRY_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TailRetryIntervalMs = n
		}
	}
	if v := os.Getenv("VUBSUB_HEARTBEAT_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.HeartbeatIntervalMs = n
		}
	}
}
