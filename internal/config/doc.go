// Package config loads bus configuration from JSON/YAML files with VUBSUB_*
// environment overlays, and resolves per-OS default data directories.
package config
