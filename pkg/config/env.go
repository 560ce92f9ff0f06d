package config

import (
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvPort         = "GATEWAYD_PORT"
	EnvRemoteOrigin = "GATEWAYD_REMOTE_ORIGIN"
	EnvResourceDir  = "GATEWAYD_RESOURCE_DIR"
	EnvMode         = "GATEWAYD_MODE"
	EnvConfig       = "GATEWAYD_CONFIG"
	EnvLogLevel     = "GATEWAYD_LOG_LEVEL"
	EnvLogFormat    = "GATEWAYD_LOG_FORMAT"
)

// LoadEnv overlays configuration from environment variables.
// Only values present in the environment are set.
func LoadEnv(cfg *Config) {
	if cfg.Sources == nil {
		cfg.Sources = make(map[string]string)
	}

	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
			cfg.Sources["port"] = SourceEnv
		}
	}

	if v := os.Getenv(EnvRemoteOrigin); v != "" {
		cfg.RemoteOrigin = v
		cfg.Sources["remoteOrigin"] = SourceEnv
	}

	if v := os.Getenv(EnvResourceDir); v != "" {
		cfg.ResourceDir = v
		cfg.Sources["resourceDir"] = SourceEnv
	}

	if v := os.Getenv(EnvMode); v != "" {
		cfg.Mode = v
		cfg.Sources["mode"] = SourceEnv
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
		cfg.Sources["logLevel"] = SourceEnv
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.LogFormat = v
		cfg.Sources["logFormat"] = SourceEnv
	}
}

// ConfigFileFromEnv returns the config file path from the environment, or
// empty string if not set.
func ConfigFileFromEnv() string {
	return os.Getenv(EnvConfig)
}
