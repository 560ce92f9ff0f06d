package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFileName is the config file looked up in the working
// directory when no explicit path is given.
const DefaultConfigFileName = "gatewayd.yaml"

// LoadFile loads a Config overlay from a YAML file. Only fields present in
// the file are considered set; the caller merges them over defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Sources = make(map[string]string)
	return &cfg, nil
}

// merge overlays non-zero fields of src onto dst, tagging them with source.
func merge(dst, src *Config, source string) {
	if src.Port != 0 {
		dst.Port = src.Port
		dst.Sources["port"] = source
	}
	if src.RemoteOrigin != "" {
		dst.RemoteOrigin = src.RemoteOrigin
		dst.Sources["remoteOrigin"] = source
	}
	if src.ResourceDir != "" {
		dst.ResourceDir = src.ResourceDir
		dst.Sources["resourceDir"] = source
	}
	if src.Mode != "" {
		dst.Mode = src.Mode
		dst.Sources["mode"] = source
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
		dst.Sources["logLevel"] = source
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
		dst.Sources["logFormat"] = source
	}
}

// Load assembles the effective configuration.
// Precedence: env > config file > defaults. An explicit configFile argument
// (or GATEWAYD_CONFIG) must exist; the default gatewayd.yaml is optional.
// Callers overlay any flag values and then run Validate.
func Load(configFile string) (*Config, error) {
	cfg := NewDefault()

	explicit := configFile != ""
	if configFile == "" {
		configFile = ConfigFileFromEnv()
		explicit = configFile != ""
	}
	if configFile == "" {
		configFile = DefaultConfigFileName
	}

	fileCfg, err := LoadFile(configFile)
	switch {
	case err == nil:
		merge(cfg, fileCfg, SourceFile)
	case os.IsNotExist(err) && !explicit:
		// Optional default file; nothing to overlay.
	default:
		return nil, err
	}

	LoadEnv(cfg)
	return cfg, nil
}
