// Package config holds the gateway's process-wide runtime configuration.
//
// Configuration is assembled once at startup with precedence
// flags > environment > config file > defaults, and is immutable
// thereafter. Every request reads the same Config value; no locking is
// required for concurrent access.
package config
