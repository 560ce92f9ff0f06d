// Package logging provides structured logging setup for gatewayd.
//
// It is a thin wrapper around log/slog that standardizes configuration
// (level, format, output) across the gateway binary and its packages.
package logging
