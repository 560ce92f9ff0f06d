package shim

import (
	"os"
	"strings"
)

// Environment markers and overrides injected by the desktop shell.
const (
	// EnvDesktopMarker is set by the shell in every embedded process.
	// Its presence is what makes IsDesktopRuntime true.
	EnvDesktopMarker = "WM_DESKTOP"

	// EnvAPIBase overrides the local gateway base URL.
	EnvAPIBase = "WM_API_BASE"

	// EnvRemoteAPIBase overrides the remote origin base URL.
	EnvRemoteAPIBase = "WM_REMOTE_API_BASE"

	// EnvVariant selects a deployment variant from the fixed host table.
	EnvVariant = "WM_VARIANT"
)

// DefaultLocalBase is the gateway base used when no override is configured.
const DefaultLocalBase = "http://127.0.0.1:46123"

// DefaultRemoteHost is the final fallback when the variant is unrecognized.
const DefaultRemoteHost = "https://worldmonitor.app"

// variantHosts maps named deployment variants to remote hostnames.
var variantHosts = map[string]string{
	"prod":    "https://worldmonitor.app",
	"staging": "https://staging.worldmonitor.app",
	"dev":     "https://dev.worldmonitor.app",
}

// IsDesktopRuntime reports whether this process runs inside the desktop
// shell's embedding context. It is a pure capability probe: true only when
// the shell-injected marker is present, false in every other hosting
// context.
func IsDesktopRuntime() bool {
	return os.Getenv(EnvDesktopMarker) != ""
}

// APIBaseURL returns the local gateway base URL, or the empty string outside
// the desktop runtime — meaning callers should use relative paths with no
// rewriting. A configured override has one trailing slash stripped.
func APIBaseURL() string {
	if !IsDesktopRuntime() {
		return ""
	}
	if override := os.Getenv(EnvAPIBase); override != "" {
		return strings.TrimSuffix(override, "/")
	}
	return DefaultLocalBase
}

// RemoteAPIBaseURL returns the remote origin base URL: an explicit override
// if present, otherwise the host for the configured deployment variant,
// otherwise the hard default.
func RemoteAPIBaseURL() string {
	if override := os.Getenv(EnvRemoteAPIBase); override != "" {
		return strings.TrimSuffix(override, "/")
	}
	if host, ok := variantHosts[os.Getenv(EnvVariant)]; ok {
		return host
	}
	return DefaultRemoteHost
}

// ToRuntimeURL qualifies an absolute path with the local gateway base when
// running in the desktop runtime. Anything that does not start with '/' is
// returned unchanged, as is everything outside the desktop runtime. This
// lets application code always use relative /api/... paths while the shim
// decides whether and how to qualify them.
func ToRuntimeURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		return path
	}
	if !IsDesktopRuntime() {
		return path
	}
	return APIBaseURL() + path
}
