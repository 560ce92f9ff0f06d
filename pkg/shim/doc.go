// Package shim is the client-side runtime library for applications running
// inside the worldmonitor desktop shell.
//
// It detects the desktop runtime from shell-injected environment markers,
// computes the local and remote API base URLs, and installs an HTTP
// transport patch that routes reserved-prefix (/api/) requests through the
// local gateway first, retrying against the remote origin when the local
// attempt fails at the network level. This mirrors, at the client edge, the
// same local-first/cloud-fallback policy the gateway dispatcher implements
// server-side.
package shim
