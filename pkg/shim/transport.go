package shim

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/worldmonitor/gatewayd/pkg/endpoint"
	"github.com/worldmonitor/gatewayd/pkg/logging"
)

// FallbackTransport is an http.RoundTripper that routes reserved-prefix
// requests through the local gateway with remote fallback.
//
// Requests whose path does not start with /api/, or that target some
// unrelated host, pass through to the underlying transport unmodified.
// Matching requests are first attempted against the local base; if that
// attempt fails at the transport level (connection refused, DNS failure —
// not a non-2xx status), the request is replayed against the remote base.
type FallbackTransport struct {
	base       http.RoundTripper
	localBase  *url.URL
	remoteBase *url.URL
	log        *slog.Logger
}

// NewFallbackTransport creates a FallbackTransport over base. Invalid base
// URLs disable interception; every request then passes straight through.
func NewFallbackTransport(base http.RoundTripper, localBase, remoteBase string, log *slog.Logger) *FallbackTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if log == nil {
		log = logging.Nop()
	}
	local, err := url.Parse(localBase)
	if err != nil {
		local = nil
	}
	remote, err := url.Parse(remoteBase)
	if err != nil {
		remote = nil
	}
	return &FallbackTransport{base: base, localBase: local, remoteBase: remote, log: log}
}

// RoundTrip implements http.RoundTripper.
func (t *FallbackTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.intercepts(req) {
		return t.base.RoundTrip(req)
	}

	// Buffer the body so the fallback attempt can replay it.
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	localReq := t.rebase(req, t.localBase, body)
	resp, err := t.base.RoundTrip(localReq)
	if err == nil {
		return resp, nil
	}

	t.log.Warn("local gateway attempt failed, falling back to remote",
		"path", req.URL.Path, "remote", t.remoteBase.String(), "error", err)

	remoteReq := t.rebase(req, t.remoteBase, body)
	return t.base.RoundTrip(remoteReq)
}

// intercepts reports whether the request is subject to local-first routing:
// a reserved-prefix path targeting the local gateway (or carrying no host).
func (t *FallbackTransport) intercepts(req *http.Request) bool {
	if t.localBase == nil || t.remoteBase == nil {
		return false
	}
	if !strings.HasPrefix(req.URL.Path, endpoint.Prefix) {
		return false
	}
	return req.URL.Host == "" || req.URL.Host == t.localBase.Host
}

// rebase clones the request onto another base URL with a replayable body.
func (t *FallbackTransport) rebase(req *http.Request, base *url.URL, body []byte) *http.Request {
	out := req.Clone(req.Context())
	out.URL.Scheme = base.Scheme
	out.URL.Host = base.Host
	// Let the transport derive the Host header from the new URL.
	out.Host = ""
	if len(body) > 0 {
		out.Body = io.NopCloser(bytes.NewReader(body))
		out.ContentLength = int64(len(body))
	} else {
		out.Body = nil
		out.ContentLength = 0
	}
	return out
}

// Process-wide install state. Set once on first successful install, read
// thereafter, never reset outside tests.
var (
	installMu sync.Mutex
	installed bool
)

// InstallRuntimeFetchPatch replaces http.DefaultTransport with a
// FallbackTransport wired to the shim's base URLs. It is idempotent —
// repeated calls install at most once — and a no-op outside the desktop
// runtime. Returns true when this call performed the install.
func InstallRuntimeFetchPatch() bool {
	return installRuntimeFetchPatch(logging.Nop())
}

// InstallRuntimeFetchPatchWithLogger is InstallRuntimeFetchPatch with a
// logger for the fallback warning path.
func InstallRuntimeFetchPatchWithLogger(log *slog.Logger) bool {
	return installRuntimeFetchPatch(log)
}

func installRuntimeFetchPatch(log *slog.Logger) bool {
	installMu.Lock()
	defer installMu.Unlock()

	if installed || !IsDesktopRuntime() {
		return false
	}

	http.DefaultTransport = NewFallbackTransport(
		http.DefaultTransport, APIBaseURL(), RemoteAPIBaseURL(), log)
	installed = true
	return true
}

// resetInstallForTest unwinds the transport patch. Test use only.
func resetInstallForTest(prev http.RoundTripper) {
	installMu.Lock()
	defer installMu.Unlock()
	installed = false
	http.DefaultTransport = prev
}
