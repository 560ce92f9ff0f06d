// Package proxy forwards gateway requests verbatim to the remote cloud
// origin. It is a transparent relay: upstream responses come back as-is,
// including non-2xx statuses, and only network-level failures are reported
// as errors.
package proxy

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/worldmonitor/gatewayd/pkg/endpoint"
	"github.com/worldmonitor/gatewayd/pkg/logging"
)

// DefaultMaxBodySize is the maximum response body size to buffer (10MB).
const DefaultMaxBodySize = 10 * 1024 * 1024

// Forwarder relays requests to a fixed remote origin.
type Forwarder struct {
	remoteOrigin string
	client       *http.Client
	log          *slog.Logger
	maxBodySize  int64
}

// Option is a functional option for configuring a Forwarder.
type Option func(*Forwarder)

// WithClient sets the HTTP client used for upstream round trips.
func WithClient(client *http.Client) Option {
	return func(f *Forwarder) {
		if client != nil {
			f.client = client
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(f *Forwarder) {
		if log != nil {
			f.log = log
		}
	}
}

// New creates a Forwarder targeting remoteOrigin. A trailing slash on the
// origin is stripped so concatenation with request paths stays clean.
func New(remoteOrigin string, opts ...Option) *Forwarder {
	f := &Forwarder{
		remoteOrigin: strings.TrimSuffix(remoteOrigin, "/"),
		client:       &http.Client{Timeout: 30 * time.Second},
		log:          logging.Nop(),
		maxBodySize:  DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RemoteOrigin returns the configured upstream base URL.
func (f *Forwarder) RemoteOrigin() string {
	return f.remoteOrigin
}

// Forward sends the request to the remote origin with its original path and
// query string unchanged and returns the upstream response fully buffered.
// A non-nil error means the upstream was unreachable at the network level;
// upstream HTTP errors (4xx/5xx) are returned as normal responses.
func (f *Forwarder) Forward(ctx context.Context, req *endpoint.Request) (*endpoint.Response, error) {
	upstreamURL := f.remoteOrigin + req.RequestURI()

	outReq, err := http.NewRequestWithContext(ctx, req.Method, upstreamURL, req.BodyReader())
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	copyHeaders(outReq.Header, req.Header)
	removeHopByHopHeaders(outReq.Header)

	f.log.Debug("forwarding to cloud", "method", req.Method, "url", upstreamURL)

	resp, err := f.client.Do(outReq)
	if err != nil {
		return nil, fmt.Errorf("cloud request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read cloud response: %w", err)
	}

	out := endpoint.NewResponse(resp.StatusCode)
	copyHeaders(out.Header, resp.Header)
	out.Body = body
	return out, nil
}

// copyHeaders copies headers from src to dst, preserving multi-valued
// entries as repeated header lines.
func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}

// removeHopByHopHeaders removes headers that must not be forwarded.
func removeHopByHopHeaders(h http.Header) {
	hopByHopHeaders := []string{
		"Connection",
		"Keep-Alive",
		"Proxy-Authenticate",
		"Proxy-Authorization",
		"Proxy-Connection",
		"TE",
		"Trailers",
		"Transfer-Encoding",
		"Upgrade",
	}

	for _, header := range hopByHopHeaders {
		h.Del(header)
	}
}
