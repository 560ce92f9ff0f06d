// Package dispatch implements the gateway's core request routing: local
// handler modules are tried first as optimizations, and every local failure
// mode degrades to the cloud pass-through. Only total cloud unavailability
// surfaces to the caller.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/worldmonitor/gatewayd/pkg/config"
	"github.com/worldmonitor/gatewayd/pkg/endpoint"
	"github.com/worldmonitor/gatewayd/pkg/logging"
	"github.com/worldmonitor/gatewayd/pkg/registry"
)

// Introspection paths answered directly, without registry or proxy.
const (
	ServiceStatusPath = "/api/service-status"
	LocalStatusPath   = "/api/local-status"
)

// Error bodies for the two failure-exhaustion cases.
const (
	errCloudUnavailable    = "cloud pass-through unavailable"
	errFallbackUnavailable = "local handler failed and cloud fallback unavailable"
)

// Resolver resolves and loads handler modules. *registry.Registry satisfies
// it; tests substitute fakes.
type Resolver interface {
	Resolve(name string) (*registry.Module, error)
	Load(m *registry.Module) (registry.Handler, error)
}

// Forwarder relays a request to the cloud origin.
type Forwarder interface {
	Forward(ctx context.Context, req *endpoint.Request) (*endpoint.Response, error)
}

// Dispatcher routes inbound requests between local handler modules and the
// cloud pass-through.
type Dispatcher struct {
	cfg      *config.Config
	registry Resolver
	cloud    Forwarder
	apiDir   string
	log      *slog.Logger
}

// Option is a functional option for configuring a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(d *Dispatcher) {
		if log != nil {
			d.log = log
		}
	}
}

// WithAPIDir overrides the handler directory reported by introspection
// endpoints. Defaults to <resourceDir>/api.
func WithAPIDir(dir string) Option {
	return func(d *Dispatcher) {
		d.apiDir = dir
	}
}

// New creates a Dispatcher.
func New(cfg *config.Config, reg Resolver, cloud Forwarder, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		registry: reg,
		cloud:    cloud,
		apiDir:   filepath.Join(cfg.ResourceDir, "api"),
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch routes one request to completion. It never returns an error; the
// one terminal failure it can report is itself a JSON response.
//
// Order: introspection endpoints first, then local handler resolution, then
// cloud pass-through. A resolved handler that fails to load or throws during
// invocation is logged and absorbed into a cloud fallback attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, req *endpoint.Request) *endpoint.Response {
	switch req.Path {
	case ServiceStatusPath:
		return d.serviceStatus()
	case LocalStatusPath:
		return d.localStatus()
	}

	name := endpoint.Name(req.Path)

	module, err := d.registry.Resolve(name)
	if errors.Is(err, registry.ErrNotFound) {
		// The expected path for any endpoint not implemented locally.
		resp, err := d.cloud.Forward(ctx, req)
		if err != nil {
			d.log.Error("cloud pass-through failed", "endpoint", name, "error", err)
			return errorResponse(http.StatusBadGateway, errCloudUnavailable)
		}
		return resp
	}
	if err != nil {
		// An unreadable handler directory is a local failure like any
		// other: absorbed into the fallback below.
		d.log.Warn("handler resolution failed, falling back to cloud",
			"endpoint", name, "error", err)
	} else if resp, ok := d.invokeLocal(ctx, name, module, req); ok {
		return resp
	}

	// Recovery path: the local handler is an override, never the only
	// source of truth. Its failure must stay invisible while the cloud
	// can still answer.
	resp, err := d.cloud.Forward(ctx, req)
	if err != nil {
		d.log.Error("cloud fallback failed after local handler failure",
			"endpoint", name, "error", err)
		return errorResponse(http.StatusBadGateway, errFallbackUnavailable)
	}
	return resp
}

// invokeLocal loads and runs a resolved handler module. The second return
// is false when the local attempt failed and the caller should fall back.
func (d *Dispatcher) invokeLocal(ctx context.Context, name string, module *registry.Module, req *endpoint.Request) (*endpoint.Response, bool) {
	handler, err := d.registry.Load(module)
	if err != nil {
		d.log.Warn("handler module failed to load, falling back to cloud",
			"endpoint", name, "path", module.Path, "error", err)
		return nil, false
	}

	resp, err := handler.Invoke(ctx, req)
	if err != nil {
		d.log.Warn("handler invocation failed, falling back to cloud",
			"endpoint", name, "error", err)
		return nil, false
	}
	return resp, true
}

// serviceStatus reports the capability summary for the local and cloud
// pass-through components. It never fails and never proxies.
func (d *Dispatcher) serviceStatus() *endpoint.Response {
	return jsonResponse(http.StatusOK, map[string]any{
		"success": true,
		"summary": map[string]any{
			"operational": 2,
			"components":  []string{"local-handlers", "cloud-passthrough"},
		},
		"local": map[string]any{
			"enabled": true,
			"port":    d.cfg.Port,
			"apiDir":  d.apiDir,
			"mode":    d.cfg.Mode,
		},
		"cloud": map[string]any{
			"enabled": true,
			"origin":  d.cfg.RemoteOrigin,
		},
	})
}

// localStatus echoes the runtime configuration.
func (d *Dispatcher) localStatus() *endpoint.Response {
	return jsonResponse(http.StatusOK, map[string]any{
		"mode":         d.cfg.Mode,
		"port":         d.cfg.Port,
		"apiDir":       d.apiDir,
		"remoteOrigin": d.cfg.RemoteOrigin,
	})
}

func jsonResponse(status int, body any) *endpoint.Response {
	resp := endpoint.NewResponse(status)
	resp.Header.Set("Content-Type", "application/json")
	resp.Body, _ = json.Marshal(body)
	return resp
}

func errorResponse(status int, message string) *endpoint.Response {
	return jsonResponse(status, map[string]string{"error": message})
}
