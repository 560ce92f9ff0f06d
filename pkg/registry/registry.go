package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/worldmonitor/gatewayd/pkg/endpoint"
	"github.com/worldmonitor/gatewayd/pkg/logging"
)

// Kind identifies what form a handler module takes on disk.
type Kind string

const (
	// KindScript is an expression script producing a response map.
	KindScript Kind = "script"
	// KindDeclarative is a YAML response definition with embedded expressions.
	KindDeclarative Kind = "declarative"
)

// Extensions checked during resolution, in priority order.
var extensions = []struct {
	ext  string
	kind Kind
}{
	{".expr", KindScript},
	{".yaml", KindDeclarative},
}

// ErrNotFound is returned by Resolve when no handler module exists for an
// endpoint. It marks the normal pass-through path, not a failure.
var ErrNotFound = errors.New("no handler module for endpoint")

// LoadError indicates a handler module exists on disk but could not be
// turned into an invocable handler. Distinct from ErrNotFound.
type LoadError struct {
	Endpoint string
	Path     string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load handler %q from %s: %v", e.Endpoint, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Module is a resolved handler module: a file known to exist at resolution
// time. Loading may still fail if the content is malformed.
type Module struct {
	Endpoint string
	Path     string
	Kind     Kind
}

// Handler is an invocable handler produced by loading a module.
type Handler interface {
	// Invoke runs the handler against a normalized request. Any error is an
	// invocation failure, absorbed by the dispatcher's fallback policy.
	Invoke(ctx context.Context, req *endpoint.Request) (*endpoint.Response, error)
}

// Registry resolves endpoint names to handler modules under the resource
// directory's api/ subfolder.
type Registry struct {
	apiDir string
	log    *slog.Logger
}

// Option is a functional option for configuring a Registry.
type Option func(*Registry)

// WithLogger sets the operational logger for the registry.
func WithLogger(log *slog.Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Registry rooted at resourceDir. Handler modules live in
// resourceDir/api.
func New(resourceDir string, opts ...Option) *Registry {
	r := &Registry{
		apiDir: filepath.Join(resourceDir, "api"),
		log:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// APIDir returns the directory searched for handler modules.
func (r *Registry) APIDir() string {
	return r.apiDir
}

// Resolve maps an endpoint name to a handler module by filesystem existence
// check. Returns ErrNotFound when no module file exists. Names that would
// escape the api directory are treated as not found.
func (r *Registry) Resolve(name string) (*Module, error) {
	if !safeName(name) {
		return nil, ErrNotFound
	}

	for _, e := range extensions {
		path := filepath.Join(r.apiDir, name+e.ext)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		return &Module{Endpoint: name, Path: path, Kind: e.kind}, nil
	}
	return nil, ErrNotFound
}

// Load reads and compiles a module fresh. Nothing is cached between calls:
// each load gets a new token and re-reads the file, so an edited handler is
// picked up on the very next request.
func (r *Registry) Load(m *Module) (Handler, error) {
	token := uuid.NewString()

	data, err := os.ReadFile(m.Path)
	if err != nil {
		return nil, &LoadError{Endpoint: m.Endpoint, Path: m.Path, Err: err}
	}

	var h Handler
	switch m.Kind {
	case KindScript:
		h, err = compileScript(m, token, data)
	case KindDeclarative:
		h, err = parseDeclarative(m, token, data)
	default:
		err = fmt.Errorf("unknown module kind %q", m.Kind)
	}
	if err != nil {
		return nil, &LoadError{Endpoint: m.Endpoint, Path: m.Path, Err: err}
	}

	r.log.Debug("handler module loaded",
		"endpoint", m.Endpoint, "kind", m.Kind, "loadToken", token)
	return h, nil
}

// safeName rejects endpoint names that are empty, absolute, or contain path
// traversal. Nested names like "news/top" are allowed.
func safeName(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") {
		return false
	}
	clean := filepath.ToSlash(filepath.Clean(name))
	if clean != name {
		return false
	}
	for _, part := range strings.Split(clean, "/") {
		if part == ".." || part == "." || part == "" {
			return false
		}
	}
	return true
}
