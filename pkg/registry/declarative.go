package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/worldmonitor/gatewayd/pkg/endpoint"
)

// handlerSchema validates the declarative handler document shape before any
// expression compilation happens.
const handlerSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "status": {"type": "integer", "minimum": 100, "maximum": 599},
    "headers": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "body": {"type": "string"},
    "bodyJson": {}
  },
  "not": {"required": ["body", "bodyJson"]},
  "additionalProperties": false
}`

var compiledHandlerSchema = jsonschema.MustCompileString("handler.schema.json", handlerSchema)

// declarativeSpec is the parsed form of a .yaml handler module.
type declarativeSpec struct {
	Status   int               `yaml:"status"`
	Headers  map[string]string `yaml:"headers"`
	Body     string            `yaml:"body"`
	BodyJSON any               `yaml:"bodyJson"`
}

// declarativeHandler renders a declarative response spec. Header values and
// body strings may embed {{ ... }} expressions; all of them are compiled at
// load time so a malformed expression is a load error, not an invocation one.
type declarativeHandler struct {
	module  *Module
	token   string
	spec    *declarativeSpec
	headers map[string]*template
	body    *template
}

// parseDeclarative parses and validates a .yaml handler module.
func parseDeclarative(m *Module, token string, data []byte) (Handler, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	// Round-trip through JSON so the schema validator sees JSON-typed values.
	jsonDoc, err := yamlToJSONValue(doc)
	if err != nil {
		return nil, err
	}
	if err := compiledHandlerSchema.Validate(jsonDoc); err != nil {
		return nil, fmt.Errorf("invalid handler document: %w", err)
	}

	var spec declarativeSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if spec.Status == 0 {
		spec.Status = http.StatusOK
	}

	h := &declarativeHandler{
		module:  m,
		token:   token,
		spec:    &spec,
		headers: make(map[string]*template),
	}
	for key, value := range spec.Headers {
		tmpl, err := parseTemplate(value, token)
		if err != nil {
			return nil, fmt.Errorf("header %q: %w", key, err)
		}
		h.headers[key] = tmpl
	}
	if spec.Body != "" {
		tmpl, err := parseTemplate(spec.Body, token)
		if err != nil {
			return nil, fmt.Errorf("body: %w", err)
		}
		h.body = tmpl
	}
	return h, nil
}

// Invoke implements Handler.
func (h *declarativeHandler) Invoke(ctx context.Context, req *endpoint.Request) (*endpoint.Response, error) {
	resp := endpoint.NewResponse(h.spec.Status)

	env := scriptEnv(req, h.token)
	for key, tmpl := range h.headers {
		value, err := tmpl.renderString(env)
		if err != nil {
			return nil, fmt.Errorf("handler %q header %q: %w", h.module.Endpoint, key, err)
		}
		resp.Header.Set(key, value)
	}

	switch {
	case h.body != nil:
		body, err := h.body.renderString(env)
		if err != nil {
			return nil, fmt.Errorf("handler %q body: %w", h.module.Endpoint, err)
		}
		resp.Body = []byte(body)
	case h.spec.BodyJSON != nil:
		rendered, err := renderValue(h.spec.BodyJSON, h.token, env)
		if err != nil {
			return nil, fmt.Errorf("handler %q bodyJson: %w", h.module.Endpoint, err)
		}
		encoded, err := json.Marshal(rendered)
		if err != nil {
			return nil, fmt.Errorf("handler %q bodyJson: %w", h.module.Endpoint, err)
		}
		resp.Body = encoded
	}

	if resp.Header.Get("Content-Type") == "" {
		resp.Header.Set("Content-Type", "application/json")
	}
	return resp, nil
}

// renderValue walks an arbitrary YAML value evaluating string leaves as
// templates. A string that is exactly one expression keeps the evaluated
// value's type instead of being stringified.
func renderValue(v any, token string, env map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		tmpl, err := parseTemplate(val, token)
		if err != nil {
			return nil, err
		}
		return tmpl.render(env)
	case map[string]any:
		out := make(map[string]any, len(val))
		for key, item := range val {
			rendered, err := renderValue(item, token, env)
			if err != nil {
				return nil, err
			}
			out[key] = rendered
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			rendered, err := renderValue(item, token, env)
			if err != nil {
				return nil, err
			}
			out[i] = rendered
		}
		return out, nil
	default:
		return v, nil
	}
}

// yamlToJSONValue converts a yaml-decoded value into json-decoded form.
func yamlToJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("handler document is not JSON-representable: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
