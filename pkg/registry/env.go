package registry

import (
	"encoding/json"
	"net/http"

	"github.com/worldmonitor/gatewayd/pkg/endpoint"
)

// requestEnv exposes a normalized request to handler expressions.
//
// Keys:
//
//	method   - HTTP method
//	path     - request path including the /api/ prefix
//	endpoint - normalized endpoint name
//	query    - first value per query parameter
//	queryAll - all values per query parameter
//	headers  - first value per canonical header name
//	body     - raw body as a string
//	json     - body decoded as JSON, or nil when the body is not valid JSON
func requestEnv(req *endpoint.Request) map[string]any {
	if req == nil {
		return map[string]any{
			"method":   "",
			"path":     "",
			"endpoint": "",
			"query":    map[string]string{},
			"queryAll": map[string][]string{},
			"headers":  map[string]string{},
			"body":     "",
			"json":     any(nil),
		}
	}

	query := map[string]string{}
	queryAll := map[string][]string{}
	for key, values := range req.Query() {
		queryAll[key] = values
		if len(values) > 0 {
			query[key] = values[0]
		}
	}

	headers := map[string]string{}
	for key := range req.Header {
		headers[http.CanonicalHeaderKey(key)] = req.Header.Get(key)
	}

	var decoded any
	if len(req.Body) > 0 {
		if err := json.Unmarshal(req.Body, &decoded); err != nil {
			decoded = nil
		}
	}

	return map[string]any{
		"method":   req.Method,
		"path":     req.Path,
		"endpoint": endpoint.Name(req.Path),
		"query":    query,
		"queryAll": queryAll,
		"headers":  headers,
		"body":     string(req.Body),
		"json":     decoded,
	}
}
