package registry

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/worldmonitor/gatewayd/pkg/endpoint"
)

// responseFromMap converts a handler result map into a Response.
//
// Recognized keys: "status" (number, default 200), "headers" (map of string
// to string), "body" (string used verbatim, anything else JSON-encoded).
// Responses default to application/json unless the handler set its own
// Content-Type.
func responseFromMap(result map[string]any) (*endpoint.Response, error) {
	resp := endpoint.NewResponse(http.StatusOK)

	if v, ok := result["status"]; ok {
		status, err := toStatus(v)
		if err != nil {
			return nil, err
		}
		resp.Status = status
	}

	if v, ok := result["headers"]; ok {
		headers, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("handler headers must be a map, got %T", v)
		}
		for key, value := range headers {
			resp.Header.Set(key, fmt.Sprint(value))
		}
	}

	if v, ok := result["body"]; ok && v != nil {
		switch body := v.(type) {
		case string:
			resp.Body = []byte(body)
		case []byte:
			resp.Body = body
		default:
			encoded, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("encode handler body: %w", err)
			}
			resp.Body = encoded
		}
	}

	if resp.Header.Get("Content-Type") == "" {
		resp.Header.Set("Content-Type", "application/json")
	}
	return resp, nil
}

func toStatus(v any) (int, error) {
	var status int
	switch n := v.(type) {
	case int:
		status = n
	case int64:
		status = int(n)
	case float64:
		status = int(n)
	default:
		return 0, fmt.Errorf("handler status must be a number, got %T", v)
	}
	if status < 100 || status > 599 {
		return 0, fmt.Errorf("handler status %d out of range", status)
	}
	return status, nil
}
