package endpoint

import "strings"

// Prefix is the reserved path prefix that marks traffic subject to gateway
// routing. Paths outside this prefix are rejected at the server boundary.
const Prefix = "/api/"

// IndexName is the sentinel endpoint name for the bare prefix path.
const IndexName = "index"

// HasPrefix reports whether path falls under the reserved API prefix.
// The bare "/api" (no trailing slash) counts as prefixed.
func HasPrefix(path string) bool {
	return path == "/api" || strings.HasPrefix(path, Prefix)
}

// Name derives the endpoint name from a request path: the reserved prefix
// and one trailing slash are stripped, and the empty result maps to
// IndexName. The mapping is pure; a given normalized path always yields the
// same name.
func Name(path string) string {
	name := strings.TrimPrefix(path, "/api")
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimSuffix(name, "/")
	if name == "" {
		return IndexName
	}
	return name
}
