package endpoint

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
)

// Request is the normalized, fully buffered representation of an inbound
// gateway request. The body is read once at the server boundary; everything
// downstream works with the buffered bytes.
type Request struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// FromHTTP builds a Request from an *http.Request, buffering the body up to
// maxBody bytes. The original body is closed.
func FromHTTP(r *http.Request, maxBody int64) (*Request, error) {
	var body []byte
	if r.Body != nil {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, maxBody))
		if err != nil {
			return nil, err
		}
		_ = r.Body.Close()
	}

	return &Request{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	}, nil
}

// Query parses the raw query string into values. Malformed pairs are dropped.
func (r *Request) Query() url.Values {
	v, _ := url.ParseQuery(r.RawQuery)
	return v
}

// RequestURI returns the path plus query string, as it appeared on the wire.
func (r *Request) RequestURI() string {
	if r.RawQuery == "" {
		return r.Path
	}
	return r.Path + "?" + r.RawQuery
}

// HasBody reports whether a body should be forwarded for this request.
// GET and HEAD requests never carry a body upstream.
func (r *Request) HasBody() bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return false
	}
	return len(r.Body) > 0
}

// BodyReader returns a fresh reader over the buffered body, or nil when no
// body should be sent. Safe to call repeatedly; each call replays the bytes.
func (r *Request) BodyReader() io.Reader {
	if !r.HasBody() {
		return nil
	}
	return bytes.NewReader(r.Body)
}

// Response is a fully constructed gateway response. It is always built in
// memory before being written, so a failure can never leak a partial body.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates a Response with an empty header map.
func NewResponse(status int) *Response {
	return &Response{
		Status: status,
		Header: make(http.Header),
	}
}

// Write writes the response to w: headers first (multi-valued entries
// preserved), then status, then body.
func (resp *Response) Write(w http.ResponseWriter) {
	for key, values := range resp.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(resp.Status)
	if len(resp.Body) > 0 {
		_, _ = w.Write(resp.Body)
	}
}
