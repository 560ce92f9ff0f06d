// Package endpoint defines the request and response representations that
// flow between the gateway server, the dispatcher, handler modules, and the
// cloud proxy, along with endpoint name normalization for the reserved
// /api/ path prefix.
package endpoint
