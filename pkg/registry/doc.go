// Package registry resolves and loads handler modules from the resource
// directory.
//
// A handler module is a file under <resourceDir>/api/ named after its
// endpoint (e.g. api/weather.expr). Resolution is an exact filename match;
// there is no wildcard or prefix matching. Modules are read and compiled
// fresh on every load so that externally updated handler files take effect
// immediately, without a gateway restart.
package registry
