// Package httpserver exposes compile/run operations of the pipeline engine
// over HTTP, backed by Gin, in the same style as this module's teacher
// exposes its services: a minimal h2c-wrapped server with a small
// middleware stack and a handful of JSON endpoints.
package httpserver
