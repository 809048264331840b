// Package observability builds the process logger and the HTTP access log.
//
// Loggers are zap based: JSON encoding in production, console encoding for
// local development. The access log middleware reads the request ID that chi's
// RequestID middleware stores in the request context.
package observability
