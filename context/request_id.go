// Package context carries per-call values (request id, tool name) used for
// log correlation across the tool server and its adapters.
package context

import (
	stdctx "context"

	"github.com/google/uuid"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	toolNameKey
)

// NewRequestID generates a new unique request ID
func NewRequestID() string {
	return uuid.New().String()
}

// WithRequestID adds a request ID to the context
func WithRequestID(parent stdctx.Context, requestID string) stdctx.Context {
	return stdctx.WithValue(parent, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from the context
func RequestIDFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, requestIDKey)
}

// WithToolName records which tool is being executed.
func WithToolName(parent stdctx.Context, name string) stdctx.Context {
	return stdctx.WithValue(parent, toolNameKey, name)
}

// ToolNameFromContext returns the tool recorded by WithToolName, if any.
func ToolNameFromContext(ctx stdctx.Context) string {
	return stringValue(ctx, toolNameKey)
}

func stringValue(ctx stdctx.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
