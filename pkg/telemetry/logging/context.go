package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for bridge request IDs.
	RequestIDKey contextKey = "request_id"

	// RefreshIDKey is the context key for configuration refresh IDs.
	RefreshIDKey contextKey = "refresh_id"

	// TabIDKey is the context key for browser tab identifiers.
	TabIDKey contextKey = "tab_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithRefreshID adds a refresh ID to the context.
func WithRefreshID(ctx context.Context, refreshID string) context.Context {
	return context.WithValue(ctx, RefreshIDKey, refreshID)
}

// GetRefreshID retrieves the refresh ID from the context.
func GetRefreshID(ctx context.Context) string {
	if refreshID, ok := ctx.Value(RefreshIDKey).(string); ok {
		return refreshID
	}
	return ""
}

// WithTabID adds a tab identifier to the context.
func WithTabID(ctx context.Context, tabID int) context.Context {
	return context.WithValue(ctx, TabIDKey, tabID)
}

// GetTabID retrieves the tab identifier from the context.
func GetTabID(ctx context.Context) (int, bool) {
	tabID, ok := ctx.Value(TabIDKey).(int)
	return tabID, ok
}
