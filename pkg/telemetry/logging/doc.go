// Package logging builds the enforcer's structured logger on log/slog.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json"})
//
//	ctx = logging.WithRefreshID(ctx, id)
//	logger.InfoContext(ctx, "refresh started")  // includes refresh_id
//
// Records logged with a context pick up the request, refresh and tab
// identifiers stored in it, plus the OpenTelemetry trace and span IDs when a
// span is active.
//
// # URL Redaction
//
// Attributes named url, origin or target lose their query string, fragment
// and user info unless FullURLs is set:
//
//	https://news.com/a?session=abc  ->  https://news.com/a?REDACTED
package logging
