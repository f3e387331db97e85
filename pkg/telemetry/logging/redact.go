package logging

import (
	"log/slog"
	"net/url"
)

// RedactedMarker replaces the query and fragment of logged URLs.
const RedactedMarker = "REDACTED"

// urlKeys are the attribute keys whose values are navigation URLs.
var urlKeys = map[string]bool{
	"url":    true,
	"origin": true,
	"target": true,
}

func redactURLAttr(groups []string, a slog.Attr) slog.Attr {
	if !urlKeys[a.Key] || a.Value.Kind() != slog.KindString {
		return a
	}
	return slog.String(a.Key, RedactURL(a.Value.String()))
}

// RedactURL strips credentials, query and fragment from rawURL. Strings
// that do not parse are returned unchanged.
func RedactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.RawQuery == "" && u.Fragment == "" && u.User == nil {
		return rawURL
	}
	if u.User != nil {
		u.User = url.User(RedactedMarker)
	}
	if u.RawQuery != "" {
		u.RawQuery = RedactedMarker
	}
	if u.Fragment != "" {
		u.Fragment = RedactedMarker
		u.RawFragment = ""
	}
	return u.String()
}
