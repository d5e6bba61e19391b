package util

import (
	"net/url"
	"strings"
)

// SafeRedirectPath constrains a caller-supplied redirect target to a
// same-origin relative path. Anything that could escape the origin
// (absolute urls, scheme-relative //host, backslash tricks, parent
// traversal) falls back to the given default path.
func SafeRedirectPath(next string, fallback string) string {
	if next == "" {
		return fallback
	}

	if !strings.HasPrefix(next, "/") {
		return fallback
	}

	// "//host" and "/\host" are treated as scheme-relative urls by browsers.
	if strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\") {
		return fallback
	}

	if strings.Contains(next, "..") {
		return fallback
	}

	parsed, err := url.Parse(next)
	if err != nil {
		return fallback
	}

	if parsed.Scheme != "" || parsed.Host != "" {
		return fallback
	}

	return next
}
