package pipeline

import (
	"net/url"
	"strings"
)

// ResolveURL turns a possibly-relative asset URL into an absolute one.
//
// URLs that already carry an http:// or https:// scheme are returned
// unchanged. Without a baseURL the input is returned as-is, relative or not.
// Otherwise the origin of baseURL (scheme and host, any path dropped) is
// joined with rawURL so that exactly one slash separates them.
//
// ResolveURL never fails and is idempotent: resolving its own output with the
// same baseURL returns the same string.
func ResolveURL(rawURL, baseURL string) string {
	if HasHTTPScheme(rawURL) {
		return rawURL
	}
	if baseURL == "" {
		return rawURL
	}
	return originOf(baseURL) + "/" + strings.TrimLeft(rawURL, "/")
}

// HasHTTPScheme reports whether s starts with http:// or https://,
// ignoring the case of the scheme.
func HasHTTPScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// originOf reduces baseURL to scheme://host. Values that do not parse as an
// absolute URL only lose their trailing slashes.
func originOf(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err == nil && u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}
	return strings.TrimRight(baseURL, "/")
}
