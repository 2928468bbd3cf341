package domain

import (
	"net/url"
	"strings"
)

// RequestPolicy is the server-side policy a raw request is validated against.
// Empty lists mean unrestricted. Loaded once from configuration, never mutated.
type RequestPolicy struct {
	AllowedWidths  []int
	AllowedDomains []string
}

// WidthAllowed reports whether the policy permits the given width.
func (p RequestPolicy) WidthAllowed(width int) bool {
	if len(p.AllowedWidths) == 0 {
		return true
	}
	for _, w := range p.AllowedWidths {
		if w == width {
			return true
		}
	}
	return false
}

// DomainAllowed reports whether the policy permits fetching from the given
// hostname. Matching is exact: the allow-list is operator-supplied per host.
func (p RequestPolicy) DomainAllowed(hostname string) bool {
	if len(p.AllowedDomains) == 0 {
		return true
	}
	hostname = strings.ToLower(hostname)
	for _, d := range p.AllowedDomains {
		if strings.ToLower(d) == hostname {
			return true
		}
	}
	return false
}

// RawImageRequest carries the untrusted request values exactly as received.
// Query parameters keep their full multi-value shape so arity violations are
// detectable. Consumed immediately by validation, never persisted.
type RawImageRequest struct {
	URL     []string
	Width   []string
	Quality []string
	Accept  string
	Host    string
}

// ValidatedImageRequest is only constructible through successful validation;
// all fields satisfy the policy. RawWidth and RawQuality hold the original
// string representations, which participate in cache-key derivation.
type ValidatedImageRequest struct {
	SourceURL  *url.URL
	Width      int
	Quality    int
	RawWidth   string
	RawQuality string
}
