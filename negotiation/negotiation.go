// Package negotiation selects the output media type for a response from the
// client's Accept header, scored against the fixed list of formats the
// transform pipeline can produce.
package negotiation

import (
	"github.com/munnerz/goautoneg"

	"imgd/domain"
)

// candidates is the ordered server-supported output list. Order breaks ties
// between equally weighted client preferences.
var candidates = []string{
	string(domain.FormatWebP),
	string(domain.FormatAVIF),
}

// NegotiateFormat picks the best-matching output format for the Accept
// header. An absent or malformed header negotiates nothing rather than
// failing: the transform then stays on the source codec path.
func NegotiateFormat(acceptHeader string) domain.OutputFormat {
	if acceptHeader == "" {
		return domain.FormatUnspecified
	}

	switch goautoneg.Negotiate(acceptHeader, candidates) {
	case string(domain.FormatWebP):
		return domain.FormatWebP
	case string(domain.FormatAVIF):
		return domain.FormatAVIF
	}
	return domain.FormatUnspecified
}
