// Package validation checks raw image requests against server policy.
// Checks run in a fixed order and short-circuit on the first failure so
// rejection reasons are deterministic and testable.
package validation

import (
	"net/url"
	"strconv"

	"imgd/domain"
)

// Reason identifies a single rejection condition.
type Reason string

const (
	ReasonMissingURL       Reason = "missing_url"
	ReasonArrayURL         Reason = "array_url"
	ReasonInvalidURL       Reason = "invalid_url"
	ReasonDomainNotAllowed Reason = "domain_not_allowed"
	ReasonMissingWidth     Reason = "missing_width"
	ReasonArrayWidth       Reason = "array_width"
	ReasonInvalidWidth     Reason = "invalid_width"
	ReasonWidthNotAllowed  Reason = "width_not_allowed"
	ReasonMissingQuality   Reason = "missing_quality"
	ReasonArrayQuality     Reason = "array_quality"
	ReasonInvalidQuality   Reason = "invalid_quality"
)

// messages maps each rejection reason to its stable, client-visible wording.
// External consumers branch on these strings; do not reword them.
var messages = map[Reason]string{
	ReasonMissingURL:       `"url" parameter is required`,
	ReasonArrayURL:         `"url" parameter must not be an array`,
	ReasonInvalidURL:       `"url" parameter is invalid`,
	ReasonDomainNotAllowed: `"url" parameter is not allowed`,
	ReasonMissingWidth:     `"w" parameter (width) is required`,
	ReasonArrayWidth:       `"w" parameter (width) must not be an array`,
	ReasonInvalidWidth:     `"w" parameter (width) is invalid`,
	ReasonWidthNotAllowed:  `"w" parameter (width) is not allowed`,
	ReasonMissingQuality:   `"q" parameter (quality) is required`,
	ReasonArrayQuality:     `"q" parameter (quality) must not be an array`,
	ReasonInvalidQuality:   `"q" parameter (quality) is invalid`,
}

// RequestError is a policy rejection of a raw image request.
type RequestError struct {
	Param   string
	Reason  Reason
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

func reject(param string, reason Reason) *RequestError {
	return &RequestError{Param: param, Reason: reason, Message: messages[reason]}
}

// ValidateImageRequest validates raw query values against the policy and
// returns a policy-compliant request. Pure function of its inputs.
func ValidateImageRequest(raw domain.RawImageRequest, policy domain.RequestPolicy) (*domain.ValidatedImageRequest, error) {
	sourceURL, err := validateURL(raw)
	if err != nil {
		return nil, err
	}
	if !policy.DomainAllowed(sourceURL.Hostname()) {
		return nil, reject("url", ReasonDomainNotAllowed)
	}

	rawWidth, width, err := validateWidth(raw.Width, policy)
	if err != nil {
		return nil, err
	}

	rawQuality, quality, err := validateQuality(raw.Quality)
	if err != nil {
		return nil, err
	}

	return &domain.ValidatedImageRequest{
		SourceURL:  sourceURL,
		Width:      width,
		Quality:    quality,
		RawWidth:   rawWidth,
		RawQuality: rawQuality,
	}, nil
}

func validateURL(raw domain.RawImageRequest) (*url.URL, error) {
	if len(raw.URL) == 0 {
		return nil, reject("url", ReasonMissingURL)
	}
	if len(raw.URL) > 1 {
		return nil, reject("url", ReasonArrayURL)
	}
	if raw.URL[0] == "" {
		return nil, reject("url", ReasonMissingURL)
	}

	value := raw.URL[0]

	parsed, err := url.Parse(value)
	if err == nil && parsed.IsAbs() && parsed.Host != "" {
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return nil, reject("url", ReasonInvalidURL)
		}
		return parsed, nil
	}

	// Not absolute: retry relative against the requesting host.
	if raw.Host == "" {
		return nil, reject("url", ReasonInvalidURL)
	}
	base := &url.URL{Scheme: "https", Host: raw.Host}
	resolved, err := base.Parse(value)
	if err != nil || resolved.Host == "" {
		return nil, reject("url", ReasonInvalidURL)
	}
	return resolved, nil
}

func validateWidth(values []string, policy domain.RequestPolicy) (string, int, error) {
	if len(values) == 0 {
		return "", 0, reject("w", ReasonMissingWidth)
	}
	if len(values) > 1 {
		return "", 0, reject("w", ReasonArrayWidth)
	}
	if values[0] == "" {
		return "", 0, reject("w", ReasonMissingWidth)
	}

	width, err := strconv.Atoi(values[0])
	if err != nil || width < 1 {
		return "", 0, reject("w", ReasonInvalidWidth)
	}
	if !policy.WidthAllowed(width) {
		return "", 0, reject("w", ReasonWidthNotAllowed)
	}
	return values[0], width, nil
}

func validateQuality(values []string) (string, int, error) {
	if len(values) == 0 {
		return "", 0, reject("q", ReasonMissingQuality)
	}
	if len(values) > 1 {
		return "", 0, reject("q", ReasonArrayQuality)
	}
	if values[0] == "" {
		return "", 0, reject("q", ReasonMissingQuality)
	}

	quality, err := strconv.Atoi(values[0])
	if err != nil || quality < 1 || quality > 100 {
		return "", 0, reject("q", ReasonInvalidQuality)
	}
	return values[0], quality, nil
}
