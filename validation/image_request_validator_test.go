package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgd/domain"
)

func rawRequest(url, w, q []string) domain.RawImageRequest {
	return domain.RawImageRequest{URL: url, Width: w, Quality: q, Host: "cdn.example.org"}
}

func TestValidateImageRequest_Success(t *testing.T) {
	validated, err := ValidateImageRequest(
		rawRequest([]string{"https://example.com/a.jpg"}, []string{"640"}, []string{"75"}),
		domain.RequestPolicy{},
	)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a.jpg", validated.SourceURL.String())
	assert.Equal(t, 640, validated.Width)
	assert.Equal(t, 75, validated.Quality)
	assert.Equal(t, "640", validated.RawWidth)
	assert.Equal(t, "75", validated.RawQuality)
}

func TestValidateImageRequest_RelativeURLResolvesAgainstHost(t *testing.T) {
	validated, err := ValidateImageRequest(
		rawRequest([]string{"/media/a.jpg"}, []string{"640"}, []string{"75"}),
		domain.RequestPolicy{},
	)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.org/media/a.jpg", validated.SourceURL.String())
}

func TestValidateImageRequest_RejectionTaxonomy(t *testing.T) {
	widthPolicy := domain.RequestPolicy{AllowedWidths: []int{320, 640, 1024}}
	domainPolicy := domain.RequestPolicy{AllowedDomains: []string{"good.com"}}

	tests := []struct {
		name    string
		raw     domain.RawImageRequest
		policy  domain.RequestPolicy
		reason  Reason
		message string
	}{
		{
			name:    "missing url",
			raw:     rawRequest(nil, []string{"640"}, []string{"75"}),
			reason:  ReasonMissingURL,
			message: `"url" parameter is required`,
		},
		{
			name:    "array url",
			raw:     rawRequest([]string{"https://a.com/x.jpg", "https://b.com/y.jpg"}, []string{"640"}, []string{"75"}),
			reason:  ReasonArrayURL,
			message: `"url" parameter must not be an array`,
		},
		{
			name: "invalid url with no host fallback",
			raw: domain.RawImageRequest{
				URL: []string{"%zz"}, Width: []string{"640"}, Quality: []string{"75"},
			},
			reason:  ReasonInvalidURL,
			message: `"url" parameter is invalid`,
		},
		{
			name:    "unsupported scheme",
			raw:     rawRequest([]string{"ftp://example.com/a.jpg"}, []string{"640"}, []string{"75"}),
			reason:  ReasonInvalidURL,
			message: `"url" parameter is invalid`,
		},
		{
			name:    "domain not allowed",
			raw:     rawRequest([]string{"https://evil.com/x.jpg"}, []string{"640"}, []string{"75"}),
			policy:  domainPolicy,
			reason:  ReasonDomainNotAllowed,
			message: `"url" parameter is not allowed`,
		},
		{
			name:    "missing width",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, nil, []string{"75"}),
			reason:  ReasonMissingWidth,
			message: `"w" parameter (width) is required`,
		},
		{
			name:    "array width",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"640", "320"}, []string{"75"}),
			reason:  ReasonArrayWidth,
			message: `"w" parameter (width) must not be an array`,
		},
		{
			name:    "non-numeric width",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"wide"}, []string{"75"}),
			reason:  ReasonInvalidWidth,
			message: `"w" parameter (width) is invalid`,
		},
		{
			name:    "zero width",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"0"}, []string{"75"}),
			reason:  ReasonInvalidWidth,
			message: `"w" parameter (width) is invalid`,
		},
		{
			name:    "negative width",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"-1"}, []string{"75"}),
			reason:  ReasonInvalidWidth,
			message: `"w" parameter (width) is invalid`,
		},
		{
			name:    "width outside allow-list",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"500"}, []string{"75"}),
			policy:  widthPolicy,
			reason:  ReasonWidthNotAllowed,
			message: `"w" parameter (width) is not allowed`,
		},
		{
			name:    "missing quality",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"640"}, nil),
			reason:  ReasonMissingQuality,
			message: `"q" parameter (quality) is required`,
		},
		{
			name:    "array quality",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"640"}, []string{"75", "80"}),
			reason:  ReasonArrayQuality,
			message: `"q" parameter (quality) must not be an array`,
		},
		{
			name:    "non-numeric quality",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"640"}, []string{"best"}),
			reason:  ReasonInvalidQuality,
			message: `"q" parameter (quality) is invalid`,
		},
		{
			name:    "quality below bounds",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"640"}, []string{"0"}),
			reason:  ReasonInvalidQuality,
			message: `"q" parameter (quality) is invalid`,
		},
		{
			name:    "quality above bounds",
			raw:     rawRequest([]string{"https://example.com/a.jpg"}, []string{"640"}, []string{"101"}),
			reason:  ReasonInvalidQuality,
			message: `"q" parameter (quality) is invalid`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateImageRequest(tt.raw, tt.policy)
			require.Error(t, err)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.reason, reqErr.Reason)
			assert.Equal(t, tt.message, reqErr.Message)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestValidateImageRequest_QualityBoundsInclusive(t *testing.T) {
	for _, q := range []string{"1", "100"} {
		validated, err := ValidateImageRequest(
			rawRequest([]string{"https://example.com/a.jpg"}, []string{"640"}, []string{q}),
			domain.RequestPolicy{},
		)
		require.NoError(t, err, "quality %s should be accepted", q)
		assert.Equal(t, q, validated.RawQuality)
	}
}

func TestValidateImageRequest_WidthAllowListMembership(t *testing.T) {
	policy := domain.RequestPolicy{AllowedWidths: []int{320, 640, 1024}}

	for _, w := range []string{"320", "640", "1024"} {
		_, err := ValidateImageRequest(
			rawRequest([]string{"https://example.com/a.jpg"}, []string{w}, []string{"75"}),
			policy,
		)
		require.NoError(t, err, "width %s should be accepted", w)
	}
}

func TestValidateImageRequest_DomainAllowedWhenListed(t *testing.T) {
	policy := domain.RequestPolicy{AllowedDomains: []string{"good.com"}}

	validated, err := ValidateImageRequest(
		rawRequest([]string{"https://good.com/x.jpg"}, []string{"640"}, []string{"75"}),
		policy,
	)
	require.NoError(t, err)
	assert.Equal(t, "good.com", validated.SourceURL.Hostname())
}

func TestValidateImageRequest_DomainCheckedBeforeWidth(t *testing.T) {
	// Domain rejection wins even when the width is also bad: URL checks
	// run first in the fixed validation order.
	policy := domain.RequestPolicy{AllowedDomains: []string{"good.com"}}

	_, err := ValidateImageRequest(
		rawRequest([]string{"https://evil.com/x.jpg"}, []string{"bogus"}, []string{"75"}),
		policy,
	)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, ReasonDomainNotAllowed, reqErr.Reason)
}

func TestValidateImageRequest_ArityCheckedBeforeEmptyFirstValue(t *testing.T) {
	// Arity follows presence: a parameter given twice is rejected as an
	// array even when its first value is empty, never as missing.
	tests := []struct {
		name   string
		url    []string
		width  []string
		qual   []string
		reason Reason
	}{
		{
			name:   "url empty then repeated",
			url:    []string{"", "https://example.com/a.jpg"},
			width:  []string{"640"},
			qual:   []string{"75"},
			reason: ReasonArrayURL,
		},
		{
			name:   "width empty then repeated",
			url:    []string{"https://example.com/a.jpg"},
			width:  []string{"", "640"},
			qual:   []string{"75"},
			reason: ReasonArrayWidth,
		},
		{
			name:   "quality empty then repeated",
			url:    []string{"https://example.com/a.jpg"},
			width:  []string{"640"},
			qual:   []string{"", "75"},
			reason: ReasonArrayQuality,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateImageRequest(rawRequest(tt.url, tt.width, tt.qual), domain.RequestPolicy{})

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.reason, reqErr.Reason)
		})
	}
}
