package domain

import "io"

// OutputFormat is one of the fixed output media types the server can
// negotiate. The zero value means no format was negotiated and the transform
// stays on the source codec path.
type OutputFormat string

const (
	FormatUnspecified OutputFormat = ""
	FormatWebP        OutputFormat = "image/webp"
	FormatAVIF        OutputFormat = "image/avif"
)

// MediaType returns the media type identifier used in cache-key derivation.
func (f OutputFormat) MediaType() string {
	if f == FormatUnspecified {
		return "none"
	}
	return string(f)
}

// ImageFetchResult is the outcome of fetching a source image.
type ImageFetchResult struct {
	URL         string
	ContentType string
	Data        []byte
}

// TransformedImage is the outcome of the resize/re-encode step.
type TransformedImage struct {
	Data        []byte
	ContentType string
	Width       int
	Height      int
}

// ImageServeResult is a response-ready image body. Body is a one-shot stream;
// the caller owns closing it.
type ImageServeResult struct {
	ContentType string
	Body        io.ReadCloser
	FromCache   bool
}
