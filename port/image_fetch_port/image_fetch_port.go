package image_fetch_port

import (
	"context"
	"net/url"

	"imgd/domain"
)

// ImageFetchPort retrieves source image bytes from an upstream URL.
type ImageFetchPort interface {
	FetchImage(ctx context.Context, src *url.URL) (*domain.ImageFetchResult, error)
}
