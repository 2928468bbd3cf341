package image_transform_port

import (
	"context"

	"imgd/domain"
)

// ImageTransformPort resizes source image bytes to the requested width and
// re-encodes them for the negotiated output format.
type ImageTransformPort interface {
	Transform(ctx context.Context, src []byte, width, quality int, format domain.OutputFormat) (*domain.TransformedImage, error)
}
