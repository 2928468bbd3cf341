package image_transform_gateway

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"imgd/domain"
	"imgd/utils/errors"
)

// NativeTransformGateway implements image_transform_port.ImageTransformPort
// in pure Go for CGO_ENABLED=0 builds. x/image ships no WebP encoder, so a
// negotiated WebP request is re-encoded as JPEG here; the vips backend is
// the one that produces real WebP output.
type NativeTransformGateway struct{}

func NewNativeTransformGateway() *NativeTransformGateway {
	return &NativeTransformGateway{}
}

func (g *NativeTransformGateway) Transform(ctx context.Context, src []byte, width, quality int, format domain.OutputFormat) (*domain.TransformedImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(src) == 0 {
		return nil, errors.TransformError("empty source image", errors.ErrTransformFailed, nil)
	}

	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, errors.TransformError("decode failed", err, nil)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, errors.TransformError("degenerate image dimensions", errors.ErrTransformFailed, nil)
	}

	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}

	resized := img
	if width != bounds.Dx() {
		dst := image.NewRGBA(image.Rect(0, 0, width, height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		resized = dst
	} else {
		height = bounds.Dy()
	}

	// Quality only applies when a format was negotiated; the source codec
	// path re-encodes with the encoder default.
	opts := &jpeg.Options{Quality: jpeg.DefaultQuality}
	if format != domain.FormatUnspecified {
		opts.Quality = quality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, opts); err != nil {
		return nil, errors.TransformError("jpeg encode failed", err, nil)
	}

	return &domain.TransformedImage{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Width:       width,
		Height:      height,
	}, nil
}
