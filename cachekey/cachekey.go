// Package cachekey derives the deterministic identifier a transformed image
// is stored under.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"io"

	"imgd/domain"
)

// separator keeps adjacent components from running together, so that e.g.
// (w="64", q="075") and (w="640", q="75") cannot collide structurally.
const separator = "|"

// Derive computes the cache key for a validated request and negotiated
// format. The raw width/quality strings are hashed exactly as validated, in
// a fixed order, through SHA-256; the hex digest is filesystem-path-safe.
func Derive(req *domain.ValidatedImageRequest, format domain.OutputFormat) string {
	h := sha256.New()
	io.WriteString(h, req.SourceURL.String())
	io.WriteString(h, separator)
	io.WriteString(h, req.RawWidth)
	io.WriteString(h, separator)
	io.WriteString(h, req.RawQuality)
	io.WriteString(h, separator)
	io.WriteString(h, format.MediaType())
	return hex.EncodeToString(h.Sum(nil))
}
