package image_cache_port

import (
	"context"
	"io"
)

// WriteSink receives one cache entry's bytes. Exactly one of Commit or Abort
// must be called; Commit publishes the entry under its key, Abort discards
// everything written so far.
type WriteSink interface {
	io.Writer
	Commit() error
	Abort() error
}

// ImageCachePort stores transformed images addressed by cache key.
// Entries are write-once; eviction is external to this service.
type ImageCachePort interface {
	Exists(ctx context.Context, key string) (bool, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Create(ctx context.Context, key string) (WriteSink, error)
}
