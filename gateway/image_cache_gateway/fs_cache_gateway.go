// Package image_cache_gateway stores transformed images by cache key.
// The filesystem store is the default; a Postgres-backed store exists for
// deployments without a persistent volume.
package image_cache_gateway

import (
	"context"
	"io"
	"path"

	"github.com/spf13/afero"

	"imgd/port/image_cache_port"
	"imgd/utils/errors"
)

// FSCacheGateway implements image_cache_port.ImageCachePort on a filesystem.
// Entries live at <root>/cache/images/<key>; the file is the HTTP body,
// no wrapper format. Writes go to a temp file and are renamed on Commit so a
// lookup never sees a truncated entry.
type FSCacheGateway struct {
	fs  afero.Fs
	dir string
}

// NewFSCacheGateway creates the store and its directory under root.
func NewFSCacheGateway(fs afero.Fs, root string) (*FSCacheGateway, error) {
	dir := path.Join(root, "cache", "images")
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.CacheIOError("failed to create cache directory", err,
			map[string]interface{}{"dir": dir})
	}
	return &FSCacheGateway{fs: fs, dir: dir}, nil
}

func (g *FSCacheGateway) entryPath(key string) string {
	return path.Join(g.dir, key)
}

func (g *FSCacheGateway) Exists(ctx context.Context, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	ok, err := afero.Exists(g.fs, g.entryPath(key))
	if err != nil {
		return false, errors.CacheIOError("cache existence check failed", err,
			map[string]interface{}{"key": key})
	}
	return ok, nil
}

func (g *FSCacheGateway) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := g.fs.Open(g.entryPath(key))
	if err != nil {
		return nil, errors.CacheIOError("cache read failed", err,
			map[string]interface{}{"key": key})
	}
	return f, nil
}

func (g *FSCacheGateway) Create(ctx context.Context, key string) (image_cache_port.WriteSink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tmp := g.entryPath(key) + ".tmp"
	f, err := g.fs.Create(tmp)
	if err != nil {
		return nil, errors.CacheIOError("cache write failed", err,
			map[string]interface{}{"key": key})
	}
	return &fsWriteSink{fs: g.fs, file: f, tmp: tmp, final: g.entryPath(key)}, nil
}

type fsWriteSink struct {
	fs    afero.Fs
	file  afero.File
	tmp   string
	final string
}

func (s *fsWriteSink) Write(p []byte) (int, error) {
	return s.file.Write(p)
}

// Commit publishes the entry. Concurrent writers for the same key race on
// the rename; the last one wins, which is acceptable because both hold
// byte-identical content derived from the same key.
func (s *fsWriteSink) Commit() error {
	if err := s.file.Close(); err != nil {
		return errors.CacheIOError("cache write close failed", err, nil)
	}
	if err := s.fs.Rename(s.tmp, s.final); err != nil {
		return errors.CacheIOError("cache publish failed", err,
			map[string]interface{}{"path": s.final})
	}
	return nil
}

// Abort discards the partial entry.
func (s *fsWriteSink) Abort() error {
	_ = s.file.Close()
	if err := s.fs.Remove(s.tmp); err != nil {
		return errors.CacheIOError("cache abort cleanup failed", err,
			map[string]interface{}{"path": s.tmp})
	}
	return nil
}
