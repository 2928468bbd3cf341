package image_cache_gateway

import (
	"bytes"
	"context"
	"io"

	"imgd/driver/cache_db"
	"imgd/port/image_cache_port"
	"imgd/utils/errors"
)

// DBCacheGateway implements image_cache_port.ImageCachePort on the Postgres
// driver. Entries are buffered in memory on write and flushed on Commit;
// transformed images are already size-capped upstream.
type DBCacheGateway struct {
	repo *cache_db.CacheDBRepository
}

func NewDBCacheGateway(repo *cache_db.CacheDBRepository) *DBCacheGateway {
	return &DBCacheGateway{repo: repo}
}

func (g *DBCacheGateway) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := g.repo.HasImage(ctx, key)
	if err != nil {
		return false, errors.CacheIOError("cache existence check failed", err,
			map[string]interface{}{"key": key})
	}
	return ok, nil
}

func (g *DBCacheGateway) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	data, err := g.repo.GetImage(ctx, key)
	if err != nil {
		return nil, errors.CacheIOError("cache read failed", err,
			map[string]interface{}{"key": key})
	}
	if data == nil {
		return nil, errors.CacheIOError("cache entry vanished", errors.ErrCacheIO,
			map[string]interface{}{"key": key})
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (g *DBCacheGateway) Create(ctx context.Context, key string) (image_cache_port.WriteSink, error) {
	return &dbWriteSink{ctx: ctx, repo: g.repo, key: key}, nil
}

type dbWriteSink struct {
	ctx  context.Context
	repo *cache_db.CacheDBRepository
	key  string
	buf  bytes.Buffer
}

func (s *dbWriteSink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *dbWriteSink) Commit() error {
	if err := s.repo.SaveImage(s.ctx, s.key, s.buf.Bytes()); err != nil {
		return errors.CacheIOError("cache write failed", err,
			map[string]interface{}{"key": s.key})
	}
	return nil
}

func (s *dbWriteSink) Abort() error {
	s.buf.Reset()
	return nil
}
