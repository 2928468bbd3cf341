// Package cache_db is the Postgres driver for the image cache. It speaks
// SQL only; the gateway layer adapts it to the cache port.
package cache_db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"imgd/utils/logger"
)

// DB is the subset of pgxpool.Pool this driver needs. pgxmock satisfies it
// in tests.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CacheDBRepository persists cache entries in the image_cache table:
// (cache_key TEXT PRIMARY KEY, image_data BYTEA, created_at TIMESTAMPTZ).
type CacheDBRepository struct {
	db DB
}

func NewCacheDBRepository(db DB) *CacheDBRepository {
	return &CacheDBRepository{db: db}
}

// HasImage reports whether an entry exists for the key.
func (r *CacheDBRepository) HasImage(ctx context.Context, key string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM image_cache WHERE cache_key = $1)`,
		key,
	).Scan(&exists)
	if err != nil {
		logger.SafeErrorContext(ctx, "image cache existence check failed", "error", err, "key", key)
		return false, fmt.Errorf("check image cache: %w", err)
	}
	return exists, nil
}

// GetImage retrieves a cached image by key. Returns nil bytes if absent.
func (r *CacheDBRepository) GetImage(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := r.db.QueryRow(ctx,
		`SELECT image_data FROM image_cache WHERE cache_key = $1`,
		key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		logger.SafeErrorContext(ctx, "image cache read failed", "error", err, "key", key)
		return nil, fmt.Errorf("get image cache: %w", err)
	}
	return data, nil
}

// SaveImage upserts a cache entry. Entries are write-once in practice; the
// upsert absorbs the concurrent same-key race where the last writer wins.
func (r *CacheDBRepository) SaveImage(ctx context.Context, key string, data []byte) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO image_cache (cache_key, image_data, created_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (cache_key) DO UPDATE SET
		   image_data = EXCLUDED.image_data,
		   created_at = EXCLUDED.created_at`,
		key, data,
	)
	if err != nil {
		logger.SafeErrorContext(ctx, "image cache write failed", "error", err, "key", key)
		return fmt.Errorf("save image cache: %w", err)
	}
	return nil
}
