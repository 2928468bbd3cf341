// Package image_serve_usecase orchestrates a resize request end to end:
// validate against policy, negotiate the output format, then serve from
// cache or fetch-transform-persist on a miss.
package image_serve_usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"imgd/cachekey"
	"imgd/domain"
	"imgd/metrics"
	"imgd/negotiation"
	"imgd/port/image_cache_port"
	"imgd/port/image_fetch_port"
	"imgd/port/image_transform_port"
	"imgd/utils/errors"
	"imgd/utils/logger"
	"imgd/utils/rate_limiter"
	"imgd/validation"
)

// ImageServeUsecase resolves raw resize requests to image bytes.
type ImageServeUsecase struct {
	fetchPort     image_fetch_port.ImageFetchPort
	transformPort image_transform_port.ImageTransformPort
	cachePort     image_cache_port.ImageCachePort
	policy        domain.RequestPolicy
	rateLimiter   *rate_limiter.HostRateLimiter
	inflight      singleflight.Group
}

// NewImageServeUsecase creates a new ImageServeUsecase.
func NewImageServeUsecase(
	fetchPort image_fetch_port.ImageFetchPort,
	transformPort image_transform_port.ImageTransformPort,
	cachePort image_cache_port.ImageCachePort,
	policy domain.RequestPolicy,
	rateLimiter *rate_limiter.HostRateLimiter,
) *ImageServeUsecase {
	return &ImageServeUsecase{
		fetchPort:     fetchPort,
		transformPort: transformPort,
		cachePort:     cachePort,
		policy:        policy,
		rateLimiter:   rateLimiter,
	}
}

// transformOutcome is the value shared between coalesced misses. Each caller
// wraps the bytes in its own reader, so one slice can feed many responses.
type transformOutcome struct {
	data        []byte
	contentType string
}

// Serve validates the raw request, looks up the cache, and on a miss runs
// the fetch-transform-persist pipeline. Validation failures come back as
// *validation.RequestError; everything past validation surfaces as *errors.AppError.
func (u *ImageServeUsecase) Serve(ctx context.Context, raw domain.RawImageRequest) (*domain.ImageServeResult, error) {
	req, err := validation.ValidateImageRequest(raw, u.policy)
	if err != nil {
		return nil, err
	}

	format := negotiation.NegotiateFormat(raw.Accept)
	key := cachekey.Derive(req, format)

	exists, err := u.cachePort.Exists(ctx, key)
	if err != nil {
		return nil, errors.CacheIOError("failed to check cache", err, map[string]interface{}{
			"cache_key": key,
		})
	}

	if exists {
		result, err := u.serveCached(ctx, key)
		if err == nil {
			metrics.RecordCacheHit()
			return result, nil
		}
		// A vanished or unreadable entry falls through to the miss path
		// and counts as a miss.
		logger.SafeWarnContext(ctx, "cached entry unreadable, regenerating",
			"cache_key", key, "error", err)
	}
	metrics.RecordCacheMiss()

	outcome, err := u.transformOnce(ctx, key, req, format)
	if err != nil {
		return nil, err
	}

	return &domain.ImageServeResult{
		ContentType: outcome.contentType,
		Body:        io.NopCloser(bytes.NewReader(outcome.data)),
		FromCache:   false,
	}, nil
}

// serveCached streams a cache entry. Stored entries carry no metadata, so
// the content type is sniffed from the leading bytes.
func (u *ImageServeUsecase) serveCached(ctx context.Context, key string) (*domain.ImageServeResult, error) {
	entry, err := u.cachePort.Open(ctx, key)
	if err != nil {
		return nil, errors.CacheIOError("failed to open cached image", err, map[string]interface{}{
			"cache_key": key,
		})
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(entry, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		entry.Close()
		return nil, errors.CacheIOError("failed to read cached image", err, map[string]interface{}{
			"cache_key": key,
		})
	}
	head = head[:n]

	return &domain.ImageServeResult{
		ContentType: http.DetectContentType(head),
		Body: &prefixedReadCloser{
			reader: io.MultiReader(bytes.NewReader(head), entry),
			closer: entry,
		},
		FromCache: true,
	}, nil
}

// transformOnce coalesces concurrent misses on the same key so the upstream
// is fetched and the entry written at most once per flight. The flight runs
// detached from the initiating request's cancellation: followers joined to
// the flight must not fail because the leader disconnected. The fetch
// gateway's client timeout still bounds the detached flight.
func (u *ImageServeUsecase) transformOnce(ctx context.Context, key string, req *domain.ValidatedImageRequest, format domain.OutputFormat) (*transformOutcome, error) {
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := u.inflight.Do(key, func() (interface{}, error) {
		return u.transformAndPersist(flightCtx, key, req, format)
	})
	if err != nil {
		return nil, err
	}
	return v.(*transformOutcome), nil
}

func (u *ImageServeUsecase) transformAndPersist(ctx context.Context, key string, req *domain.ValidatedImageRequest, format domain.OutputFormat) (*transformOutcome, error) {
	if u.rateLimiter != nil {
		if err := u.rateLimiter.Wait(ctx, req.SourceURL); err != nil {
			return nil, errors.TimeoutError("rate limit wait cancelled", err, map[string]interface{}{
				"host": req.SourceURL.Host,
			})
		}
	}

	fetched, err := u.fetchPort.FetchImage(ctx, req.SourceURL)
	if err != nil {
		metrics.RecordUpstreamFetch("error")
		return nil, err
	}
	metrics.RecordUpstreamFetch("success")

	start := time.Now()
	transformed, err := u.transformPort.Transform(ctx, fetched.Data, req.Width, req.Quality, format)
	if err != nil {
		return nil, err
	}
	metrics.RecordTransform(time.Since(start).Seconds())

	if err := u.persist(ctx, key, transformed.Data); err != nil {
		return nil, err
	}

	logger.SafeInfoContext(ctx, "image transformed and cached",
		"cache_key", key,
		"url", req.SourceURL.String(),
		"width", req.Width,
		"content_type", transformed.ContentType,
		"bytes", len(transformed.Data))

	return &transformOutcome{
		data:        transformed.Data,
		contentType: transformed.ContentType,
	}, nil
}

func (u *ImageServeUsecase) persist(ctx context.Context, key string, data []byte) error {
	sink, err := u.cachePort.Create(ctx, key)
	if err != nil {
		return errors.CacheIOError("failed to create cache entry", err, map[string]interface{}{
			"cache_key": key,
		})
	}

	if _, err := sink.Write(data); err != nil {
		sink.Abort()
		return errors.CacheIOError("failed to write cache entry", err, map[string]interface{}{
			"cache_key": key,
		})
	}

	if err := sink.Commit(); err != nil {
		return errors.CacheIOError(fmt.Sprintf("failed to commit cache entry %s", key), err, map[string]interface{}{
			"cache_key": key,
		})
	}
	return nil
}

// prefixedReadCloser rejoins sniffed head bytes with the rest of the stream
// while keeping the underlying entry closable.
type prefixedReadCloser struct {
	reader io.Reader
	closer io.Closer
}

func (p *prefixedReadCloser) Read(b []byte) (int, error) {
	return p.reader.Read(b)
}

func (p *prefixedReadCloser) Close() error {
	return p.closer.Close()
}
