package errors

import "errors"

// Sentinel errors usable with errors.Is across layers.
var (
	ErrUpstreamStatus  = errors.New("upstream returned non-success status")
	ErrEmptyBody       = errors.New("upstream returned empty body")
	ErrTransformFailed = errors.New("image transform failed")
	ErrCacheIO         = errors.New("cache store failure")
)

// IsUpstreamError reports whether err originated in the source-image fetch.
func IsUpstreamError(err error) bool {
	if errors.Is(err, ErrUpstreamStatus) || errors.Is(err, ErrEmptyBody) {
		return true
	}
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeUpstream
}

// IsTransformError reports whether err originated in the codec/resize step.
func IsTransformError(err error) bool {
	if errors.Is(err, ErrTransformFailed) {
		return true
	}
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeTransform
}

// IsCacheIOError reports whether err originated in the cache store.
func IsCacheIOError(err error) bool {
	if errors.Is(err, ErrCacheIO) {
		return true
	}
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeCacheIO
}
