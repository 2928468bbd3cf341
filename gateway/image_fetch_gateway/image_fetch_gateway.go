// Package image_fetch_gateway retrieves source images over HTTP. It is the
// anti-corruption layer between the domain and the upstream origin servers.
package image_fetch_gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"imgd/domain"
	"imgd/utils/errors"
)

const userAgent = "imgd/1.0 (+https://github.com/imgd/imgd)"

// Options bound the outbound fetch.
type Options struct {
	// MaxBytes caps the source image size. Responses larger than this are
	// rejected before the transform ever sees them.
	MaxBytes int
	// Timeout bounds the whole request when the gateway builds its own client.
	Timeout time.Duration
	// AllowPrivateHosts disables the private-network guard. Only tests that
	// fetch from a loopback httptest server should set this.
	AllowPrivateHosts bool
}

// ImageFetchGateway implements image_fetch_port.ImageFetchPort.
type ImageFetchGateway struct {
	client *http.Client
	opts   Options
}

// NewImageFetchGateway creates a gateway around the given client. A nil
// client gets a default one with the configured timeout and redirects capped.
func NewImageFetchGateway(client *http.Client, opts Options) *ImageFetchGateway {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 10 * 1024 * 1024
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if client == nil {
		client = &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		}
	}
	return &ImageFetchGateway{client: client, opts: opts}
}

// FetchImage retrieves the source image, enforcing status, content-type,
// size, and non-empty-body checks. Failures are fatal to the request and
// never retried here.
func (g *ImageFetchGateway) FetchImage(ctx context.Context, src *url.URL) (*domain.ImageFetchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !g.opts.AllowPrivateHosts {
		if err := guardHost(src); err != nil {
			return nil, errors.UpstreamError("source host not fetchable", err,
				map[string]interface{}{"url": src.String()})
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.String(), nil)
	if err != nil {
		return nil, errors.UpstreamError("failed to create request", err,
			map[string]interface{}{"url": src.String()})
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "image/webp, image/avif, image/jpeg, image/png, image/gif")

	resp, err := g.client.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
			return nil, errors.TimeoutError("upstream fetch timed out", err,
				map[string]interface{}{"url": src.String()})
		}
		return nil, errors.UpstreamError("upstream request failed", err,
			map[string]interface{}{"url": src.String()})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.UpstreamError(
			fmt.Sprintf("upstream returned status %d", resp.StatusCode),
			fmt.Errorf("%w: %d", errors.ErrUpstreamStatus, resp.StatusCode),
			map[string]interface{}{
				"url":         src.String(),
				"status_code": resp.StatusCode,
			})
	}

	contentType := resp.Header.Get("Content-Type")
	if !isImageContentType(contentType) {
		return nil, errors.UpstreamError("upstream response is not an image", nil,
			map[string]interface{}{
				"url":          src.String(),
				"content_type": contentType,
			})
	}

	if header := resp.Header.Get("Content-Length"); header != "" {
		if length, err := strconv.ParseInt(header, 10, 64); err == nil && length > int64(g.opts.MaxBytes) {
			return nil, errors.UpstreamError("source image too large", nil,
				map[string]interface{}{
					"url":            src.String(),
					"content_length": length,
					"max_bytes":      g.opts.MaxBytes,
				})
		}
	}

	// +1 so a body exactly at the cap is distinguishable from one over it.
	data, err := io.ReadAll(io.LimitReader(resp.Body, int64(g.opts.MaxBytes)+1))
	if err != nil {
		return nil, errors.UpstreamError("failed to read upstream body", err,
			map[string]interface{}{"url": src.String()})
	}
	if len(data) == 0 {
		return nil, errors.UpstreamError("upstream returned empty body",
			errors.ErrEmptyBody,
			map[string]interface{}{"url": src.String()})
	}
	if len(data) > g.opts.MaxBytes {
		return nil, errors.UpstreamError("source image too large", nil,
			map[string]interface{}{
				"url":       src.String(),
				"max_bytes": g.opts.MaxBytes,
			})
	}

	return &domain.ImageFetchResult{
		URL:         src.String(),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// guardHost rejects obviously unsafe fetch targets: non-HTTP schemes,
// loopback/private/link-local addresses, cloud metadata endpoints, and
// internal domain suffixes. The policy allow-list is the primary guard;
// this catches the unrestricted (empty allow-list) configuration.
func guardHost(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme %q not allowed", u.Scheme)
	}

	hostname := strings.ToLower(u.Hostname())
	if hostname == "" {
		return fmt.Errorf("empty host")
	}
	if hostname == "localhost" || hostname == "metadata.google.internal" {
		return fmt.Errorf("host %q not allowed", hostname)
	}

	for _, suffix := range []string{".local", ".internal", ".localhost", ".lan", ".intranet"} {
		if strings.HasSuffix(hostname, suffix) {
			return fmt.Errorf("internal domain %q not allowed", hostname)
		}
	}

	if ip := net.ParseIP(hostname); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return fmt.Errorf("address %s not allowed", ip)
		}
	}

	return nil
}

func isImageContentType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(contentType, "image/")
}
