package di

import (
	"context"
	"fmt"
	"net"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"

	"imgd/config"
	"imgd/domain"
	"imgd/driver/cache_db"
	"imgd/gateway/image_cache_gateway"
	"imgd/gateway/image_fetch_gateway"
	"imgd/gateway/image_transform_gateway"
	"imgd/port/image_cache_port"
	"imgd/port/image_transform_port"
	"imgd/usecase/image_serve_usecase"
	"imgd/utils/rate_limiter"
)

type ApplicationComponents struct {
	ImageServeUsecase *image_serve_usecase.ImageServeUsecase

	pool *pgxpool.Pool
}

func NewApplicationComponents(ctx context.Context, cfg *config.Config) (*ApplicationComponents, error) {
	fetchGateway := image_fetch_gateway.NewImageFetchGateway(newHTTPClient(cfg), image_fetch_gateway.Options{
		MaxBytes:          cfg.Images.MaxSourceBytes,
		Timeout:           cfg.HTTP.ClientTimeout,
		AllowPrivateHosts: cfg.Images.AllowPrivateHosts,
	})

	transformGateway, err := newTransformGateway(cfg)
	if err != nil {
		return nil, err
	}

	cacheGateway, pool, err := newCacheGateway(ctx, cfg)
	if err != nil {
		return nil, err
	}

	policy := domain.RequestPolicy{
		AllowedWidths:  cfg.Images.Sizes,
		AllowedDomains: cfg.Images.Domains,
	}

	limiter := rate_limiter.NewHostRateLimiter(cfg.RateLimit.PerHostInterval, cfg.RateLimit.PerHostBurst)

	return &ApplicationComponents{
		ImageServeUsecase: image_serve_usecase.NewImageServeUsecase(
			fetchGateway,
			transformGateway,
			cacheGateway,
			policy,
			limiter,
		),
		pool: pool,
	}, nil
}

// Close releases resources held by the container.
func (c *ApplicationComponents) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func newHTTPClient(cfg *config.Config) *http.Client {
	return &http.Client{
		Timeout: cfg.HTTP.ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: cfg.HTTP.DialTimeout,
			}).DialContext,
			TLSHandshakeTimeout: cfg.HTTP.TLSHandshakeTimeout,
			IdleConnTimeout:     cfg.HTTP.IdleConnTimeout,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

func newTransformGateway(cfg *config.Config) (image_transform_port.ImageTransformPort, error) {
	switch cfg.Images.Backend {
	case "vips":
		return image_transform_gateway.NewVipsTransformGateway(), nil
	case "native":
		return image_transform_gateway.NewNativeTransformGateway(), nil
	default:
		return nil, fmt.Errorf("unknown images backend: %s", cfg.Images.Backend)
	}
}

func newCacheGateway(ctx context.Context, cfg *config.Config) (image_cache_port.ImageCachePort, *pgxpool.Pool, error) {
	switch cfg.Cache.Backend {
	case "fs":
		gateway, err := image_cache_gateway.NewFSCacheGateway(afero.NewOsFs(), cfg.Cache.RootDir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize fs cache: %w", err)
		}
		return gateway, nil, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.Cache.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to cache database: %w", err)
		}
		repo := cache_db.NewCacheDBRepository(pool)
		return image_cache_gateway.NewDBCacheGateway(repo), pool, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}
