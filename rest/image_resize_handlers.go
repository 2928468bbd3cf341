package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"imgd/config"
	"imgd/di"
	"imgd/domain"
	"imgd/metrics"
	apperrors "imgd/utils/errors"
	"imgd/utils/logger"
	"imgd/validation"
)

// registerImageResizeRoutes registers the on-demand transcoding endpoint.
// It is unauthenticated; the domain/width allow-lists are the policy gate.
func registerImageResizeRoutes(v1 *echo.Group, container *di.ApplicationComponents, cfg *config.Config) {
	images := v1.Group("/images")
	images.GET("/resize", handleImageResize(container))
}

func handleImageResize(container *di.ApplicationComponents) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := c.QueryParams()
		raw := domain.RawImageRequest{
			URL:     params["url"],
			Width:   params["w"],
			Quality: params["q"],
			Accept:  c.Request().Header.Get("Accept"),
			Host:    c.Request().Host,
		}

		result, err := container.ImageServeUsecase.Serve(c.Request().Context(), raw)
		if err != nil {
			return writeResizeError(c, err)
		}
		defer result.Body.Close()

		c.Response().Header().Set("Cache-Control", "public, max-age=43200, immutable")
		// The negotiated format varies the bytes, so caches must key on Accept.
		c.Response().Header().Set("Vary", "Accept")

		metrics.RecordRequest(http.StatusOK)
		return c.Stream(http.StatusOK, result.ContentType, result.Body)
	}
}

func writeResizeError(c echo.Context, err error) error {
	ctx := c.Request().Context()

	var reqErr *validation.RequestError
	if errors.As(err, &reqErr) {
		metrics.RecordRequest(http.StatusBadRequest)
		return c.String(http.StatusBadRequest, reqErr.Message)
	}

	if apperrors.IsUpstreamError(err) {
		logger.SafeWarnContext(ctx, "upstream fetch failed", "error", err)
		metrics.RecordRequest(http.StatusBadGateway)
		return c.String(http.StatusBadGateway, upstreamMessage(err))
	}

	logger.SafeErrorContext(ctx, "image processing failed", "error", err)
	metrics.RecordRequest(http.StatusInternalServerError)
	return c.String(http.StatusInternalServerError, "image processing error")
}

// upstreamMessage surfaces the fetch layer's own wording (it names the
// upstream status) without leaking the wrapped cause chain.
func upstreamMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return "upstream fetch failed"
}
