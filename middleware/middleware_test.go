package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgd/utils/logger"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name            string
		requestIDHeader string
		expectGenerated bool
	}{
		{
			name:            "generates a request ID when none is supplied",
			requestIDHeader: "",
			expectGenerated: true,
		},
		{
			name:            "propagates a caller-supplied request ID",
			requestIDHeader: "caller-supplied-id",
			expectGenerated: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.requestIDHeader != "" {
				req.Header.Set("X-Request-ID", tt.requestIDHeader)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var requestIDFromContext string
			handler := RequestIDMiddleware()(func(c echo.Context) error {
				if reqID := c.Request().Context().Value(logger.RequestIDKey); reqID != nil {
					requestIDFromContext = reqID.(string)
				}
				return c.NoContent(http.StatusOK)
			})

			require.NoError(t, handler(c))

			responseRequestID := rec.Header().Get("X-Request-ID")
			assert.NotEmpty(t, responseRequestID)
			assert.Equal(t, responseRequestID, requestIDFromContext)

			if tt.expectGenerated {
				// Generated IDs are UUIDs.
				assert.Len(t, responseRequestID, 36)
			} else {
				assert.Equal(t, tt.requestIDHeader, responseRequestID)
			}
		})
	}
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/images/resize", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	baseLogger := logger.Init("info", "json")
	handler := LoggingMiddleware(baseLogger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestLoggingMiddleware_SkipsHealthEndpoint(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/health")

	baseLogger := logger.Init("info", "json")
	handler := LoggingMiddleware(baseLogger)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
