package log

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type ctxKey struct{}

// RequestLogger returns echo middleware that writes one access log record per request
// and stores a request-scoped logger in the request context.
func RequestLogger(logger *Logger) echo.MiddlewareFunc {
	httpLogger := logger.WithComponent(ComponentHTTP)

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		BeforeNextFunc: func(c echo.Context) {
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			scoped := httpLogger.With(FieldRequestID, reqID)
			req := c.Request()
			c.SetRequest(req.WithContext(WithContext(req.Context(), scoped)))
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			switch {
			case v.Status >= 500:
				level = slog.LevelError
			case v.Status >= 400:
				level = slog.LevelWarn
			}

			fields := NewFields().
				WithHTTP(v.Method, v.URIPath, v.Status, v.Latency.Milliseconds()).
				WithError(v.Error)
			fields[FieldRequestID] = v.RequestID
			fields[FieldClientIP] = v.RemoteIP

			httpLogger.Log(c.Request().Context(), level, "HTTP request completed", fields.ToSlice()...)
			return nil
		},
	})
}

// WithContext stores logger in ctx.
func WithContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts the request-scoped logger, falling back to the slog default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}
