package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "accountbook/internal/errors"
	applog "accountbook/internal/log"
)

// HTTPErrorHandler renders every error returned by a handler or middleware as
// {"error": ..., "code": ...}.
func HTTPErrorHandler(exposeInternal bool, logger *applog.Logger) echo.HTTPErrorHandler {
	logger = logger.WithComponent(applog.ComponentHTTP)

	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			err = fromEchoError(echoErr)
		}

		httpErr := apperrors.MapErrorToHTTP(err, exposeInternal)
		if httpErr.StatusCode >= http.StatusInternalServerError {
			logger.LogError(c.Request().Context(), "unhandled error", err, c.Path(), nil)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(httpErr.StatusCode)
		} else {
			writeErr = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		if writeErr != nil {
			logger.LogError(c.Request().Context(), "write error response", writeErr, c.Path(), nil)
		}
	}
}

// fromEchoError converts errors raised by echo itself (routing, binding, middleware).
func fromEchoError(he *echo.HTTPError) error {
	switch he.Code {
	case http.StatusMethodNotAllowed:
		return apperrors.ErrMethodNotAllowed
	case http.StatusNotFound:
		return apperrors.NewHTTPError(http.StatusNotFound, "接口不存在", "NOT_FOUND")
	case http.StatusTooManyRequests:
		return apperrors.NewHTTPError(http.StatusTooManyRequests, "请求过于频繁", "RATE_LIMITED")
	case http.StatusUnauthorized:
		return apperrors.ErrUnauthorized
	case http.StatusBadRequest:
		return apperrors.NewValidationError("请求数据格式不正确")
	}

	msg := http.StatusText(he.Code)
	if he.Message != nil {
		msg = fmt.Sprint(he.Message)
	}
	return apperrors.NewHTTPError(he.Code, msg, "HTTP_ERROR")
}
