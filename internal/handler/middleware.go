package handler

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"accountbook/internal/auth"
	apperrors "accountbook/internal/errors"
	"accountbook/internal/service"
)

const userIDKey = "user_id"

// RequireUser reads the caller's identity from the user_id query parameter.
// A missing, malformed or zero value is rejected with 401.
func RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := strconv.ParseUint(c.QueryParam("user_id"), 10, 64)
			if err != nil || id == 0 {
				return apperrors.ErrUnauthorized
			}
			c.Set(userIDKey, uint(id))
			return next(c)
		}
	}
}

// TokenOwner must run after the echo-jwt middleware. It rejects tokens that were
// revoked or that were issued to a different user than user_id.
func TokenOwner(authService service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return apperrors.ErrInvalidToken
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return apperrors.ErrInvalidToken
			}
			if err := authService.VerifyToken(c.Request().Context(), claims, currentUser(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) uint {
	id, _ := c.Get(userIDKey).(uint)
	return id
}

// bind decodes the request into req and validates it. Decoder failures surface as
// a ValidationError carrying invalidMsg.
func bind(c echo.Context, req any, invalidMsg string) error {
	if err := c.Bind(req); err != nil {
		return apperrors.NewValidationError("%s", invalidMsg)
	}
	if err := c.Validate(req); err != nil {
		return apperrors.NewValidationError("%s", invalidMsg)
	}
	return nil
}
