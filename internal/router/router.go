package router

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"accountbook/internal/auth"
	"accountbook/internal/config"
	apperrors "accountbook/internal/errors"
	"accountbook/internal/handler"
	applog "accountbook/internal/log"
	"accountbook/internal/service"
)

// Handlers groups the HTTP handlers and the collaborators the router needs.
type Handlers struct {
	User        *handler.UserHandler
	Category    *handler.CategoryHandler
	Transaction *handler.TransactionHandler
	Stats       *handler.StatsHandler
	Export      *handler.ExportHandler

	AuthService service.AuthService
	JWTService  *auth.JWTService

	// Ready reports whether backing stores are reachable. Optional.
	Ready func(ctx context.Context) error
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, logger *applog.Logger, h Handlers) {
	e.Validator = NewValidator()
	e.HTTPErrorHandler = handler.HTTPErrorHandler(cfg.ExposeDBErrors, logger)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(applog.RequestLogger(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: splitOrigins(cfg.CORSOrigin),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		if h.Ready != nil {
			if err := h.Ready(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
			}
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Public routes
	user := e.Group("/user")
	limit := rateLimiter(cfg.RateLimitPerSecond)
	user.POST("/register", h.User.Register, limit...)
	user.POST("/login", h.User.Login, limit...)
	user.POST("/logout", h.User.Logout, limit...)

	e.GET("/category/list", h.Category.List)

	// Routes scoped to the user_id query parameter
	owner := ownerMiddleware(cfg, h)
	user.GET("/profile", h.User.Profile, owner...)

	tx := e.Group("/transaction")
	tx.POST("/add", h.Transaction.Add, owner...)
	tx.PUT("/update", h.Transaction.Update, owner...)
	tx.DELETE("/delete", h.Transaction.Delete, owner...)
	tx.GET("/list", h.Transaction.List, owner...)
	tx.GET("/stats", h.Stats.Totals, owner...)
	tx.GET("/category_stats", h.Stats.CategoryStats, owner...)
	tx.GET("/trend_stats", h.Stats.TrendStats, owner...)
	tx.GET("/export", h.Export.ExportCSV, owner...)
	tx.GET("/export_pdf", h.Export.ExportPDF, owner...)
}

// ownerMiddleware is attached per route, not per group, so that a wrong method
// still yields 405 before identity is checked.
func ownerMiddleware(cfg *config.Config, h Handlers) []echo.MiddlewareFunc {
	chain := []echo.MiddlewareFunc{handler.RequireUser()}
	if !cfg.RequireToken {
		return chain
	}

	return append(chain,
		echojwt.WithConfig(echojwt.Config{
			SigningKey:    h.JWTService.Secret(),
			SigningMethod: jwt.SigningMethodHS256.Alg(),
			TokenLookup:   "header:" + echo.HeaderAuthorization + ":Bearer ,query:token",
			NewClaimsFunc: func(echo.Context) jwt.Claims { return auth.NewClaims() },
			ErrorHandler: func(c echo.Context, err error) error {
				var extractErr *echojwt.TokenExtractionError
				if errors.As(err, &extractErr) {
					return apperrors.ErrUnauthorized
				}
				return apperrors.ErrInvalidToken
			},
		}),
		handler.TokenOwner(h.AuthService),
	)
}

func rateLimiter(perSecond int) []echo.MiddlewareFunc {
	if perSecond <= 0 {
		return nil
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     perSecond * 2,
		ExpiresIn: 3 * time.Minute,
	})
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{Store: store})}
}

func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the request validator used by every handler.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
