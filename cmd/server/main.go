package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	_ "accountbook/docs" // swagger docs

	"accountbook/internal/auth"
	"accountbook/internal/cache"
	"accountbook/internal/config"
	"accountbook/internal/db"
	"accountbook/internal/events"
	"accountbook/internal/handler"
	applog "accountbook/internal/log"
	"accountbook/internal/repository"
	"accountbook/internal/router"
	"accountbook/internal/service"
)

// @title Account Book API
// @version 1.0
// @description Personal income and expense ledger with statistics and exports.
// @BasePath /
// @schemes http
func main() {
	os.Exit(run())
}

// run returns the process exit code once the server has stopped and every
// resource it opened has been released.
func run() int {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentApp,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", applog.FieldError, err.Error())
		return 1
	}

	gormDB, err := db.Open(cfg)
	if err != nil {
		logger.WithComponent(applog.ComponentStorage).LogError(context.Background(), "database init", err, applog.OpStartup, nil)
		return 1
	}
	defer db.Close(gormDB)
	logger.Info("database ready", "driver", cfg.DBDriver)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, logger)
	defer cacheClient.Close()
	if err := cacheClient.Ping(context.Background()); err != nil {
		logger.Warn("redis unavailable, running without cache", applog.FieldError, err.Error())
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.AMQPURL != "" {
		client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("event broker unavailable, events disabled", applog.FieldError, err.Error())
		} else {
			defer client.Close()
			publisher = client
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	transactionRepo := repository.NewTransactionRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, cacheClient, logger)
	categoryService := service.NewCategoryService(categoryRepo, cacheClient, logger)
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo, publisher, logger)
	statsService := service.NewStatsService(transactionRepo, logger)
	exportService := service.NewExportService(transactionRepo, cfg.PDFFontPath, logger)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, logger, router.Handlers{
		User:        handler.NewUserHandler(authService),
		Category:    handler.NewCategoryHandler(categoryService),
		Transaction: handler.NewTransactionHandler(transactionService),
		Stats:       handler.NewStatsHandler(statsService),
		Export:      handler.NewExportHandler(exportService),
		AuthService: authService,
		JWTService:  jwtService,
		Ready: func(ctx context.Context) error {
			return db.Ping(ctx, gormDB)
		},
	})

	if !cfg.RequireToken {
		logger.Warn("REQUIRE_TOKEN is off: requests are scoped by the user_id query parameter alone")
	}

	addr := ":" + cfg.ServerPort
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr, "swagger", swaggerURL(cfg))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serverErr:
		logger.LogError(context.Background(), "server start", err, applog.OpStartup, nil)
		return 1
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.LogError(shutdownCtx, "server shutdown", err, applog.OpShutdown, nil)
	}
	logger.Info("server stopped")
	return 0
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
