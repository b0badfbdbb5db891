package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"accountbook/internal/config"
	"accountbook/internal/events"
	applog "accountbook/internal/log"
)

const componentAudit = "audit"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentEvents,
		Output:    os.Stdout,
	})
	applog.SetDefault(logger)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required")
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", applog.FieldError, err.Error())
		os.Exit(1)
	}

	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.LogError(context.Background(), "connect to broker", err, applog.OpStartup, nil)
		os.Exit(1)
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = client.Consume(ctx, auditHandler(logger.WithComponent(componentAudit)))
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.LogError(context.Background(), "consume events", err, applog.OpConsume, nil)
		os.Exit(1)
	}
	logger.Info("audit worker stopped")
}

// auditHandler writes one audit record per ledger change.
func auditHandler(logger *applog.Logger) func(context.Context, events.Event) error {
	return func(ctx context.Context, event events.Event) error {
		logger.InfoContext(ctx, "ledger change",
			applog.FieldEvent, string(event.Event),
			applog.FieldTransactionID, event.TransactionID,
			applog.FieldUserID, event.UserID,
			"at", event.At)
		return nil
	}
}
