// The receiver accepts inbound Jamf Pro webhooks over HTTP and publishes
// them onto the webhook topic.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/brysontyrrell/voltron/internal/auth"
	"github.com/brysontyrrell/voltron/internal/config"
	"github.com/brysontyrrell/voltron/internal/logging"
	"github.com/brysontyrrell/voltron/internal/receiver"
	"github.com/brysontyrrell/voltron/internal/transport"

	_ "github.com/brysontyrrell/voltron/internal/transport/aws"
	_ "github.com/brysontyrrell/voltron/internal/transport/channel"
	_ "github.com/brysontyrrell/voltron/internal/transport/kafka"
	_ "github.com/brysontyrrell/voltron/internal/transport/nats"
	_ "github.com/brysontyrrell/voltron/internal/transport/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.NewSlogServiceLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	logger.Info("Starting webhook receiver", logging.LogFields{"config": cfg})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := transport.Build(ctx, cfg, logging.NewWatermillAdapter(logger))
	if err != nil {
		logger.Error("Failed to build transport", err, logging.LogFields{
			"pubsub_system": cfg.PubSubSystem,
		})
		os.Exit(1)
	}

	var policies auth.Chain
	if cfg.AccessToken != "" {
		policies = append(policies, auth.NewTokenPolicy(cfg.AccessToken))
	}
	if cfg.BasicAuthUsername != "" {
		policies = append(policies, auth.NewBasicPolicy(cfg.BasicAuthUsername, cfg.BasicAuthPassword))
	}

	mux := http.NewServeMux()
	mux.Handle("/webhook", receiver.NewHandler(tr.Publisher, cfg.WebhookTopic, policies, logger))

	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.Handler())
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Listening for webhooks", logging.LogFields{"address": cfg.ListenAddress})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", err, nil)
	}
	if err := tr.Publisher.Close(); err != nil {
		logger.Error("Failed to close publisher", err, nil)
	}
}
