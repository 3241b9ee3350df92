// The notifier consumes webhook events and posts formatted notifications to
// a Slack incoming webhook.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brysontyrrell/voltron/internal/config"
	"github.com/brysontyrrell/voltron/internal/dispatch"
	"github.com/brysontyrrell/voltron/internal/logging"
	"github.com/brysontyrrell/voltron/internal/pipeline"
	"github.com/brysontyrrell/voltron/internal/slack"

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
	if cfg.SlackWebhookURL == "" {
		log.Fatal("a Slack webhook URL is required for notifier operation")
	}

	logger := logging.NewSlogServiceLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := pipeline.NewService(ctx, cfg, logger, pipeline.ServiceDependencies{})

	metrics := pipeline.NewOutcomeMetrics(nil)
	if cfg.MetricsEnabled {
		if err := metrics.Register(); err != nil {
			logger.Error("Failed to register metrics", err, nil)
			os.Exit(1)
		}
	}

	notifier := pipeline.NewNotifier(
		dispatch.New(dispatch.NewIgnoredSet(cfg.IgnoredEvents)),
		slack.NewSink(cfg.SlackWebhookURL, logger),
		metrics,
		logger,
	)

	if err := pipeline.RegisterConsumer(svc, pipeline.ConsumerRegistration{
		Name:         pipeline.NotifierHandlerName,
		ConsumeTopic: cfg.WebhookTopic,
		Handler:      notifier.Handle,
	}); err != nil {
		logger.Error("Failed to register consumer", err, nil)
		os.Exit(1)
	}

	if err := svc.Start(ctx); err != nil {
		logger.Error("Pipeline stopped with error", err, nil)
		os.Exit(1)
	}
}
