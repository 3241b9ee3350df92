// The populator consumes device enrollment events, looks up sourced
// inventory data for the device serial number, and pushes the rendered
// record document into Jamf Pro.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brysontyrrell/voltron/internal/config"
	"github.com/brysontyrrell/voltron/internal/enrich"
	"github.com/brysontyrrell/voltron/internal/jamf"
	"github.com/brysontyrrell/voltron/internal/logging"
	"github.com/brysontyrrell/voltron/internal/pipeline"
	awstransport "github.com/brysontyrrell/voltron/internal/transport/aws"

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
	if err := cfg.ValidateJamf(); err != nil {
		log.Fatalf("Jamf Pro credentials are required for populator operation: %v", err)
	}
	if cfg.BucketName == "" || cfg.SourceFile == "" {
		log.Fatal("a bucket name and source file are required for populator operation")
	}

	logger := logging.NewSlogServiceLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := awstransport.ResolveConfig(ctx, cfg, logging.NewWatermillAdapter(logger))
	if err != nil {
		logger.Error("Failed to resolve AWS configuration", err, nil)
		os.Exit(1)
	}
	source := enrich.NewS3Source(enrich.NewS3Client(*awsCfg), cfg.BucketName, cfg.SourceFile, logger)

	client := jamf.New(cfg.JSSDomain, cfg.JSSUsername, cfg.JSSPassword, cfg.DeviceType, logger)

	svc := pipeline.NewService(ctx, cfg, logger, pipeline.ServiceDependencies{})

	metrics := pipeline.NewOutcomeMetrics(nil)
	if cfg.MetricsEnabled {
		if err := metrics.Register(); err != nil {
			logger.Error("Failed to register metrics", err, nil)
			os.Exit(1)
		}
	}

	populator := pipeline.NewPopulator(source, client, cfg.XMLRoot, metrics, logger)

	if err := pipeline.RegisterConsumer(svc, pipeline.ConsumerRegistration{
		Name:         pipeline.PopulatorHandlerName,
		ConsumeTopic: cfg.WebhookTopic,
		Handler:      populator.Handle,
	}); err != nil {
		logger.Error("Failed to register consumer", err, nil)
		os.Exit(1)
	}

	if err := svc.Start(ctx); err != nil {
		logger.Error("Pipeline stopped with error", err, nil)
		os.Exit(1)
	}
}
