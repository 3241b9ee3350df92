// The poller fetches a configured Jamf Pro API object on an interval and
// publishes each snapshot onto the poller topic.
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/brysontyrrell/voltron/internal/config"
	"github.com/brysontyrrell/voltron/internal/jamf"
	"github.com/brysontyrrell/voltron/internal/logging"
	"github.com/brysontyrrell/voltron/internal/poller"
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
	if err := cfg.ValidateJamf(); err != nil {
		log.Fatalf("Jamf Pro credentials are required for poller operation: %v", err)
	}
	if cfg.JSSEndpoint == "" || cfg.JSSObjectID == "" {
		log.Fatal("a JSS endpoint and object ID are required for poller operation")
	}

	logger := logging.NewSlogServiceLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	logger.Info("Starting poller", logging.LogFields{"config": cfg})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tr, err := transport.Build(ctx, cfg, logging.NewWatermillAdapter(logger))
	if err != nil {
		logger.Error("Failed to build transport", err, logging.LogFields{
			"pubsub_system": cfg.PubSubSystem,
		})
		os.Exit(1)
	}

	client := jamf.New(cfg.JSSDomain, cfg.JSSUsername, cfg.JSSPassword, cfg.DeviceType, logger)

	p := poller.New(client, tr.Publisher, cfg.PollerTopic, cfg.JSSEndpoint, cfg.JSSObjectID, logger)
	runner := poller.NewRunner(p, cfg.PollInterval, logger)

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Poller stopped with error", err, nil)
		os.Exit(1)
	}

	if err := tr.Publisher.Close(); err != nil {
		logger.Error("Failed to close publisher", err, nil)
	}
}
