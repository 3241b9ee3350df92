// Package pipeline wires the pub/sub router, middleware chain, and the
// consumers that process webhook events.
//
// Side effects are at-most-once per message invocation. There is no retry
// middleware and no poison queue: a handler error is surfaced to the router
// and redelivery is left entirely to the configured broker.
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/plugin"

	configpkg "github.com/brysontyrrell/voltron/internal/config"
	errspkg "github.com/brysontyrrell/voltron/internal/errors"
	idspkg "github.com/brysontyrrell/voltron/internal/ids"
	loggingpkg "github.com/brysontyrrell/voltron/internal/logging"
	transportpkg "github.com/brysontyrrell/voltron/internal/transport"
)

var routerRun = func(router *message.Router, ctx context.Context) error {
	return router.Run(ctx)
}

// ServiceDependencies holds the optional collaborators that the Service can use.
// Leave fields nil to use the defaults.
type ServiceDependencies struct {
	Transport                 *transportpkg.Transport  // Overrides the registry-built transport.
	Registry                  *transportpkg.Registry   // Defaults to the package registry.
	Middlewares               []MiddlewareRegistration // Appended after the default middleware chain.
	DisableDefaultMiddlewares bool                     // Skips registering the default middleware chain when true.
}

// Service wires a Watermill router, publisher, subscriber, and middleware chain.
type Service struct {
	Conf   *configpkg.Config
	Logger loggingpkg.ServiceLogger

	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router

	httpServers   map[int]*http.ServeMux
	httpServersMu sync.Mutex
}

// NewService constructs a Service for the supplied configuration. Register
// consumers on the returned Service before calling Start.
func NewService(ctx context.Context, conf *configpkg.Config, log loggingpkg.ServiceLogger, deps ServiceDependencies) *Service {
	wmLogger := loggingpkg.NewWatermillAdapter(log)
	log.Info("Creating pipeline service",
		loggingpkg.LogFields{
			"pubsub_system": conf.PubSubSystem,
			"config":        conf,
		})

	s := &Service{
		Conf:   conf,
		Logger: log,
	}

	if deps.Transport != nil {
		s.publisher = deps.Transport.Publisher
		s.subscriber = deps.Transport.Subscriber
	} else {
		registry := deps.Registry
		if registry == nil {
			registry = transportpkg.DefaultRegistry
		}
		transport, err := registry.Build(ctx, conf, wmLogger)
		if err != nil {
			panic(err)
		}
		s.publisher = transport.Publisher
		s.subscriber = transport.Subscriber
	}

	router, err := message.NewRouter(message.RouterConfig{}, wmLogger)
	if err != nil {
		panic(err)
	}

	s.router = router
	s.router.AddPlugin(plugin.SignalsHandler)

	s.registerConfiguredMiddlewares(deps)

	return s
}

// Start runs the underlying Watermill router until the provided context is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.startHTTPServers()
	return routerRun(s.router, ctx)
}

// Publisher exposes the transport publisher for producers that live outside
// the router, such as the ingestion endpoint.
func (s *Service) Publisher() message.Publisher {
	return s.publisher
}

func (s *Service) registerConfiguredMiddlewares(deps ServiceDependencies) {
	var defaults []MiddlewareRegistration
	if !deps.DisableDefaultMiddlewares {
		defaults = DefaultMiddlewares()
	}
	registrations := make([]MiddlewareRegistration, 0, len(defaults)+len(deps.Middlewares))
	registrations = append(registrations, defaults...)
	registrations = append(registrations, deps.Middlewares...)

	for _, reg := range registrations {
		if err := s.RegisterMiddleware(reg); err != nil {
			name := reg.Name
			if name == "" {
				name = "anonymous_middleware"
			}
			panic(fmt.Sprintf("failed to register middleware %s: %v", name, err))
		}
	}
}

// ConsumerRegistration wires a no-publish Watermill handler onto the router.
type ConsumerRegistration struct {
	Name         string
	ConsumeTopic string
	Handler      message.NoPublishHandlerFunc
	Subscriber   message.Subscriber
}

// RegisterConsumer attaches the provided consumer to the service router.
func RegisterConsumer(svc *Service, cfg ConsumerRegistration) error {
	if svc == nil {
		return errspkg.ErrServiceRequired
	}
	if cfg.Handler == nil {
		return errspkg.ErrHandlerRequired
	}
	if cfg.Name == "" {
		return errspkg.ErrHandlerNameRequired
	}
	if cfg.ConsumeTopic == "" {
		return errspkg.ErrConsumeTopicRequired
	}
	if cfg.Subscriber == nil {
		cfg.Subscriber = svc.subscriber
	}

	svc.router.AddNoPublisherHandler(
		cfg.Name,
		cfg.ConsumeTopic,
		cfg.Subscriber,
		cfg.Handler,
	)

	return nil
}

// Publish emits a raw payload to the provided topic using the service publisher.
func (s *Service) Publish(ctx context.Context, topic string, payload []byte) error {
	return Publish(ctx, s.publisher, topic, payload)
}

// Publish emits a raw payload to the provided topic.
func Publish(ctx context.Context, publisher message.Publisher, topic string, payload []byte) error {
	if publisher == nil {
		return errspkg.ErrPublisherRequired
	}
	if topic == "" {
		return errspkg.ErrTopicRequired
	}

	msg := message.NewMessage(idspkg.CreateULID(), payload)
	if ctx != nil {
		msg.SetContext(ctx)
	}

	return publisher.Publish(topic, msg)
}

// RegisterHTTPHandler exposes an HTTP handler on the given port when the
// service starts. Handlers registered on the same port share one mux.
func (s *Service) RegisterHTTPHandler(port int, pattern string, handler http.Handler) {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	if s.httpServers == nil {
		s.httpServers = make(map[int]*http.ServeMux)
	}

	mux, ok := s.httpServers[port]
	if !ok {
		mux = http.NewServeMux()
		s.httpServers[port] = mux
	}

	mux.Handle(pattern, handler)
}

func (s *Service) startHTTPServers() {
	s.httpServersMu.Lock()
	defer s.httpServersMu.Unlock()

	for port, mux := range s.httpServers {
		addr := fmt.Sprintf(":%d", port)
		s.Logger.Info("Starting HTTP server", loggingpkg.LogFields{"address": addr})
		go func(addr string, handler http.Handler) {
			if err := http.ListenAndServe(addr, handler); err != nil {
				s.Logger.Error("Failed to start HTTP server", err, loggingpkg.LogFields{"address": addr})
			}
		}(addr, mux)
	}
}
