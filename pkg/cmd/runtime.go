package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dukex/classflow/pkg/eventbus"
	"github.com/dukex/classflow/pkg/otelhelper"
	"github.com/dukex/classflow/pkg/persistence"
	"github.com/dukex/classflow/pkg/registry"
	"github.com/dukex/classflow/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

// Runtime holds the components every binary builds from CommonFlags.
type Runtime struct {
	Persistence persistence.Persistence
	Registry    *registry.Registry
	EventBus    eventbus.EventBus
	Engine      *workflow.Executor

	logger   *slog.Logger
	shutdown otelhelper.ShutdownFunc
}

// NewRuntime opens persistence, the event bus and the tracer, and builds the engine.
func NewRuntime(ctx context.Context, command *cli.Command, serviceName string, logger *slog.Logger) (*Runtime, error) {
	reg, err := NewRegistry(logger, command.String("services-url"), command.String("ai-url"), command.String("services-token"))
	if err != nil {
		return nil, err
	}

	store, err := NewPersistence(ctx, logger, command.String("database-url"))
	if err != nil {
		return nil, err
	}

	bus, err := NewEventBus(command.String("event-bus"), serviceName, logger)
	if err != nil {
		_ = store.Close(ctx)

		return nil, err
	}

	tracer, shutdown, err := NewTracer(ctx, command.Bool("tracing"), serviceName)
	if err != nil {
		_ = store.Close(ctx)

		if bus != nil {
			_ = bus.Close()
		}

		return nil, err
	}

	opts := []workflow.Option{
		workflow.WithTracer(tracer),
		workflow.WithMaxVisits(command.Int("max-node-visits")),
	}

	if bus != nil {
		opts = append(opts, workflow.WithEventBus(bus))
	}

	return &Runtime{
		Persistence: store,
		Registry:    reg,
		EventBus:    bus,
		Engine:      workflow.NewExecutor(store, reg, logger, opts...),
		logger:      logger,
		shutdown:    shutdown,
	}, nil
}

// Close waits for in-flight runs, then releases everything NewRuntime opened.
func (r *Runtime) Close(ctx context.Context) error {
	r.Engine.Wait()

	var errs []error

	if r.EventBus != nil {
		errs = append(errs, r.EventBus.Close())
	}

	errs = append(errs, r.shutdown(ctx), r.Persistence.Close(ctx))

	err := errors.Join(errs...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to close runtime", "error", err)
	}

	return err
}
