package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukex/classflow/pkg/cmd"
	"github.com/dukex/classflow/pkg/dispatcher"
	"github.com/dukex/classflow/pkg/events"
	"github.com/dukex/classflow/pkg/scheduler"
	"github.com/dukex/classflow/pkg/sources/queue"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	SyncInterval time.Duration
	RedisURL     string
	RedisQueue   string
}

// Worker fires scheduled workflows and turns incoming domain events into runs.
type Worker struct {
	logger     *slog.Logger
	runtime    *cmd.Runtime
	config     Config
	scheduler  *scheduler.Scheduler
	dispatcher *dispatcher.Dispatcher
}

func NewWorker(logger *slog.Logger, runtime *cmd.Runtime, config Config) *Worker {
	workflows := runtime.Persistence.WorkflowRepository()

	if config.SyncInterval <= 0 {
		config.SyncInterval = time.Minute
	}

	return &Worker{
		logger:     logger,
		runtime:    runtime,
		config:     config,
		scheduler:  scheduler.New(workflows, runtime.Engine, logger),
		dispatcher: dispatcher.New(workflows, runtime.Engine, logger),
	}
}

// Run blocks until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	if bus := w.runtime.EventBus; bus != nil {
		if err := bus.Handle(events.DomainEventReceivedEvent, w.dispatcher.HandleDomainEvent); err != nil {
			return err
		}

		if err := bus.Subscribe(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Failed to subscribe to event bus", "error", err)

			return err
		}
	}

	var source *queue.Source

	if w.config.RedisURL != "" {
		client, err := queue.Connect(ctx, w.config.RedisURL)
		if err != nil {
			return err
		}

		defer func() {
			if err := client.Close(); err != nil {
				w.logger.Error("Failed to close redis client", "error", err)
			}
		}()

		source, err = queue.NewSource(client, w.config.RedisQueue, w.dispatcher, w.logger)
		if err != nil {
			return err
		}
	}

	if err := w.scheduler.Sync(ctx); err != nil {
		return err
	}

	w.scheduler.Start()
	defer w.scheduler.Stop()

	w.logger.InfoContext(ctx, "Worker started", "jobs", len(w.scheduler.Jobs()))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w.syncLoop(gctx)

		return nil
	})

	if source != nil {
		g.Go(func() error {
			source.Start(gctx)
			<-gctx.Done()
			source.Stop()

			return nil
		})
	}

	err := g.Wait()

	w.logger.Info("Shutting down worker")

	return err
}

func (w *Worker) syncLoop(ctx context.Context) {
	ticker := time.NewTicker(w.config.SyncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.scheduler.Sync(ctx); err != nil && ctx.Err() == nil {
				w.logger.ErrorContext(ctx, "Failed to sync scheduled workflows", "error", err)
			}
		}
	}
}
