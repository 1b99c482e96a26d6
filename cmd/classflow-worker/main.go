package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukex/classflow/pkg/cmd"
	"github.com/dukex/classflow/pkg/log"
	"github.com/dukex/classflow/pkg/sources/queue"
	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
)

const serviceName = "classflow-worker"

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Run scheduled and event-triggered workflows",
		EnableShellCompletion: true,
		Flags: append(cmd.CommonFlags(),
			&cli.StringFlag{
				Name:    "worker-id",
				Aliases: []string{"id"},
				Usage:   "Custom worker ID (auto-generated if not provided)",
				Sources: cli.EnvVars("WORKER_ID"),
			},
			&cli.DurationFlag{
				Name:    "sync-interval",
				Usage:   "How often scheduled workflows are reloaded",
				Value:   time.Minute,
				Sources: cli.EnvVars("SCHEDULER_SYNC_INTERVAL"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL of the domain event queue (disabled when empty)",
				Sources: cli.EnvVars("REDIS_URL"),
			},
			&cli.StringFlag{
				Name:    "redis-queue",
				Usage:   "Redis list holding domain events",
				Value:   queue.DefaultQueue,
				Sources: cli.EnvVars("REDIS_QUEUE"),
			},
		),
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			workerID := command.String("worker-id")
			if workerID == "" {
				workerID = "worker-" + uuid.New().String()[:8]
			}

			logger := log.WithModule(serviceName).With("worker_id", workerID)
			logger.InfoContext(ctx, "Initializing Classflow Worker")

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runtime, err := cmd.NewRuntime(ctx, command, serviceName, logger)
			if err != nil {
				return err
			}

			defer func() {
				_ = runtime.Close(context.WithoutCancel(ctx))
			}()

			return NewWorker(logger, runtime, Config{
				SyncInterval: command.Duration("sync-interval"),
				RedisURL:     command.String("redis-url"),
				RedisQueue:   command.String("redis-queue"),
			}).Run(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule(serviceName).Error("Classflow Worker stopped", "error", err)
		os.Exit(1)
	}
}
