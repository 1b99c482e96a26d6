package main

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dukex/classflow/pkg/cmd"
	"github.com/dukex/classflow/pkg/dispatcher"
	"github.com/dukex/classflow/pkg/services"
	"github.com/dukex/classflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

const shutdownTimeout = 10 * time.Second

type API struct {
	logger   *slog.Logger
	runtime  *cmd.Runtime
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, runtime *cmd.Runtime) *API {
	return &API{
		logger:   logger,
		runtime:  runtime,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	store := a.runtime.Persistence

	handlers := web.NewAPIHandlers(
		services.NewWorkflow(store),
		services.NewExecution(store, a.runtime.Engine),
		dispatcher.New(store.WorkflowRepository(), a.runtime.Engine, a.logger),
		a.validate,
		a.runtime.Registry,
	)

	return web.NewApp(handlers)
}

// Start serves the API until ctx is done or the process receives SIGINT or SIGTERM.
func (a *API) Start(ctx context.Context, port int) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := a.App()

	errCh := make(chan error, 1)

	go func() {
		errCh <- app.Listen(":"+strconv.Itoa(port), fiber.ListenConfig{DisableStartupMessage: true})
	}()

	a.logger.InfoContext(ctx, "Classflow API listening", "port", port)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down Classflow API")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return nil
}
