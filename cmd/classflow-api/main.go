package main

import (
	"context"
	"os"

	"github.com/dukex/classflow/pkg/cmd"
	"github.com/dukex/classflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const (
	serviceName = "classflow-api"
	defaultPort = 9091
)

func main() {
	command := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Manage and run classroom workflows over HTTP",
		EnableShellCompletion: true,
		Flags: append(cmd.CommonFlags(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
		),
		Commands: []*cli.Command{
			ImportCommand(),
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Classflow API")

			runtime, err := cmd.NewRuntime(ctx, command, serviceName, logger)
			if err != nil {
				return err
			}

			defer func() {
				_ = runtime.Close(context.WithoutCancel(ctx))
			}()

			return NewAPI(logger, runtime).Start(ctx, command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("api").Error("Classflow API stopped", "error", err)
		os.Exit(1)
	}
}
