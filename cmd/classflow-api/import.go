package main

import (
	"context"
	"errors"

	"github.com/dukex/classflow/pkg/cmd"
	"github.com/dukex/classflow/pkg/log"
	"github.com/dukex/classflow/pkg/services"
	cli "github.com/urfave/cli/v3"
)

var errNoFiles = errors.New("import needs at least one workflow file")

// ImportCommand loads workflow definitions from YAML or JSON files into persistence.
func ImportCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Aliases:   []string{"i"},
		Usage:     "Import workflow definitions from YAML or JSON files",
		ArgsUsage: "<file...>",
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("import")

			paths := command.Args().Slice()
			if len(paths) == 0 {
				return errNoFiles
			}

			store, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := store.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			imported, err := services.NewWorkflow(store).Import(ctx, paths...)
			for _, wf := range imported {
				logger.InfoContext(ctx, "Imported workflow", "workflow_id", wf.ID, "name", wf.Name, "active", wf.IsActive)
			}

			return err
		},
	}
}
