package cmd

import (
	"github.com/dukex/classflow/pkg/workflow"
	cli "github.com/urfave/cli/v3"
)

// CommonFlags are shared by every classflow binary.
func CommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "database-url",
			Usage:    "Persistence URL: file://<dir> or postgres://...",
			Required: true,
			Sources:  cli.EnvVars("DATABASE_URL"),
		},
		&cli.StringFlag{
			Name:    "event-bus",
			Usage:   "Event bus provider (none, gochannel, kafka)",
			Value:   "none",
			Sources: cli.EnvVars("EVENT_BUS"),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Usage:   "Log level (debug, info, warn, error)",
			Value:   "info",
			Sources: cli.EnvVars("LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:    "services-url",
			Usage:   "Base URL of the school services API used by collaborator nodes",
			Sources: cli.EnvVars("SERVICES_URL"),
		},
		&cli.StringFlag{
			Name:    "services-token",
			Usage:   "Bearer token sent to the school services and AI APIs",
			Sources: cli.EnvVars("SERVICES_TOKEN"),
		},
		&cli.StringFlag{
			Name:    "ai-url",
			Usage:   "Base URL of the AI generation and grading service",
			Sources: cli.EnvVars("AI_SERVICE_URL"),
		},
		&cli.BoolFlag{
			Name:    "tracing",
			Usage:   "Export OpenTelemetry traces (configured by OTEL_EXPORTER_OTLP_*)",
			Sources: cli.EnvVars("OTEL_ENABLED"),
		},
		&cli.IntFlag{
			Name:    "max-node-visits",
			Usage:   "Maximum node visits per run before it fails",
			Value:   workflow.DefaultMaxVisits,
			Sources: cli.EnvVars("MAX_NODE_VISITS"),
		},
	}
}
