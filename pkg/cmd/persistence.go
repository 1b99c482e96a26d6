package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dukex/classflow/pkg/persistence"
	"github.com/dukex/classflow/pkg/persistence/file"
	"github.com/dukex/classflow/pkg/persistence/postgresql"
)

// NewPersistence opens the store named by databaseURL: file://<dir>, postgres://... or a
// bare directory path.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	provider, location := parsePersistenceURL(databaseURL)

	switch provider {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, err
		}

		return store, nil
	case "file":
		if location == "" {
			return nil, fmt.Errorf("file persistence needs a directory: %q", databaseURL)
		}

		return file.NewPersistence(location), nil
	default:
		return nil, fmt.Errorf("unsupported persistence provider: %s", provider)
	}
}

func parsePersistenceURL(databaseURL string) (string, string) {
	provider, location, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file", databaseURL
	}

	return strings.ToLower(provider), location
}
