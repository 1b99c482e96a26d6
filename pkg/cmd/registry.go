// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/nodes/builtin"
	"github.com/dukex/classflow/pkg/registry"
)

const httpRequestTimeout = 30 * time.Second

// NewRegistry registers every built-in node. Collaborator nodes talk to servicesURL and
// aiURL; an empty URL leaves those nodes unconfigured.
func NewRegistry(log *slog.Logger, servicesURL, aiURL, token string) (*registry.Registry, error) {
	reg := registry.NewRegistry(log)

	var opts []collaborators.ClientOption
	if token != "" {
		opts = append(opts, collaborators.WithToken(token))
	}

	client := collaborators.NewClient(servicesURL, aiURL, opts...)

	err := builtin.Register(reg, client.Services(), &http.Client{Timeout: httpRequestTimeout})
	if err != nil {
		return nil, err
	}

	return reg, nil
}
