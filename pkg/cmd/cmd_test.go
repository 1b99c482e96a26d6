package cmd

import (
	"context"
	"log/slog"
	"testing"

	"github.com/dukex/classflow/pkg/collaborators"
	"github.com/dukex/classflow/pkg/nodes/builtin"
	"github.com/dukex/classflow/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePersistenceURL(t *testing.T) {
	tests := []struct {
		url      string
		provider string
		location string
	}{
		{url: "file:///var/lib/classflow", provider: "file", location: "/var/lib/classflow"},
		{url: "./data", provider: "file", location: "./data"},
		{url: "postgres://u:p@db:5432/classflow", provider: "postgres", location: "u:p@db:5432/classflow"},
		{url: "PostgreSQL://db/classflow", provider: "postgresql", location: "db/classflow"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			provider, location := parsePersistenceURL(tt.url)
			assert.Equal(t, tt.provider, provider)
			assert.Equal(t, tt.location, location)
		})
	}
}

func TestNewPersistence(t *testing.T) {
	store, err := NewPersistence(context.Background(), slog.Default(), "file://"+t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &file.Persistence{}, store)

	_, err = NewPersistence(context.Background(), slog.Default(), "mongodb://db")
	require.Error(t, err)

	_, err = NewPersistence(context.Background(), slog.Default(), "file://")
	require.Error(t, err)
}

func TestNewEventBus(t *testing.T) {
	bus, err := NewEventBus("none", "test", slog.Default())
	require.NoError(t, err)
	assert.Nil(t, bus)

	bus, err = NewEventBus("gochannel", "test", slog.Default())
	require.NoError(t, err)
	require.NotNil(t, bus)
	require.NoError(t, bus.Close())

	_, err = NewEventBus("rabbitmq", "test", slog.Default())
	require.Error(t, err)
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(slog.Default(), "", "", "")
	require.NoError(t, err)
	assert.Len(t, reg.Types(), len(builtin.Executors(collaborators.Services{}, nil)))

	_, ok := reg.HealthCheck()
	assert.True(t, ok)
}

func TestNewTracer(t *testing.T) {
	tracer, shutdown, err := NewTracer(context.Background(), false, "test")
	require.NoError(t, err)
	assert.NotNil(t, tracer)
	assert.NoError(t, shutdown(context.Background()))
}
