// Package registry maps node types to their executors.
package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"dario.cat/mergo"
	"github.com/dukex/classflow/pkg/models"
	"github.com/dukex/classflow/pkg/protocol"
)

var ErrEmptyNodeType = errors.New("node type is required")

type Registry struct {
	logger    *slog.Logger
	executors map[string]protocol.NodeExecutor
	order     []string
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:    log,
		executors: make(map[string]protocol.NodeExecutor),
	}
}

// Register binds executor to nodeType. A later registration for the same type replaces the earlier one.
func (r *Registry) Register(nodeType string, executor protocol.NodeExecutor) error {
	if strings.TrimSpace(nodeType) == "" {
		return ErrEmptyNodeType
	}

	if _, exists := r.executors[nodeType]; exists {
		r.logger.Warn("Replacing registered executor", "node_type", nodeType)
	} else {
		r.order = append(r.order, nodeType)
	}

	r.executors[nodeType] = executor

	return nil
}

// MustRegister is Register for startup wiring, where a bad type is a programming error.
func (r *Registry) MustRegister(nodeType string, executor protocol.NodeExecutor) {
	if err := r.Register(nodeType, executor); err != nil {
		panic(fmt.Errorf("register %q: %w", nodeType, err))
	}
}

func (r *Registry) Get(nodeType string) (protocol.NodeExecutor, bool) {
	executor, ok := r.executors[nodeType]

	return executor, ok
}

// Types returns the registered node types in registration order.
func (r *Registry) Types() []string {
	return append([]string(nil), r.order...)
}

// Definition returns the editor definition for nodeType when its executor provides one.
func (r *Registry) Definition(nodeType string) (models.NodeDefinition, bool) {
	executor, ok := r.executors[nodeType]
	if !ok {
		return models.NodeDefinition{}, false
	}

	definer, ok := executor.(protocol.Definer)
	if !ok {
		return models.NodeDefinition{}, false
	}

	def := definer.Definition()
	if def.Type == "" {
		def.Type = nodeType
	}

	return def, true
}

// Definitions lists every available definition, optionally restricted to one category.
func (r *Registry) Definitions(category string) []models.NodeDefinition {
	defs := make([]models.NodeDefinition, 0, len(r.order))

	for _, nodeType := range r.order {
		def, ok := r.Definition(nodeType)
		if !ok {
			continue
		}

		if category != "" && !strings.EqualFold(def.Category, category) {
			continue
		}

		defs = append(defs, def)
	}

	return defs
}

// IsTrigger reports whether nodeType is declared in the Trigger category.
func (r *Registry) IsTrigger(nodeType string) bool {
	def, ok := r.Definition(nodeType)

	return ok && def.Category == models.CategoryTrigger
}

// Config returns the node's data with definition defaults filled into absent keys.
// A key present on the node keeps its value, zero values included. A nil value counts as absent.
func (r *Registry) Config(node *models.Node) (map[string]any, error) {
	config := maps.Clone(map[string]any(node.Data))
	if config == nil {
		config = make(map[string]any)
	}

	def, ok := r.Definition(node.Data.NodeType())
	if !ok {
		return config, nil
	}

	defaults := def.Defaults()
	maps.DeleteFunc(defaults, func(key string, _ any) bool {
		return config[key] != nil
	})

	if len(defaults) == 0 {
		return config, nil
	}

	if err := mergo.Merge(&config, defaults); err != nil {
		return nil, fmt.Errorf("apply defaults for node %s: %w", node.ID, err)
	}

	return config, nil
}

func (r *Registry) HealthCheck() (string, bool) {
	if len(r.executors) == 0 {
		return "no node executors registered", false
	}

	return fmt.Sprintf("%d node executors registered", len(r.executors)), true
}
