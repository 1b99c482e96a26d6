package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/classflow/pkg/models"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Import loads workflow definitions from YAML or JSON files and saves them. Every
// definition is validated before the first one is written.
func (w *Workflow) Import(ctx context.Context, paths ...string) ([]*models.Workflow, error) {
	var workflows []*models.Workflow

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		decoded, err := DecodeWorkflows(path, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		workflows = append(workflows, decoded...)
	}

	if len(workflows) == 0 {
		return nil, ErrNoWorkflowsInFiles
	}

	for _, wf := range workflows {
		if wf == nil {
			return nil, ErrWorkflowNil
		}

		if err := w.Validate(wf); err != nil {
			return nil, fmt.Errorf("workflow %q: %w", wf.Name, err)
		}
	}

	saved := make([]*models.Workflow, 0, len(workflows))

	for _, wf := range workflows {
		result, err := w.Save(ctx, wf)
		if err != nil {
			return saved, fmt.Errorf("workflow %q: %w", wf.Name, err)
		}

		saved = append(saved, result)
	}

	return saved, nil
}

// DecodeWorkflows parses one definition or a list of definitions. The format is picked
// from the file extension: .yaml, .yml or .json.
func DecodeWorkflows(name string, data []byte) ([]*models.Workflow, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return decodeJSON(data)
	case ".yaml", ".yml":
		return decodeYAML(data)
	default:
		return nil, NewValidationError("Import", "unsupported_format", "expected a .yaml, .yml or .json file", ErrUnsupportedFormat)
	}
}

func decodeJSON(data []byte) ([]*models.Workflow, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var workflows []*models.Workflow
		if err := json.Unmarshal(trimmed, &workflows); err != nil {
			return nil, NewValidationError("Import", "invalid_json", err.Error(), ErrInvalidWorkflow)
		}

		return workflows, nil
	}

	var wf models.Workflow
	if err := json.Unmarshal(trimmed, &wf); err != nil {
		return nil, NewValidationError("Import", "invalid_json", err.Error(), ErrInvalidWorkflow)
	}

	return []*models.Workflow{&wf}, nil
}

// decodeYAML accepts multi-document streams; each document is a workflow or a list of them.
func decodeYAML(data []byte) ([]*models.Workflow, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))

	var workflows []*models.Workflow

	for {
		var doc yaml.Node

		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return workflows, nil
		}

		if err != nil {
			return nil, NewValidationError("Import", "invalid_yaml", err.Error(), ErrInvalidWorkflow)
		}

		if len(doc.Content) == 0 {
			continue
		}

		if doc.Content[0].Kind == yaml.SequenceNode {
			var list []*models.Workflow
			if err := doc.Decode(&list); err != nil {
				return nil, NewValidationError("Import", "invalid_yaml", err.Error(), ErrInvalidWorkflow)
			}

			workflows = append(workflows, list...)

			continue
		}

		var wf models.Workflow
		if err := doc.Decode(&wf); err != nil {
			return nil, NewValidationError("Import", "invalid_yaml", err.Error(), ErrInvalidWorkflow)
		}

		workflows = append(workflows, &wf)
	}
}
