// Package file provides the file-based persistence implementation. Every workflow and
// execution record is one JSON document under the root directory.
package file

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dukex/classflow/pkg/persistence"
	json "github.com/goccy/go-json"
	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"
)

const (
	workflowsDir  = "workflows"
	executionsDir = "executions"

	loadConcurrency = 8
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root          string
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
// A "file://" prefix is accepted.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.TrimPrefix(root, "file://")

	return &Persistence{
		root:          cleanRoot,
		workflowRepo:  &WorkflowRepository{store: store{dir: filepath.Join(cleanRoot, workflowsDir)}},
		executionRepo: &ExecutionRepository{store: store{dir: filepath.Join(cleanRoot, executionsDir)}},
	}
}

func (fp *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return fp.workflowRepo
}

func (fp *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return fp.executionRepo
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	info, err := os.Stat(fp.root)
	if err != nil {
		return fmt.Errorf("file persistence root %s: %w", fp.root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("file persistence root %s is not a directory", fp.root)
	}

	return nil
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// store reads and writes one JSON document per id inside dir.
type store struct {
	dir string
}

func (s store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// read decodes the document for id into out. It reports false when the file does not exist.
func (s store) read(id string, out any) (bool, error) {
	body, err := os.ReadFile(s.path(id)) // #nosec G304 -- id is validated by the callers
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", id, err)
	}

	return true, nil
}

// write replaces the document for id atomically.
func (s store) write(id string, value any) error {
	if err := os.MkdirAll(s.dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", id, err)
	}

	return renameio.WriteFile(s.path(id), data, 0600)
}

func (s store) remove(id string) error {
	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}

// ids lists the stored document ids.
func (s store) ids() ([]string, error) {
	matches, err := fs.Glob(os.DirFS(s.dir), "*.json")
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(matches))
	for i, match := range matches {
		ids[i] = strings.TrimSuffix(match, ".json")
	}

	return ids, nil
}

// loadAll decodes every document concurrently, in the order returned by ids.
func loadAll[T any](ctx context.Context, s store) ([]*T, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return []*T{}, nil
	}

	ids, err := s.ids()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	loaded := make([]*T, len(ids))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)

	for i, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			var item T

			found, err := s.read(id, &item)
			if err != nil {
				return err
			}

			if found {
				loaded[i] = &item
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*T, 0, len(loaded))

	for _, item := range loaded {
		if item != nil {
			out = append(out, item)
		}
	}

	return out, nil
}
