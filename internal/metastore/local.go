package metastore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

// LocalStore writes metadata records as JSON files for dry runs. The item
// shape matches what the document store would hold, keys included.
type LocalStore struct {
	root  string
	model string
}

// NewLocalStore writes records under root/metadata/.
func NewLocalStore(root, model string) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("output directory is required")
	}
	return &LocalStore{root: root, model: model}, nil
}

func (s *LocalStore) Put(ctx context.Context, t *catalog.Template) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(newItem(t, s.model), "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrStoreWrite, t.TemplateID, err)
	}

	dir := filepath.Join(s.root, "metadata")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir: %v", ErrStoreWrite, err)
	}
	path := filepath.Join(dir, t.TemplateID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStoreWrite, t.TemplateID, err)
	}
	return nil
}
