package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStore mirrors the object layout on the filesystem for dry runs and
// local development. Keys map directly to paths under the root directory.
type LocalStore struct {
	root string
}

// NewLocalStore writes documents under root.
func NewLocalStore(root string) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("output directory is required")
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) PutVector(ctx context.Context, doc VectorDocument) error {
	return s.putJSON(ctx, VectorKey(doc.ID), doc)
}

func (s *LocalStore) GetIndex(ctx context.Context) (IndexDocument, error) {
	if err := ctx.Err(); err != nil {
		return IndexDocument{}, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(IndexKey())))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return IndexDocument{}, nil
		}
		return IndexDocument{}, fmt.Errorf("read index: %w", err)
	}

	var doc IndexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return IndexDocument{}, fmt.Errorf("decode index: %w", err)
	}
	return doc, nil
}

func (s *LocalStore) PutIndex(ctx context.Context, doc IndexDocument) error {
	return s.putJSON(ctx, IndexKey(), doc)
}

func (s *LocalStore) putJSON(ctx context.Context, key string, doc any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal %s: %v", ErrStoreWrite, key, err)
	}

	path := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: mkdir for %s: %v", ErrStoreWrite, key, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStoreWrite, key, err)
	}
	return nil
}
