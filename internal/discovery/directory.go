package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

// DirectorySource walks the curated catalog tree. The tree is laid out as
// {root}/{category}/{slug}/metadata.json, one directory per template, with
// category directories named after the industry vocabulary.
type DirectorySource struct {
	root   string
	bucket string
	region string
	logger *zap.Logger
}

// NewDirectorySource walks the catalog under root. bucket and region are
// used to synthesize asset locations for records that omit them.
func NewDirectorySource(root, bucket, region string, logger *zap.Logger) (*DirectorySource, error) {
	if root == "" {
		return nil, errors.New("templates directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectorySource{root: root, bucket: bucket, region: region, logger: logger}, nil
}

func (s *DirectorySource) Name() string { return "directory" }

func (s *DirectorySource) Discover(ctx context.Context) ([]catalog.Template, int, error) {
	var templates []catalog.Template
	skipped := 0

	for _, category := range catalog.Industries {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}

		categoryDir := filepath.Join(s.root, category)
		entries, err := os.ReadDir(categoryDir)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, skipped, fmt.Errorf("%w: read category %s: %v", ErrDiscovery, category, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() || skipDir(entry.Name()) {
				continue
			}

			slug := entry.Name()
			record, err := s.loadMetadata(filepath.Join(categoryDir, slug), category, slug)
			if err != nil {
				skipped++
				s.logger.Warn("skipping template",
					zap.String("category", category),
					zap.String("slug", slug),
					zap.Error(err))
				continue
			}
			templates = append(templates, *record)
		}
	}

	s.logger.Info("directory discovery complete",
		zap.String("root", s.root),
		zap.Int("found", len(templates)),
		zap.Int("skipped", skipped))
	return templates, skipped, nil
}

// skipDir filters working directories out of the walk.
func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}

func (s *DirectorySource) loadMetadata(dir, category, slug string) (*catalog.Template, error) {
	path := filepath.Join(dir, "metadata.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, catalog.ErrMetadataMissing
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var record catalog.Template
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	if record.TemplateID == "" {
		record.TemplateID = slug
	}
	if record.Industry == "" {
		record.Industry = category
	}
	if record.Source == "" {
		record.Source = catalog.SourceCurated
	}

	if record.Location.Path == "" {
		record.Location.Path = fmt.Sprintf("website-templates/%s/%s/", category, slug)
	}
	if record.Location.Bucket == "" {
		record.Location.Bucket = s.bucket
	}
	if record.Location.PreviewURL == "" && s.bucket != "" {
		record.Location.PreviewURL = fmt.Sprintf(
			"https://%s.s3.%s.amazonaws.com/%sindex.html",
			s.bucket, s.region, record.Location.Path)
	}
	return &record, nil
}
