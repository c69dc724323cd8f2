// Package indexer orchestrates the pipeline: discover templates, embed
// their descriptions, and persist vectors and metadata.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
	"github.com/sitesmithlabs/templateindex/internal/discovery"
	"github.com/sitesmithlabs/templateindex/internal/embeddings"
	"github.com/sitesmithlabs/templateindex/internal/metastore"
	"github.com/sitesmithlabs/templateindex/internal/vectorstore"
)

// mocked in tests
var timeNow = time.Now

// ErrNoSources is returned when the indexer is constructed without any
// discovery source.
var ErrNoSources = errors.New("at least one discovery source is required")

// Options configures an Indexer.
type Options struct {
	Sources  []discovery.Source
	Embedder embeddings.Provider
	Vectors  vectorstore.Store
	Metadata metastore.Store
	Logger   *zap.Logger

	// Model is stamped into the index document.
	Model string

	// Workers bounds concurrent template processing. Zero or one means
	// sequential, which is the default: provider rate limits dominate
	// run time anyway.
	Workers int

	// Only restricts the run to a single template id when set.
	Only string
}

// Indexer runs the indexing pipeline.
type Indexer struct {
	sources  []discovery.Source
	embedder embeddings.Provider
	vectors  vectorstore.Store
	metadata metastore.Store
	logger   *zap.Logger
	model    string
	workers  int
	only     string
}

// New validates the wiring and returns an Indexer.
func New(opts Options) (*Indexer, error) {
	if len(opts.Sources) == 0 {
		return nil, ErrNoSources
	}
	if opts.Embedder == nil {
		return nil, errors.New("embedding provider is required")
	}
	if opts.Vectors == nil {
		return nil, errors.New("vector store is required")
	}
	if opts.Metadata == nil {
		return nil, errors.New("metadata store is required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Indexer{
		sources:  opts.Sources,
		embedder: opts.Embedder,
		vectors:  opts.Vectors,
		metadata: opts.Metadata,
		logger:   opts.Logger,
		model:    opts.Model,
		workers:  workers,
		only:     opts.Only,
	}, nil
}

// SourceSummary counts one source's outcomes.
type SourceSummary struct {
	Source    string
	Processed int
	Skipped   int
	Failed    int
}

// Summary reports a whole run.
type Summary struct {
	RunID   string
	Sources []SourceSummary
}

// Processed sums processed counts across sources.
func (s Summary) Processed() int {
	total := 0
	for _, src := range s.Sources {
		total += src.Processed
	}
	return total
}

// Failed sums failure counts across sources.
func (s Summary) Failed() int {
	total := 0
	for _, src := range s.Sources {
		total += src.Failed
	}
	return total
}

// Run executes the pipeline once. Per-template failures are isolated: a
// template that fails validation, embedding or persistence is counted and
// logged, and the run continues. The index document is merged and written
// once, after every source has been processed, covering only the templates
// whose vector and metadata writes both succeeded.
func (i *Indexer) Run(ctx context.Context) (Summary, error) {
	runID := uuid.NewString()
	logger := i.logger.With(zap.String("run_id", runID))
	start := timeNow()

	summary := Summary{RunID: runID}
	var indexEntries []vectorstore.IndexEntry

	for _, source := range i.sources {
		srcLogger := logger.With(zap.String("source", source.Name()))

		templates, skipped, err := source.Discover(ctx)
		if err != nil {
			return summary, fmt.Errorf("discover %s: %w", source.Name(), err)
		}

		srcSummary := SourceSummary{Source: source.Name(), Skipped: skipped}
		entries, err := i.processAll(ctx, srcLogger, templates, &srcSummary)
		summary.Sources = append(summary.Sources, srcSummary)
		if err != nil {
			return summary, err
		}
		indexEntries = append(indexEntries, entries...)
	}

	if len(indexEntries) > 0 {
		if err := i.updateIndex(ctx, indexEntries); err != nil {
			return summary, err
		}
	}

	logger.Info("indexing run complete",
		zap.Int("processed", summary.Processed()),
		zap.Int("failed", summary.Failed()),
		zap.Duration("elapsed", timeNow().Sub(start)))
	return summary, nil
}

// processAll runs the per-template pipeline for one source's templates.
// Only context errors propagate; everything else is counted per template.
func (i *Indexer) processAll(ctx context.Context, logger *zap.Logger, templates []catalog.Template, summary *SourceSummary) ([]vectorstore.IndexEntry, error) {
	var (
		mu      sync.Mutex
		entries []vectorstore.IndexEntry
	)

	record := func(entry vectorstore.IndexEntry, failed bool) {
		mu.Lock()
		defer mu.Unlock()
		if failed {
			summary.Failed++
			return
		}
		summary.Processed++
		entries = append(entries, entry)
	}

	process := func(ctx context.Context, t catalog.Template) error {
		if i.only != "" && t.TemplateID != i.only {
			return nil
		}
		entry, err := i.processOne(ctx, logger, &t)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("template failed",
				zap.String("template_id", t.TemplateID),
				zap.Error(err))
			record(vectorstore.IndexEntry{}, true)
			return nil
		}
		record(entry, false)
		return nil
	}

	if i.workers <= 1 {
		for _, t := range templates {
			if err := ctx.Err(); err != nil {
				return entries, err
			}
			if err := process(ctx, t); err != nil {
				return entries, err
			}
		}
		return entries, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)
	for _, t := range templates {
		t := t
		g.Go(func() error { return process(gctx, t) })
	}
	if err := g.Wait(); err != nil {
		return entries, err
	}
	return entries, nil
}

// processOne validates, embeds and persists a single template.
func (i *Indexer) processOne(ctx context.Context, logger *zap.Logger, t *catalog.Template) (vectorstore.IndexEntry, error) {
	if err := t.Validate(); err != nil {
		return vectorstore.IndexEntry{}, err
	}

	now := timeNow().UTC().Format(time.RFC3339)
	t.Status = catalog.StatusPublished
	if t.CreatedAt == "" {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	text := catalog.BuildEmbeddingText(t)
	vector, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return vectorstore.IndexEntry{}, err
	}
	if len(vector) != i.embedder.Dimension() {
		return vectorstore.IndexEntry{}, fmt.Errorf("vector dimension %d, want %d",
			len(vector), i.embedder.Dimension())
	}

	doc := vectorstore.VectorDocument{
		ID:       t.TemplateID,
		Vector:   vector,
		Metadata: vectorstore.NewSummary(t),
	}
	if err := i.vectors.PutVector(ctx, doc); err != nil {
		return vectorstore.IndexEntry{}, err
	}

	if err := i.metadata.Put(ctx, t); err != nil {
		// The vector is already written. Flag the split so an operator
		// knows a re-run will reconcile it.
		logger.Warn("metadata write failed after vector write",
			zap.String("template_id", t.TemplateID))
		return vectorstore.IndexEntry{}, err
	}

	logger.Debug("template indexed",
		zap.String("template_id", t.TemplateID),
		zap.String("industry", t.Industry))

	return vectorstore.IndexEntry{
		TemplateID: t.TemplateID,
		Name:       t.Name,
		Industry:   t.Industry,
		Source:     string(t.Source),
	}, nil
}

// updateIndex merges this run's entries into the stored index document.
func (i *Indexer) updateIndex(ctx context.Context, entries []vectorstore.IndexEntry) error {
	existing, err := i.vectors.GetIndex(ctx)
	if err != nil {
		return fmt.Errorf("fetch index: %w", err)
	}

	merged := vectorstore.MergeIndex(existing, entries, i.model, i.embedder.Dimension(), timeNow())
	if err := i.vectors.PutIndex(ctx, merged); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	i.logger.Info("index updated",
		zap.Int("vectors_count", merged.VectorsCount))
	return nil
}
