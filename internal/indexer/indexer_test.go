package indexer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
	"github.com/sitesmithlabs/templateindex/internal/discovery"
	"github.com/sitesmithlabs/templateindex/internal/vectorstore"
)

type fakeSource struct {
	name      string
	templates []catalog.Template
	skipped   int
	err       error
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Discover(context.Context) ([]catalog.Template, int, error) {
	return f.templates, f.skipped, f.err
}

type fakeEmbedder struct {
	dimension int
	texts     []string
	vector    []float32
	err       error
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.texts = append(f.texts, text)
	if f.vector != nil {
		return f.vector, nil
	}
	return make([]float32, f.dimension), nil
}

func (f *fakeEmbedder) Dimension() int { return f.dimension }
func (f *fakeEmbedder) Close() error   { return nil }

type fakeVectorStore struct {
	vectors   map[string]vectorstore.VectorDocument
	index     vectorstore.IndexDocument
	indexPuts int
	putErr    error
}

func newFakeVectorStore() *fakeVectorStore {
	return &fakeVectorStore{vectors: map[string]vectorstore.VectorDocument{}}
}

func (f *fakeVectorStore) PutVector(_ context.Context, doc vectorstore.VectorDocument) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.vectors[vectorstore.VectorKey(doc.ID)] = doc
	return nil
}

func (f *fakeVectorStore) GetIndex(context.Context) (vectorstore.IndexDocument, error) {
	return f.index, nil
}

func (f *fakeVectorStore) PutIndex(_ context.Context, doc vectorstore.IndexDocument) error {
	f.index = doc
	f.indexPuts++
	return nil
}

type fakeMetaStore struct {
	records map[string]catalog.Template
	err     error
}

func newFakeMetaStore() *fakeMetaStore {
	return &fakeMetaStore{records: map[string]catalog.Template{}}
}

func (f *fakeMetaStore) Put(_ context.Context, t *catalog.Template) error {
	if f.err != nil {
		return f.err
	}
	f.records[t.TemplateID] = *t
	return nil
}

func fixedClock(t *testing.T) time.Time {
	t.Helper()
	fixed := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	orig := timeNow
	timeNow = func() time.Time { return fixed }
	t.Cleanup(func() { timeNow = orig })
	return fixed
}

func newTestIndexer(t *testing.T, sources []discovery.Source, embedder *fakeEmbedder, vectors *fakeVectorStore, metadata *fakeMetaStore) *Indexer {
	t.Helper()
	idx, err := New(Options{
		Sources:  sources,
		Embedder: embedder,
		Vectors:  vectors,
		Metadata: metadata,
		Logger:   zap.NewNop(),
		Model:    "amazon.titan-embed-text-v2:0",
	})
	require.NoError(t, err)
	return idx
}

func TestRun_SingleTemplate(t *testing.T) {
	fixedClock(t)

	source := &fakeSource{name: "directory", templates: []catalog.Template{{
		TemplateID:  "t1",
		Industry:    "finance",
		CTAIntent:   "contact",
		DesignStyle: "modern",
		Sections:    []string{"hero", "about", "contact"},
	}}}
	embedder := &fakeEmbedder{dimension: 4}
	vectors := newFakeVectorStore()
	metadata := newFakeMetaStore()

	idx := newTestIndexer(t, []discovery.Source{source}, embedder, vectors, metadata)
	summary, err := idx.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, summary.Sources, 1)
	assert.Equal(t, 1, summary.Processed())
	assert.Zero(t, summary.Failed())
	assert.NotEmpty(t, summary.RunID)

	// The embedded text carries the synthesized description.
	require.Len(t, embedder.texts, 1)
	assert.Contains(t, embedder.texts[0], "Industry: finance")
	assert.Contains(t, embedder.texts[0],
		"This is a modern template for the finance industry, optimized for contact conversions with sections including hero, about, contact.")

	// Vector document under the expected key, description excluded.
	doc, ok := vectors.vectors["template-embeddings/t1.json"]
	require.True(t, ok)
	assert.Len(t, doc.Vector, 4)
	assert.Equal(t, "published", doc.Metadata.Status)

	// Metadata record stamped published with timestamps.
	record := metadata.records["t1"]
	assert.Equal(t, catalog.StatusPublished, record.Status)
	assert.Equal(t, "2026-08-27T12:00:00Z", record.CreatedAt)
	assert.Equal(t, "2026-08-27T12:00:00Z", record.UpdatedAt)

	// Index merged once with this template's entry.
	assert.Equal(t, 1, vectors.indexPuts)
	require.Len(t, vectors.index.Templates, 1)
	assert.Equal(t, vectorstore.IndexEntry{
		TemplateID: "t1", Industry: "finance",
	}, vectors.index.Templates[0])
	assert.Equal(t, 1, vectors.index.VectorsCount)
	assert.Equal(t, "amazon.titan-embed-text-v2:0", vectors.index.Model)
	assert.Equal(t, 4, vectors.index.Dimension)
}

func TestRun_PartialFailureIsolation(t *testing.T) {
	fixedClock(t)

	source := &fakeSource{name: "directory", templates: []catalog.Template{
		{TemplateID: "good-one", Industry: "finance"},
		{TemplateID: "bad-one", Industry: "spaceflight"},
		{TemplateID: "good-two", Industry: "retail"},
	}}
	embedder := &fakeEmbedder{dimension: 2}
	vectors := newFakeVectorStore()
	metadata := newFakeMetaStore()

	idx := newTestIndexer(t, []discovery.Source{source}, embedder, vectors, metadata)
	summary, err := idx.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Processed())
	assert.Equal(t, 1, summary.Failed())

	// The invalid template never reaches any store.
	assert.NotContains(t, vectors.vectors, "template-embeddings/bad-one.json")
	assert.NotContains(t, metadata.records, "bad-one")
	require.Len(t, vectors.index.Templates, 2)
	assert.Equal(t, "good-one", vectors.index.Templates[0].TemplateID)
	assert.Equal(t, "good-two", vectors.index.Templates[1].TemplateID)
}

func TestRun_MetadataFailureAfterVectorWrite(t *testing.T) {
	fixedClock(t)

	source := &fakeSource{name: "directory", templates: []catalog.Template{
		{TemplateID: "t1", Industry: "finance"},
	}}
	embedder := &fakeEmbedder{dimension: 2}
	vectors := newFakeVectorStore()
	metadata := newFakeMetaStore()
	metadata.err = errors.New("table not found")

	idx := newTestIndexer(t, []discovery.Source{source}, embedder, vectors, metadata)
	summary, err := idx.Run(context.Background())
	require.NoError(t, err)

	// Counted as a failure and kept out of the index, even though the
	// vector document was written.
	assert.Equal(t, 1, summary.Failed())
	assert.Contains(t, vectors.vectors, "template-embeddings/t1.json")
	assert.Zero(t, vectors.indexPuts)
}

func TestRun_DimensionMismatchRejected(t *testing.T) {
	fixedClock(t)

	source := &fakeSource{name: "directory", templates: []catalog.Template{
		{TemplateID: "t1", Industry: "finance"},
	}}
	embedder := &fakeEmbedder{dimension: 4, vector: []float32{1, 2}}
	vectors := newFakeVectorStore()
	metadata := newFakeMetaStore()

	idx := newTestIndexer(t, []discovery.Source{source}, embedder, vectors, metadata)
	summary, err := idx.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Failed())
	assert.Empty(t, vectors.vectors)
	assert.Empty(t, metadata.records)
}

func TestRun_Idempotent(t *testing.T) {
	fixedClock(t)

	templates := []catalog.Template{
		{TemplateID: "t1", Industry: "finance", Sections: []string{"hero"}},
		{TemplateID: "t2", Industry: "retail"},
	}
	embedder := &fakeEmbedder{dimension: 2}
	vectors := newFakeVectorStore()
	metadata := newFakeMetaStore()

	idx := newTestIndexer(t, []discovery.Source{
		&fakeSource{name: "directory", templates: templates},
	}, embedder, vectors, metadata)

	_, err := idx.Run(context.Background())
	require.NoError(t, err)
	firstIndex := vectors.index
	firstVectors := map[string]vectorstore.VectorDocument{}
	for k, v := range vectors.vectors {
		firstVectors[k] = v
	}

	_, err = idx.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, firstIndex, vectors.index)
	assert.Equal(t, firstVectors, vectors.vectors)
	assert.Equal(t, 2, vectors.index.VectorsCount)
}

func TestRun_DiscoveryErrorIsFatal(t *testing.T) {
	embedder := &fakeEmbedder{dimension: 2}
	idx := newTestIndexer(t, []discovery.Source{
		&fakeSource{name: "registry", err: errors.New("registry unreachable")},
	}, embedder, newFakeVectorStore(), newFakeMetaStore())

	_, err := idx.Run(context.Background())
	assert.Error(t, err)
}

func TestRun_OnlyFilter(t *testing.T) {
	fixedClock(t)

	source := &fakeSource{name: "directory", templates: []catalog.Template{
		{TemplateID: "t1", Industry: "finance"},
		{TemplateID: "t2", Industry: "retail"},
	}}
	embedder := &fakeEmbedder{dimension: 2}
	vectors := newFakeVectorStore()
	metadata := newFakeMetaStore()

	idx, err := New(Options{
		Sources:  []discovery.Source{source},
		Embedder: embedder,
		Vectors:  vectors,
		Metadata: metadata,
		Logger:   zap.NewNop(),
		Model:    "amazon.titan-embed-text-v2:0",
		Only:     "t2",
	})
	require.NoError(t, err)

	summary, err := idx.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed())
	assert.Contains(t, vectors.vectors, "template-embeddings/t2.json")
	assert.NotContains(t, vectors.vectors, "template-embeddings/t1.json")
}

func TestNew_RequiresWiring(t *testing.T) {
	_, err := New(Options{})
	assert.ErrorIs(t, err, ErrNoSources)

	_, err = New(Options{Sources: []discovery.Source{&fakeSource{name: "x"}}})
	assert.Error(t, err)
}
