package vectorstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "template-embeddings/t1.json", VectorKey("t1"))
	assert.Equal(t, "template-embeddings/index.json", IndexKey())
}

func TestMergeIndex(t *testing.T) {
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	existing := IndexDocument{
		VectorsCount: 2,
		Model:        "amazon.titan-embed-text-v2:0",
		Dimension:    1024,
		Templates: []IndexEntry{
			{TemplateID: "A", Name: "Alpha", Industry: "finance", Source: "curated"},
			{TemplateID: "B", Name: "Beta", Industry: "retail", Source: "curated"},
		},
	}

	t.Run("adds new entries and preserves existing ones", func(t *testing.T) {
		merged := MergeIndex(existing, []IndexEntry{
			{TemplateID: "C", Name: "Gamma", Industry: "fitness", Source: "migrated"},
		}, "amazon.titan-embed-text-v2:0", 1024, now)

		require.Len(t, merged.Templates, 3)
		assert.Equal(t, 3, merged.VectorsCount)
		assert.Equal(t, "A", merged.Templates[0].TemplateID)
		assert.Equal(t, "B", merged.Templates[1].TemplateID)
		assert.Equal(t, "C", merged.Templates[2].TemplateID)
		assert.Equal(t, "2026-08-27T12:00:00Z", merged.UpdatedAt)
	})

	t.Run("replaces entries with the same id", func(t *testing.T) {
		merged := MergeIndex(existing, []IndexEntry{
			{TemplateID: "B", Name: "Beta v2", Industry: "ecommerce", Source: "recreated"},
		}, "amazon.titan-embed-text-v2:0", 1024, now)

		require.Len(t, merged.Templates, 2)
		assert.Equal(t, 2, merged.VectorsCount)
		assert.Equal(t, "Beta v2", merged.Templates[1].Name)
		assert.Equal(t, "ecommerce", merged.Templates[1].Industry)
	})

	t.Run("bootstraps from an empty index", func(t *testing.T) {
		merged := MergeIndex(IndexDocument{}, []IndexEntry{
			{TemplateID: "t1", Name: "One", Industry: "finance", Source: "curated"},
		}, "amazon.titan-embed-text-v2:0", 1024, now)

		require.Len(t, merged.Templates, 1)
		assert.Equal(t, 1, merged.VectorsCount)
		assert.Equal(t, "amazon.titan-embed-text-v2:0", merged.Model)
		assert.Equal(t, 1024, merged.Dimension)
	})

	t.Run("does not mutate the existing document", func(t *testing.T) {
		_ = MergeIndex(existing, []IndexEntry{
			{TemplateID: "B", Name: "Beta v2", Industry: "ecommerce", Source: "recreated"},
		}, "amazon.titan-embed-text-v2:0", 1024, now)

		assert.Equal(t, "Beta", existing.Templates[1].Name)
	})
}

func TestNewSummaryOmitsDescription(t *testing.T) {
	record := &catalog.Template{
		TemplateID:  "t1",
		Name:        "One",
		Source:      catalog.SourceCurated,
		Industry:    "finance",
		CTAIntent:   "contact",
		DesignStyle: "modern",
		Sections:    []string{"hero", "about", "contact"},
		Description: "A long marketing description that stays out of the vector doc.",
		Status:      catalog.StatusPublished,
		Location: catalog.Location{
			Path:       "website-templates/finance/one/",
			PreviewURL: "https://example.com/one/",
		},
	}

	summary := NewSummary(record)
	assert.Equal(t, "t1", summary.TemplateID)
	assert.Equal(t, "published", summary.Status)
	assert.Equal(t, "website-templates/finance/one/", summary.S3Path)
}

func TestLocalStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	// First read bootstraps an empty index.
	doc, err := store.GetIndex(ctx)
	require.NoError(t, err)
	assert.Zero(t, doc.VectorsCount)
	assert.Empty(t, doc.Templates)

	require.NoError(t, store.PutVector(ctx, VectorDocument{
		ID:     "t1",
		Vector: []float32{0.1, 0.2},
		Metadata: Summary{
			TemplateID: "t1",
			Industry:   "finance",
			Status:     "published",
		},
	}))

	want := MergeIndex(doc, []IndexEntry{
		{TemplateID: "t1", Name: "One", Industry: "finance", Source: "curated"},
	}, "amazon.titan-embed-text-v2:0", 1024, time.Now())
	require.NoError(t, store.PutIndex(ctx, want))

	got, err := store.GetIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
