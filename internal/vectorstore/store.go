// Package vectorstore persists per-template embedding documents and the
// merged index document that points at them.
package vectorstore

import (
	"context"
	"errors"
	"time"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

// ErrStoreWrite wraps backend failures while writing a document.
var ErrStoreWrite = errors.New("vector store write failed")

const keyPrefix = "template-embeddings/"

// VectorKey is the object key of a single template's embedding document.
func VectorKey(templateID string) string {
	return keyPrefix + templateID + ".json"
}

// IndexKey is the object key of the merged index document.
func IndexKey() string {
	return keyPrefix + "index.json"
}

// Summary is the metadata carried alongside a vector. It is the display
// subset of the catalog record: the full description stays out so vector
// documents remain small.
type Summary struct {
	TemplateID  string   `json:"template_id"`
	Name        string   `json:"name"`
	Source      string   `json:"source"`
	Industry    string   `json:"industry"`
	CTAIntent   string   `json:"cta_intent"`
	DesignStyle string   `json:"design_style"`
	Sections    []string `json:"sections,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Status      string   `json:"status"`
	S3Path      string   `json:"s3_path,omitempty"`
	PreviewURL  string   `json:"preview_url,omitempty"`
}

// VectorDocument is one template's embedding plus its display metadata.
type VectorDocument struct {
	ID       string    `json:"id"`
	Vector   []float32 `json:"vector"`
	Metadata Summary   `json:"metadata"`
}

// IndexEntry is one template's row in the index document.
type IndexEntry struct {
	TemplateID string `json:"template_id"`
	Name       string `json:"name"`
	Industry   string `json:"industry"`
	Source     string `json:"source"`
}

// IndexDocument lists every indexed template and records the model that
// produced the vectors.
type IndexDocument struct {
	VectorsCount int          `json:"vectors_count"`
	Model        string       `json:"model"`
	Dimension    int          `json:"dimension"`
	UpdatedAt    string       `json:"updated_at"`
	Templates    []IndexEntry `json:"templates"`
}

// Store persists vector documents and the index.
type Store interface {
	// PutVector writes one template's embedding document.
	PutVector(ctx context.Context, doc VectorDocument) error

	// GetIndex fetches the current index document. A missing index is not
	// an error; an empty document is returned so the first run bootstraps
	// it.
	GetIndex(ctx context.Context) (IndexDocument, error)

	// PutIndex replaces the index document.
	PutIndex(ctx context.Context, doc IndexDocument) error
}

// NewSummary projects a catalog record into vector metadata.
func NewSummary(t *catalog.Template) Summary {
	return Summary{
		TemplateID:  t.TemplateID,
		Name:        t.Name,
		Source:      string(t.Source),
		Industry:    t.Industry,
		CTAIntent:   t.CTAIntent,
		DesignStyle: t.DesignStyle,
		Sections:    t.Sections,
		Keywords:    t.Keywords,
		Status:      string(t.Status),
		S3Path:      t.Location.Path,
		PreviewURL:  t.Location.PreviewURL,
	}
}

// MergeIndex folds the entries from the current run into an existing index.
// Entries replace any existing row with the same template id; rows for
// templates not touched this run are preserved. The count, model stamp and
// timestamp are recomputed from the result.
func MergeIndex(existing IndexDocument, entries []IndexEntry, model string, dimension int, now time.Time) IndexDocument {
	byID := make(map[string]int, len(existing.Templates))
	merged := make([]IndexEntry, len(existing.Templates))
	copy(merged, existing.Templates)
	for i, entry := range merged {
		byID[entry.TemplateID] = i
	}

	for _, entry := range entries {
		if i, ok := byID[entry.TemplateID]; ok {
			merged[i] = entry
			continue
		}
		byID[entry.TemplateID] = len(merged)
		merged = append(merged, entry)
	}

	return IndexDocument{
		VectorsCount: len(merged),
		Model:        model,
		Dimension:    dimension,
		UpdatedAt:    now.UTC().Format(time.RFC3339),
		Templates:    merged,
	}
}
