// Package metastore persists template metadata records to a document store
// keyed for retrieval-time filtering by industry and status.
package metastore

import (
	"context"
	"errors"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

// ErrStoreWrite wraps backend failures while writing a record.
var ErrStoreWrite = errors.New("metadata store write failed")

// Store persists template metadata.
type Store interface {
	// Put upserts one template's metadata record.
	Put(ctx context.Context, t *catalog.Template) error
}

// Key attributes for the single-table layout. Records share a constant
// partition so a single query lists every template; the industry index
// serves the filtered lookups.
const (
	entityPK     = "TEMPLATE"
	skPrefix     = "TEMPLATE#"
	gsiPKPrefix  = "INDUSTRY#"
	gsiSKPrefix  = "STATUS#"
	gsiSeparator = "#"
)

// item is the document-store shape of one template record.
type item struct {
	PK             string            `dynamodbav:"PK" json:"PK"`
	SK             string            `dynamodbav:"SK" json:"SK"`
	TemplateID     string            `dynamodbav:"template_id" json:"template_id"`
	Name           string            `dynamodbav:"name" json:"name"`
	Source         string            `dynamodbav:"source" json:"source"`
	Industry       string            `dynamodbav:"industry" json:"industry"`
	CTAIntent      string            `dynamodbav:"cta_intent" json:"cta_intent"`
	DesignStyle    string            `dynamodbav:"design_style" json:"design_style"`
	Sections       []string          `dynamodbav:"sections,omitempty" json:"sections,omitempty"`
	Keywords       []string          `dynamodbav:"keywords,omitempty" json:"keywords,omitempty"`
	Features       []string          `dynamodbav:"features,omitempty" json:"features,omitempty"`
	ColorPalette   map[string]string `dynamodbav:"color_palette,omitempty" json:"color_palette,omitempty"`
	PagesCount     int               `dynamodbav:"pages_count,omitempty" json:"pages_count,omitempty"`
	S3Bucket       string            `dynamodbav:"s3_bucket,omitempty" json:"s3_bucket,omitempty"`
	S3Path         string            `dynamodbav:"s3_path,omitempty" json:"s3_path,omitempty"`
	PreviewURL     string            `dynamodbav:"preview_url,omitempty" json:"preview_url,omitempty"`
	Description    string            `dynamodbav:"description,omitempty" json:"description,omitempty"`
	VectorID       string            `dynamodbav:"vector_id" json:"vector_id"`
	EmbeddingModel string            `dynamodbav:"embedding_model" json:"embedding_model"`
	Status         string            `dynamodbav:"status" json:"status"`
	CreatedAt      string            `dynamodbav:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt      string            `dynamodbav:"updated_at,omitempty" json:"updated_at,omitempty"`
	GSI1PK         string            `dynamodbav:"GSI1PK" json:"GSI1PK"`
	GSI1SK         string            `dynamodbav:"GSI1SK" json:"GSI1SK"`
}

// newItem projects a catalog record into the keyed item shape.
// The caller is expected to have set status and timestamps already.
func newItem(t *catalog.Template, embeddingModel string) item {
	status := string(t.Status)
	return item{
		PK:             entityPK,
		SK:             skPrefix + t.TemplateID,
		TemplateID:     t.TemplateID,
		Name:           t.Name,
		Source:         string(t.Source),
		Industry:       t.Industry,
		CTAIntent:      t.CTAIntent,
		DesignStyle:    t.DesignStyle,
		Sections:       t.Sections,
		Keywords:       t.Keywords,
		Features:       t.Features,
		ColorPalette:   t.ColorPalette,
		PagesCount:     t.PagesCount,
		S3Bucket:       t.Location.Bucket,
		S3Path:         t.Location.Path,
		PreviewURL:     t.Location.PreviewURL,
		Description:    t.Description,
		VectorID:       t.TemplateID,
		EmbeddingModel: embeddingModel,
		Status:         status,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		GSI1PK:         gsiPKPrefix + t.Industry,
		GSI1SK:         gsiSKPrefix + status + gsiSeparator + t.TemplateID,
	}
}
