// Package catalog defines the template metadata record shared by the
// discovery sources and the store writers, plus the embedding text builder.
package catalog

// Source is the provenance of a template record.
type Source string

const (
	// SourceCurated marks templates authored directly in the catalog tree.
	SourceCurated Source = "curated"
	// SourceRecreated marks templates recreated from design sources.
	SourceRecreated Source = "recreated"
	// SourceMigrated marks templates migrated from legacy sites.
	SourceMigrated Source = "migrated"
)

// Status gates whether a record is eligible for retrieval. The pipeline
// only ever writes StatusPublished.
type Status string

// StatusPublished is the only status produced by the indexing pipeline.
const StatusPublished Status = "published"

// Location points at a template's rendered assets. The assets are owned by
// the preview tooling; the pipeline only references them.
type Location struct {
	Bucket     string `json:"s3_bucket,omitempty"`
	Path       string `json:"s3_path,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// Template is the unit of work for the indexing pipeline: one metadata
// record per catalog item. Field order of Sections, Keywords and Features
// is preserved for display; it does not affect the embedding.
type Template struct {
	TemplateID   string            `json:"template_id"`
	Name         string            `json:"name"`
	Source       Source            `json:"source"`
	Industry     string            `json:"industry"`
	CTAIntent    string            `json:"cta_intent"`
	DesignStyle  string            `json:"design_style"`
	Sections     []string          `json:"sections,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	Features     []string          `json:"features,omitempty"`
	ColorPalette map[string]string `json:"color_palette,omitempty"`
	PagesCount   int               `json:"pages_count,omitempty"`
	Location     Location          `json:"location"`
	Description  string            `json:"description,omitempty"`
	Status       Status            `json:"status,omitempty"`
	CreatedAt    string            `json:"created_at,omitempty"`
	UpdatedAt    string            `json:"updated_at,omitempty"`
}

// PrimaryColor returns the primary palette entry, or "" when unset.
func (t *Template) PrimaryColor() string {
	if t.ColorPalette == nil {
		return ""
	}
	return t.ColorPalette["primary"]
}
