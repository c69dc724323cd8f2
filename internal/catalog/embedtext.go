package catalog

import (
	"fmt"
	"strings"
)

// Defaults substituted by the text builder when a record omits a field.
const (
	DefaultIndustry    = "general"
	DefaultCTAIntent   = "contact"
	DefaultDesignStyle = "modern"
)

// BuildEmbeddingText composes the semantic description submitted to the
// embedding model. The output is deterministic for a given record: fragments
// are emitted in a fixed field order and joined with single spaces, so
// re-indexing an unchanged record reproduces the identical text.
func BuildEmbeddingText(t *Template) string {
	industry := orDefault(t.Industry, DefaultIndustry)
	ctaIntent := orDefault(t.CTAIntent, DefaultCTAIntent)
	designStyle := orDefault(t.DesignStyle, DefaultDesignStyle)

	parts := []string{
		"Industry: " + industry,
		"CTA Intent: " + ctaIntent,
		"Design Style: " + designStyle,
	}

	if len(t.Sections) > 0 {
		parts = append(parts, "Sections: "+strings.Join(t.Sections, ", "))
	}
	if t.PagesCount > 0 {
		parts = append(parts, fmt.Sprintf("Pages: %d pages", t.PagesCount))
	}
	if primary := t.PrimaryColor(); primary != "" {
		parts = append(parts, fmt.Sprintf("Color Palette: %s primary", primary))
	}
	if len(t.Keywords) > 0 {
		parts = append(parts, "Tags: "+strings.Join(t.Keywords, ", "))
	}
	if len(t.Features) > 0 {
		parts = append(parts, "Features: "+strings.Join(t.Features, ", "))
	}
	if t.Name != "" {
		parts = append(parts, "Name: "+t.Name)
	}
	if t.Description != "" {
		parts = append(parts, t.Description)
	}

	sectionsPreview := "standard"
	if len(t.Sections) > 0 {
		preview := t.Sections
		if len(preview) > 3 {
			preview = preview[:3]
		}
		sectionsPreview = strings.Join(preview, ", ")
	}

	parts = append(parts, fmt.Sprintf(
		"This is a %s template for the %s industry, optimized for %s conversions with sections including %s.",
		designStyle, industry, ctaIntent, sectionsPreview))

	return strings.Join(parts, " ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
