package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEmbeddingText(t *testing.T) {
	record := &Template{
		TemplateID:  "t1",
		Industry:    "finance",
		CTAIntent:   "contact",
		DesignStyle: "modern",
		Sections:    []string{"hero", "about", "contact"},
	}

	text := BuildEmbeddingText(record)

	assert.Contains(t, text, "Industry: finance")
	assert.Contains(t, text, "CTA Intent: contact")
	assert.Contains(t, text, "Design Style: modern")
	assert.Contains(t, text, "Sections: hero, about, contact")
	assert.Contains(t, text,
		"This is a modern template for the finance industry, optimized for contact conversions with sections including hero, about, contact.")
}

func TestBuildEmbeddingText_Deterministic(t *testing.T) {
	record := &Template{
		TemplateID:   "t2",
		Name:         "Clinic One",
		Industry:     "healthcare",
		CTAIntent:    "booking",
		DesignStyle:  "minimal",
		Sections:     []string{"hero", "services", "team", "contact"},
		Keywords:     []string{"clinic", "appointments"},
		Features:     []string{"online booking"},
		ColorPalette: map[string]string{"primary": "#0a6", "secondary": "#fff"},
		PagesCount:   4,
		Description:  "A calm, trustworthy site for medical practices.",
	}

	first := BuildEmbeddingText(record)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, BuildEmbeddingText(record))
	}

	// Only the first three sections appear in the summary sentence.
	assert.Contains(t, first, "sections including hero, services, team.")
	assert.Contains(t, first, "Pages: 4 pages")
	assert.Contains(t, first, "Color Palette: #0a6 primary")
	assert.Contains(t, first, "Tags: clinic, appointments")
}

func TestBuildEmbeddingText_Defaults(t *testing.T) {
	text := BuildEmbeddingText(&Template{TemplateID: "bare"})

	assert.Contains(t, text, "Industry: general")
	assert.Contains(t, text, "CTA Intent: contact")
	assert.Contains(t, text, "Design Style: modern")
	assert.Contains(t, text,
		"This is a modern template for the general industry, optimized for contact conversions with sections including standard.")
	assert.NotContains(t, text, "Sections:")
	assert.NotContains(t, text, "Tags:")
}
