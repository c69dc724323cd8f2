package catalog

import (
	"errors"
	"fmt"
)

// Sentinel errors for record validation.
var (
	// ErrMetadataMissing is returned when a candidate has no metadata record.
	ErrMetadataMissing = errors.New("template metadata missing")

	// ErrValidation is returned when a record is present but a required
	// field is absent or outside its closed vocabulary.
	ErrValidation = errors.New("template validation failed")
)

// Industries is the closed set of valid industry values, in the order the
// directory source walks its category directories.
var Industries = []string{
	"restaurant", "healthcare", "technology", "ecommerce", "real_estate",
	"professional_services", "creative_agency", "education", "nonprofit",
	"fitness", "hospitality", "finance", "retail", "automotive", "beauty_spa",
	"other",
}

// CTAIntents is the closed set of valid call-to-action intents.
var CTAIntents = []string{
	"contact", "purchase", "booking", "signup", "download", "subscribe",
	"quote", "visit",
}

var (
	validIndustries = toSet(Industries)
	validCTAIntents = toSet(CTAIntents)
	validSources    = map[Source]struct{}{
		SourceCurated: {}, SourceRecreated: {}, SourceMigrated: {},
	}
)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// ValidIndustry reports whether industry is in the closed set.
func ValidIndustry(industry string) bool {
	_, ok := validIndustries[industry]
	return ok
}

// Validate checks the record against the closed vocabularies.
//
// Missing optional fields are tolerated (the text builder substitutes
// documented defaults), but a value outside a closed set is rejected so an
// unknown category is never silently indexed.
func (t *Template) Validate() error {
	if t.TemplateID == "" {
		return fmt.Errorf("%w: template_id is required", ErrValidation)
	}
	if t.Industry != "" && !ValidIndustry(t.Industry) {
		return fmt.Errorf("%w: unknown industry %q", ErrValidation, t.Industry)
	}
	if t.CTAIntent != "" {
		if _, ok := validCTAIntents[t.CTAIntent]; !ok {
			return fmt.Errorf("%w: unknown cta_intent %q", ErrValidation, t.CTAIntent)
		}
	}
	if t.Source != "" {
		if _, ok := validSources[t.Source]; !ok {
			return fmt.Errorf("%w: unknown source %q", ErrValidation, t.Source)
		}
	}
	return nil
}
