package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sitesmithlabs/templateindex/internal/catalog"
)

// RegistrySource reads the design registry: templates recreated from design
// sources plus sites migrated from legacy platforms. Both live as JSON
// documents in the assets bucket.
type RegistrySource struct {
	getter          ObjectGetter
	bucket          string
	registryKey     string
	sitesCatalogKey string
	logger          *zap.Logger
}

// NewRegistrySource reads the registry at registryKey and the migrated
// sites catalog at sitesCatalogKey from bucket.
func NewRegistrySource(getter ObjectGetter, bucket, registryKey, sitesCatalogKey string, logger *zap.Logger) (*RegistrySource, error) {
	if getter == nil {
		return nil, fmt.Errorf("%w: object getter is required", ErrDiscovery)
	}
	if bucket == "" || registryKey == "" {
		return nil, fmt.Errorf("%w: registry bucket and key are required", ErrDiscovery)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RegistrySource{
		getter:          getter,
		bucket:          bucket,
		registryKey:     registryKey,
		sitesCatalogKey: sitesCatalogKey,
		logger:          logger,
	}, nil
}

func (s *RegistrySource) Name() string { return "registry" }

// registryDocument is the design registry layout. MigratedSitesHighlights
// is the abbreviated site list kept in the registry itself; the full
// catalog lives in a separate document.
type registryDocument struct {
	Templates               []registryTemplate `json:"templates"`
	MigratedSitesHighlights []migratedSite     `json:"migrated_sites_highlights"`
}

type registryTemplate struct {
	TemplateID     string   `json:"template_id"`
	Name           string   `json:"name"`
	Industry       string   `json:"industry"`
	CTAIntent      string   `json:"cta_intent"`
	DesignStyle    string   `json:"design_style"`
	Sections       []string `json:"sections"`
	Keywords       []string `json:"keywords"`
	Features       []string `json:"features"`
	PrimaryColor   string   `json:"primary_color"`
	SecondaryColor string   `json:"secondary_color"`
	PagesCount     int      `json:"pages_count"`
	Description    string   `json:"description"`
	S3Path         string   `json:"s3_path"`
	PreviewURL     string   `json:"preview_url"`
}

type sitesCatalogDocument struct {
	Sites []migratedSite `json:"sites"`
}

type migratedSite struct {
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Industry    string   `json:"industry"`
	CTAIntent   string   `json:"cta_intent"`
	Sections    []string `json:"sections"`
	Keywords    []string `json:"keywords"`
	PagesCount  int      `json:"pages_count"`
	Description string   `json:"description"`
	S3Path      string   `json:"s3_path"`
	PreviewURL  string   `json:"preview_url"`
}

func (s *RegistrySource) Discover(ctx context.Context) ([]catalog.Template, int, error) {
	data, err := s.getter.GetObject(ctx, s.bucket, s.registryKey)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: fetch registry %s: %v", ErrDiscovery, s.registryKey, err)
	}

	var registry registryDocument
	if err := json.Unmarshal(data, &registry); err != nil {
		return nil, 0, fmt.Errorf("%w: decode registry: %v", ErrDiscovery, err)
	}

	skipped := 0
	templates := make([]catalog.Template, 0, len(registry.Templates))
	for _, rt := range registry.Templates {
		if rt.TemplateID == "" {
			skipped++
			s.logger.Warn("skipping registry template without id",
				zap.String("name", rt.Name))
			continue
		}
		templates = append(templates, recreatedTemplate(rt))
	}

	for _, site := range s.migratedSites(ctx, registry) {
		if site.Slug == "" {
			skipped++
			s.logger.Warn("skipping migrated site without slug",
				zap.String("name", site.Name))
			continue
		}
		templates = append(templates, migratedTemplate(site))
	}

	s.logger.Info("registry discovery complete",
		zap.Int("found", len(templates)),
		zap.Int("skipped", skipped))
	return templates, skipped, nil
}

// migratedSites prefers the full sites catalog and falls back to the
// highlights embedded in the registry when the catalog is unavailable.
func (s *RegistrySource) migratedSites(ctx context.Context, registry registryDocument) []migratedSite {
	if s.sitesCatalogKey == "" {
		return registry.MigratedSitesHighlights
	}

	data, err := s.getter.GetObject(ctx, s.bucket, s.sitesCatalogKey)
	if err != nil {
		s.logger.Warn("sites catalog unavailable, falling back to registry highlights",
			zap.String("key", s.sitesCatalogKey),
			zap.Error(err))
		return registry.MigratedSitesHighlights
	}

	var doc sitesCatalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		s.logger.Warn("sites catalog malformed, falling back to registry highlights",
			zap.String("key", s.sitesCatalogKey),
			zap.Error(err))
		return registry.MigratedSitesHighlights
	}
	return doc.Sites
}

func recreatedTemplate(rt registryTemplate) catalog.Template {
	var palette map[string]string
	if rt.PrimaryColor != "" || rt.SecondaryColor != "" {
		palette = map[string]string{}
		if rt.PrimaryColor != "" {
			palette["primary"] = rt.PrimaryColor
		}
		if rt.SecondaryColor != "" {
			palette["secondary"] = rt.SecondaryColor
		}
	}

	name := rt.Name
	if name == "" {
		name = titleFromSlug(rt.TemplateID)
	}

	return catalog.Template{
		TemplateID:   rt.TemplateID,
		Name:         name,
		Source:       catalog.SourceRecreated,
		Industry:     rt.Industry,
		CTAIntent:    rt.CTAIntent,
		DesignStyle:  rt.DesignStyle,
		Sections:     rt.Sections,
		Keywords:     rt.Keywords,
		Features:     rt.Features,
		ColorPalette: palette,
		PagesCount:   rt.PagesCount,
		Description:  rt.Description,
		Location: catalog.Location{
			Path:       rt.S3Path,
			PreviewURL: rt.PreviewURL,
		},
	}
}

func migratedTemplate(site migratedSite) catalog.Template {
	name := site.Name
	if name == "" {
		name = titleFromSlug(site.Slug)
	}

	return catalog.Template{
		TemplateID:  "migrated-" + site.Slug,
		Name:        name,
		Source:      catalog.SourceMigrated,
		Industry:    site.Industry,
		CTAIntent:   orContact(site.CTAIntent),
		DesignStyle: "wordpress-migrated",
		Sections:    site.Sections,
		Keywords:    site.Keywords,
		PagesCount:  site.PagesCount,
		Description: site.Description,
		Location: catalog.Location{
			Path:       site.S3Path,
			PreviewURL: site.PreviewURL,
		},
	}
}

var slugTitler = cases.Title(language.English)

// titleFromSlug turns "harbor-dental" into "Harbor Dental".
func titleFromSlug(slug string) string {
	return slugTitler.String(strings.ReplaceAll(slug, "-", " "))
}

func orContact(intent string) string {
	if intent == "" {
		return catalog.DefaultCTAIntent
	}
	return intent
}
