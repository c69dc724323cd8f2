package config

import (
	"fmt"
	"time"

	"github.com/sitesmithlabs/templateindex/internal/logging"
)

// Environments accepted by the pipeline. Resource names (buckets, tables)
// are derived from the selected environment.
const (
	EnvDev     = "dev"
	EnvStaging = "staging"
	EnvProd    = "prod"
)

// Config is the root configuration for the indexing pipeline.
type Config struct {
	// Environment selects the deployment environment: dev, staging, prod.
	Environment string `koanf:"environment"`

	// Region is the AWS region for all remote stores and the embedding model.
	Region string `koanf:"region"`

	Logging     logging.Config    `koanf:"logging"`
	Discovery   DiscoveryConfig   `koanf:"discovery"`
	Embeddings  EmbeddingsConfig  `koanf:"embeddings"`
	VectorStore VectorStoreConfig `koanf:"vectorstore"`
	Metastore   MetastoreConfig   `koanf:"metastore"`
}

// DiscoveryConfig configures the template sources.
type DiscoveryConfig struct {
	// TemplatesDir is the root of the local directory source
	// ({category}/{slug}/metadata.json).
	TemplatesDir string `koanf:"templates_dir"`

	// TemplatesBucket is the bucket holding rendered template assets,
	// used to derive preview locations for directory-discovered templates.
	TemplatesBucket string `koanf:"templates_bucket"`

	// RegistryBucket holds the remote registry and sites catalog documents.
	RegistryBucket string `koanf:"registry_bucket"`

	// RegistryKey is the object key of the template registry document.
	RegistryKey string `koanf:"registry_key"`

	// SitesCatalogKey is the object key of the migrated sites catalog.
	SitesCatalogKey string `koanf:"sites_catalog_key"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider is the provider type: "bedrock" or "openai".
	Provider string `koanf:"provider"`

	// Model is the embedding model identifier.
	Model string `koanf:"model"`

	// Dimension is the pipeline-wide embedding dimension.
	Dimension int `koanf:"dimension"`

	// APIKey authenticates the OpenAI provider. Unused for Bedrock.
	APIKey Secret `koanf:"api_key"`

	// RequestTimeout bounds each provider call.
	RequestTimeout Duration `koanf:"request_timeout"`

	// MaxAttempts bounds retries for transient provider failures.
	MaxAttempts int `koanf:"max_attempts"`

	// InitialBackoff is the first retry delay; doubled per attempt up to
	// MaxBackoff.
	InitialBackoff Duration `koanf:"initial_backoff"`
	MaxBackoff     Duration `koanf:"max_backoff"`

	// RequestsPerSecond throttles provider calls.
	RequestsPerSecond float64 `koanf:"requests_per_second"`
}

// VectorStoreConfig configures the vector document store.
type VectorStoreConfig struct {
	// Bucket is the object store bucket for vector documents and the index.
	Bucket string `koanf:"bucket"`
}

// MetastoreConfig configures the metadata document store.
type MetastoreConfig struct {
	// Table is the document store table for template metadata.
	Table string `koanf:"table"`
}

// ApplyDefaults sets default values for missing configuration fields.
// Environment-derived names are only filled in when unset, so explicit
// configuration always wins.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDev
	}
	if c.Region == "" {
		c.Region = "eu-west-1"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Fields == nil {
		c.Logging.Fields = map[string]string{"service": "templateindex"}
	}

	if c.Discovery.TemplatesBucket == "" {
		c.Discovery.TemplatesBucket = fmt.Sprintf("site-templates-%s", c.Environment)
	}
	if c.Discovery.RegistryBucket == "" {
		c.Discovery.RegistryBucket = fmt.Sprintf("design-assets-%s", c.Environment)
	}
	if c.Discovery.RegistryKey == "" {
		c.Discovery.RegistryKey = "templates/template-registry.json"
	}
	if c.Discovery.SitesCatalogKey == "" {
		c.Discovery.SitesCatalogKey = "templates/migrated-sites-catalog.json"
	}

	if c.Embeddings.Provider == "" {
		c.Embeddings.Provider = "bedrock"
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = "amazon.titan-embed-text-v2:0"
	}
	if c.Embeddings.Dimension == 0 {
		c.Embeddings.Dimension = 1024
	}
	if c.Embeddings.RequestTimeout == 0 {
		c.Embeddings.RequestTimeout = Duration(30 * time.Second)
	}
	if c.Embeddings.MaxAttempts == 0 {
		c.Embeddings.MaxAttempts = 3
	}
	if c.Embeddings.InitialBackoff == 0 {
		c.Embeddings.InitialBackoff = Duration(time.Second)
	}
	if c.Embeddings.MaxBackoff == 0 {
		c.Embeddings.MaxBackoff = Duration(30 * time.Second)
	}
	if c.Embeddings.RequestsPerSecond == 0 {
		c.Embeddings.RequestsPerSecond = 5
	}

	if c.VectorStore.Bucket == "" {
		c.VectorStore.Bucket = fmt.Sprintf("templates-%s-vectors", c.Environment)
	}
	if c.Metastore.Table == "" {
		c.Metastore.Table = fmt.Sprintf("rag-templates-%s", c.Environment)
	}
}

// Validate checks the configuration for errors. A validation failure here
// aborts the whole run before any template is processed.
func (c *Config) Validate() error {
	switch c.Environment {
	case EnvDev, EnvStaging, EnvProd:
	default:
		return fmt.Errorf("invalid environment %q (want dev, staging or prod)", c.Environment)
	}

	if c.Region == "" {
		return fmt.Errorf("region is required")
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	switch c.Embeddings.Provider {
	case "bedrock", "openai":
	default:
		return fmt.Errorf("invalid embeddings provider %q (want bedrock or openai)", c.Embeddings.Provider)
	}
	if c.Embeddings.Dimension <= 0 {
		return fmt.Errorf("embeddings dimension must be > 0, got %d", c.Embeddings.Dimension)
	}
	if c.Embeddings.MaxAttempts < 1 {
		return fmt.Errorf("embeddings max_attempts must be >= 1, got %d", c.Embeddings.MaxAttempts)
	}
	if c.Embeddings.Provider == "openai" && !c.Embeddings.APIKey.IsSet() {
		return fmt.Errorf("embeddings api_key is required for the openai provider")
	}

	if c.VectorStore.Bucket == "" {
		return fmt.Errorf("vectorstore bucket is required")
	}
	if c.Metastore.Table == "" {
		return fmt.Errorf("metastore table is required")
	}

	return nil
}
