// Package embeddings turns template description text into dense vectors via
// a configurable model provider.
package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sitesmithlabs/templateindex/internal/config"
)

// Sentinel errors for the embedding layer.
var (
	// ErrEmptyInput is returned when Embed is called with no text.
	ErrEmptyInput = errors.New("embedding input is empty")

	// ErrInvalidConfig is returned when the provider configuration is
	// incomplete or names an unknown provider.
	ErrInvalidConfig = errors.New("invalid embeddings configuration")

	// ErrEmbeddingFailed wraps provider errors that survived the retry
	// policy. Callers treat it as a per-item failure, not a fatal one.
	ErrEmbeddingFailed = errors.New("embedding request failed")
)

// MaxInputTokens is the model input ceiling. Text is truncated to an
// approximate character budget of four characters per token before it is
// sent, matching the Titan tokenizer's rough average for English prose.
const MaxInputTokens = 8192

// Provider produces embedding vectors for text.
type Provider interface {
	// Embed returns the embedding for text. The vector length is expected
	// to match Dimension; a mismatch is logged but not retried, since the
	// model, not the transport, decides the shape.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimension is the configured vector width.
	Dimension() int

	// Close releases provider resources.
	Close() error
}

// ProviderConfig carries everything a concrete provider needs.
type ProviderConfig struct {
	Provider          string
	Model             string
	Dimension         int
	Region            string
	APIKey            config.Secret
	RequestTimeout    time.Duration
	Retry             RetryPolicy
	RequestsPerSecond float64
	Logger            *zap.Logger
}

// NewProvider constructs the provider named in cfg.
func NewProvider(ctx context.Context, cfg ProviderConfig) (Provider, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model is required", ErrInvalidConfig)
	}
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension must be positive", ErrInvalidConfig)
	}

	switch cfg.Provider {
	case "bedrock":
		return newBedrockProvider(ctx, cfg)
	case "openai":
		return newOpenAIProvider(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}

// truncate bounds text to the model's approximate character budget.
func truncate(text string) string {
	const maxChars = MaxInputTokens * 4
	if len(text) <= maxChars {
		return text
	}
	return text[:maxChars]
}

// checkDimension logs a warning when the model returns an unexpected vector
// width. The vector is still returned to the caller, which decides whether
// to reject it.
func checkDimension(logger *zap.Logger, want int, vector []float32) {
	if len(vector) != want {
		logger.Warn("embedding dimension mismatch",
			zap.Int("expected", want),
			zap.Int("actual", len(vector)))
	}
}
