package embeddings

import (
	"context"
	"fmt"

	langchainembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type openAIProvider struct {
	embedder  langchainembeddings.Embedder
	dimension int
	retry     RetryPolicy
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func newOpenAIProvider(cfg ProviderConfig) (*openAIProvider, error) {
	if !cfg.APIKey.IsSet() {
		return nil, fmt.Errorf("%w: api key is required for openai", ErrInvalidConfig)
	}

	llm, err := openai.New(
		openai.WithToken(cfg.APIKey.Value()),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	embedder, err := langchainembeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}

	retry := cfg.Retry
	retry.ApplyDefaults()

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &openAIProvider{
		embedder:  embedder,
		dimension: cfg.Dimension,
		retry:     retry,
		limiter:   limiter,
		logger:    cfg.Logger,
	}, nil
}

func (p *openAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	input := truncate(text)

	var vector []float32
	err := p.retry.Do(ctx, func(ctx context.Context) error {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		v, err := p.embedder.EmbedQuery(ctx, input)
		if err != nil {
			return err
		}
		vector = v
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	checkDimension(p.logger, p.dimension, vector)
	return vector, nil
}

func (p *openAIProvider) Dimension() int { return p.dimension }

func (p *openAIProvider) Close() error { return nil }
