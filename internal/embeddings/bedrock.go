package embeddings

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// titanRequest is the Titan text embedding invocation body.
type titanRequest struct {
	InputText  string `json:"inputText"`
	Dimensions int    `json:"dimensions"`
	Normalize  bool   `json:"normalize"`
}

type titanResponse struct {
	Embedding []float32 `json:"embedding"`
}

// bedrockInvoker is the slice of bedrockruntime.Client the provider uses.
type bedrockInvoker interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type bedrockProvider struct {
	client    bedrockInvoker
	model     string
	dimension int
	timeout   time.Duration
	retry     RetryPolicy
	limiter   *rate.Limiter
	logger    *zap.Logger
}

func newBedrockProvider(ctx context.Context, cfg ProviderConfig) (*bedrockProvider, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("%w: region is required for bedrock", ErrInvalidConfig)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithRetryMode(aws.RetryModeAdaptive),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newBedrockProviderWithClient(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

func newBedrockProviderWithClient(client bedrockInvoker, cfg ProviderConfig) *bedrockProvider {
	retry := cfg.Retry
	retry.ApplyDefaults()

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &bedrockProvider{
		client:    client,
		model:     cfg.Model,
		dimension: cfg.Dimension,
		timeout:   cfg.RequestTimeout,
		retry:     retry,
		limiter:   limiter,
		logger:    cfg.Logger,
	}
}

func (p *bedrockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyInput
	}

	body, err := json.Marshal(titanRequest{
		InputText:  truncate(text),
		Dimensions: p.dimension,
		Normalize:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal titan request: %w", err)
	}

	var vector []float32
	err = p.retry.Do(ctx, func(ctx context.Context) error {
		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		invokeCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			invokeCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}

		out, err := p.client.InvokeModel(invokeCtx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(p.model),
			ContentType: aws.String("application/json"),
			Body:        body,
		})
		if err != nil {
			return err
		}

		var resp titanResponse
		if err := json.Unmarshal(out.Body, &resp); err != nil {
			return fmt.Errorf("decode titan response: %w", err)
		}
		vector = resp.Embedding
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}

	checkDimension(p.logger, p.dimension, vector)
	return vector, nil
}

func (p *bedrockProvider) Dimension() int { return p.dimension }

func (p *bedrockProvider) Close() error { return nil }
