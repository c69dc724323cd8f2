package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sitesmithlabs/templateindex/internal/config"
	"github.com/sitesmithlabs/templateindex/internal/discovery"
	"github.com/sitesmithlabs/templateindex/internal/embeddings"
	"github.com/sitesmithlabs/templateindex/internal/indexer"
	"github.com/sitesmithlabs/templateindex/internal/logging"
	"github.com/sitesmithlabs/templateindex/internal/metastore"
	"github.com/sitesmithlabs/templateindex/internal/vectorstore"
)

var (
	flagEnv          string
	flagTemplate     string
	flagSource       string
	flagLocal        bool
	flagOutputDir    string
	flagTemplatesDir string
	flagWorkers      int
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Run the indexing pipeline",
	Long: `index discovers templates from the selected sources, embeds each
template's description and writes the vector and metadata documents.
Individual template failures are logged and counted; only configuration
errors abort the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIndex(cmd.Context())
	},
}

func init() {
	indexCmd.Flags().StringVar(&flagEnv, "env", "", "deployment environment (dev, staging, prod)")
	indexCmd.Flags().StringVar(&flagTemplate, "template", "", "index only this template id")
	indexCmd.Flags().StringVar(&flagSource, "source", "all", "discovery source (directory, registry, all)")
	indexCmd.Flags().BoolVar(&flagLocal, "local", false, "write documents to the local filesystem instead of remote stores")
	indexCmd.Flags().StringVar(&flagOutputDir, "output-dir", "out", "output directory for --local")
	indexCmd.Flags().StringVar(&flagTemplatesDir, "templates-dir", "", "root of the curated template tree")
	indexCmd.Flags().IntVar(&flagWorkers, "workers", 1, "concurrent template workers")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		cfg *config.Config
		err error
	)
	if flagEnv != "" {
		cfg, err = config.LoadForEnvironment(flagConfig, flagEnv)
	} else {
		cfg, err = config.Load(flagConfig)
	}
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return err
	}
	defer logging.Sync(logger)

	logger.Info("starting indexing run",
		zap.String("environment", cfg.Environment),
		zap.String("source", flagSource),
		zap.Bool("local", flagLocal))

	var awsCfg aws.Config
	needsAWS := !flagLocal || cfg.Embeddings.Provider == "bedrock" ||
		flagSource == "registry" || flagSource == "all"
	if needsAWS {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithRetryMode(aws.RetryModeAdaptive),
		)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
	}

	embedder, err := embeddings.NewProvider(ctx, embeddings.ProviderConfig{
		Provider:       cfg.Embeddings.Provider,
		Model:          cfg.Embeddings.Model,
		Dimension:      cfg.Embeddings.Dimension,
		Region:         cfg.Region,
		APIKey:         cfg.Embeddings.APIKey,
		RequestTimeout: cfg.Embeddings.RequestTimeout.Duration(),
		Retry: embeddings.RetryPolicy{
			MaxAttempts:    cfg.Embeddings.MaxAttempts,
			InitialBackoff: cfg.Embeddings.InitialBackoff.Duration(),
			MaxBackoff:     cfg.Embeddings.MaxBackoff.Duration(),
		},
		RequestsPerSecond: cfg.Embeddings.RequestsPerSecond,
		Logger:            logger.Named("embeddings"),
	})
	if err != nil {
		return err
	}
	defer embedder.Close()

	var (
		vectors  vectorstore.Store
		metadata metastore.Store
	)
	if flagLocal {
		vectors, err = vectorstore.NewLocalStore(flagOutputDir)
		if err != nil {
			return err
		}
		metadata, err = metastore.NewLocalStore(flagOutputDir, cfg.Embeddings.Model)
		if err != nil {
			return err
		}
	} else {
		s3Client := s3.NewFromConfig(awsCfg)
		vectors, err = vectorstore.NewS3Store(s3Client, cfg.VectorStore.Bucket, logger.Named("vectorstore"))
		if err != nil {
			return err
		}
		metadata, err = metastore.NewDynamoStore(dynamodb.NewFromConfig(awsCfg),
			cfg.Metastore.Table, cfg.Embeddings.Model, logger.Named("metastore"))
		if err != nil {
			return err
		}
	}

	sources, err := buildSources(cfg, awsCfg, needsAWS, logger)
	if err != nil {
		return err
	}

	idx, err := indexer.New(indexer.Options{
		Sources:  sources,
		Embedder: embedder,
		Vectors:  vectors,
		Metadata: metadata,
		Logger:   logger,
		Model:    cfg.Embeddings.Model,
		Workers:  flagWorkers,
		Only:     flagTemplate,
	})
	if err != nil {
		return err
	}

	summary, err := idx.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("run %s complete\n", summary.RunID)
	for _, src := range summary.Sources {
		fmt.Printf("  %-10s processed=%d skipped=%d failed=%d\n",
			src.Source, src.Processed, src.Skipped, src.Failed)
	}
	return nil
}

func buildSources(cfg *config.Config, awsCfg aws.Config, haveAWS bool, logger *zap.Logger) ([]discovery.Source, error) {
	var sources []discovery.Source

	if flagSource == "directory" || flagSource == "all" {
		root := flagTemplatesDir
		if root == "" {
			root = cfg.Discovery.TemplatesDir
		}
		if root == "" {
			root = "website-templates"
		}
		dir, err := discovery.NewDirectorySource(root,
			cfg.Discovery.TemplatesBucket, cfg.Region, logger.Named("discovery"))
		if err != nil {
			return nil, err
		}
		sources = append(sources, dir)
	}

	if flagSource == "registry" || flagSource == "all" {
		if !haveAWS {
			return nil, fmt.Errorf("registry discovery requires aws access")
		}
		getter := discovery.NewS3Getter(s3.NewFromConfig(awsCfg))
		registry, err := discovery.NewRegistrySource(getter,
			cfg.Discovery.RegistryBucket, cfg.Discovery.RegistryKey,
			cfg.Discovery.SitesCatalogKey, logger.Named("discovery"))
		if err != nil {
			return nil, err
		}
		sources = append(sources, registry)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("unknown source %q (expected directory, registry or all)", flagSource)
	}
	return sources, nil
}
