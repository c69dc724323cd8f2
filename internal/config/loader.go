// Package config provides configuration loading for the template index
// pipeline.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// envPrefix namespaces the pipeline's environment variables.
	envPrefix = "TEMPLATEINDEX_"
)

// Load loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (TEMPLATEINDEX_EMBEDDINGS_PROVIDER, ...)
//  2. YAML config file (optional; path passed by the caller)
//  3. Environment-derived defaults
//
// Environment variables use underscore separators and are mapped onto the
// YAML structure by splitting on the first underscore after the prefix:
//
//	TEMPLATEINDEX_ENVIRONMENT          -> environment
//	TEMPLATEINDEX_EMBEDDINGS_PROVIDER  -> embeddings.provider
//	TEMPLATEINDEX_VECTORSTORE_BUCKET   -> vectorstore.bucket
func Load(configPath string) (*Config, error) {
	return load(configPath, "")
}

// LoadForEnvironment loads configuration with the environment forced to the
// given value, overriding both the config file and environment variables.
// Environment-derived defaults (bucket and table names) follow the forced
// environment.
func LoadForEnvironment(configPath, environment string) (*Config, error) {
	return load(configPath, environment)
}

func load(configPath, forcedEnv string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// TEMPLATEINDEX_EMBEDDINGS_MAX_ATTEMPTS -> embeddings.max_attempts
		lower := strings.ToLower(strings.TrimPrefix(s, envPrefix))
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if forcedEnv != "" {
		cfg.Environment = forcedEnv
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
