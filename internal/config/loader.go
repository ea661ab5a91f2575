package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if RISKD_CONFIG is set
//  3. env (prefix RISKD_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("RISKD_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: RISKD_ADDR, RISKD_STORE_BACKEND, ...
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("RISKD_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "riskd_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.QueryWindow <= 0 {
		return fmt.Errorf("%w: query_window must be positive", ErrInvalidConfig)
	}

	switch c.StoreBackend {
	case StoreMemory, StoreRedis, StoreDynamoDB, StorePostgres:
	default:
		return fmt.Errorf("%w: unknown store_backend %q", ErrInvalidConfig, c.StoreBackend)
	}
	if c.StoreBackend == StorePostgres && c.PostgresDSN == "" {
		return fmt.Errorf("%w: postgres_dsn required for postgres store", ErrInvalidConfig)
	}

	switch c.AlertBackend {
	case AlertLog, AlertSNS, AlertRedis:
	default:
		return fmt.Errorf("%w: unknown alert_backend %q", ErrInvalidConfig, c.AlertBackend)
	}
	if c.AlertBackend == AlertSNS && c.SNSTopicARN == "" {
		return fmt.Errorf("%w: sns_topic_arn required for sns alerts", ErrInvalidConfig)
	}

	switch c.Classifier {
	case ClassifierRules, ClassifierBedrock:
	default:
		return fmt.Errorf("%w: unknown classifier %q", ErrInvalidConfig, c.Classifier)
	}

	return nil
}
