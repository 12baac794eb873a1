package main

import (
	"fmt"

	"github.com/mark3labs/regexr/internal/config"
	"github.com/mark3labs/regexr/internal/logger"
	"github.com/mark3labs/regexr/internal/transfer"
)

// env is what every command needs: the resolved config and a client for
// the processing service.
type env struct {
	cfg    *config.Config
	client *transfer.Client
}

// loadEnv loads config, applies the --api override, configures the logger
// and builds the service client.
func loadEnv(api string) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if api != "" {
		cfg.APIBase = api
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := logger.Configure(cfg.LogLevel, cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}

	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	client, err := transfer.New(cfg.APIBase,
		transfer.WithTimeout(timeout),
		transfer.WithUserAgent("regexr/"+version),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Debug("Using processing service at %s", client.BaseURL())
	return &env{cfg: cfg, client: client}, nil
}
