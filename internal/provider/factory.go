// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/config"
	"github.com/jeranaias/chatshell/internal/offline"
	"github.com/jeranaias/chatshell/internal/ollama"
)

// New builds the provider named by cfg.Provider.Kind, wrapped in a rate
// limiter when one is configured.
func New(cfg *config.Config, logger *zap.Logger) (ResponseProvider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var p ResponseProvider
	switch cfg.Provider.Kind {
	case config.ProviderSimulated, "":
		p = NewSimulated(cfg.SimulatedDelay())

	case config.ProviderOllama:
		oc := cfg.Provider.Ollama
		if err := offline.ValidateEndpoint(oc.URL, oc.OfflineOnly); err != nil {
			return nil, fmt.Errorf("ollama endpoint %s: %w", oc.URL, err)
		}
		client := ollama.NewClientWithConfig(&ollama.ClientConfig{
			BaseURL: oc.URL,
			Timeout: cfg.OllamaTimeout(),
		})
		p = NewOllama(client, oc.ModelMap, logger)

	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Kind)
	}

	if n := cfg.Provider.RateLimitPerMinute; n > 0 {
		p = NewRateLimited(p, n)
	}

	logger.Info("response provider ready",
		zap.String("provider", p.Name()),
		zap.Int("rate_limit_per_minute", cfg.Provider.RateLimitPerMinute))

	return p, nil
}
