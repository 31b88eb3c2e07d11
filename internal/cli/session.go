// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/telemetry"
)

// Session is one wired chat stack: provider, store, controller and usage
// counters built from the loaded config.
type Session struct {
	Controller *chat.Controller
	Store      *chat.Store
	Usage      *telemetry.UsageTracker
	Provider   string
}

// newSession builds a Session. modelOverride, when set, must be one of the
// configured models.
func (a *App) newSession(modelOverride string) (*Session, error) {
	cfg := a.cfg
	logger := a.logger

	p, err := a.NewProvider(cfg, logger)
	if err != nil {
		return nil, &ConfigError{Path: a.cfgPath, Err: err}
	}

	state := chat.NewState(cfg.Models)
	if state.IsModelAvailable(cfg.DefaultModel) {
		state.CurrentModel = cfg.DefaultModel
	}
	if modelOverride != "" {
		if !state.IsModelAvailable(modelOverride) {
			return nil, &UsageError{Message: fmt.Sprintf("unknown model %q (available: %v)", modelOverride, state.AvailableModels)}
		}
		state.CurrentModel = modelOverride
	}

	store := chat.NewStore(state, logger)
	usage := telemetry.NewUsageTracker()
	ctrl := chat.NewController(store, p,
		chat.WithLogger(logger),
		chat.WithRequestTimeout(cfg.RequestTimeout()),
		chat.WithObserver(usage),
	)

	logger.Debug("session ready",
		zap.String("provider", p.Name()),
		zap.String("model", state.CurrentModel),
		zap.Int("models", len(state.AvailableModels)))

	return &Session{Controller: ctrl, Store: store, Usage: usage, Provider: p.Name()}, nil
}

// Close cancels replies still in flight.
func (s *Session) Close() {
	s.Controller.Close()
}
