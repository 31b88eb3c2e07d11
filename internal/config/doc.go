// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatshell.
//
// Supports TOML, YAML and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ProviderConfig: Response provider selection and tuning
//   - UIConfig: Theme and panel defaults
//   - LoggingConfig: Log level and destination
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHATSHELL_*)
//   - ~/.chatshell/config.toml
//   - ~/.chatshell/config.yaml
//   - ~/.chatshell/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//
// Watch for edits while the TUI runs:
//
//	go config.Watch(ctx, path, 0, func(cfg *config.Config, err error) { ... })
package config
