// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package offline validates model backend endpoints and enforces
// local-only operation when it is switched on.
//
// With provider.ollama.offline_only set, the Ollama endpoint must resolve
// to a loopback address; config validation and the Ollama provider both
// call ValidateEndpoint.
//
// # Usage
//
//	if err := offline.ValidateEndpoint(cfg.Provider.Ollama.URL, cfg.Provider.Ollama.OfflineOnly); err != nil {
//	    return err
//	}
package offline
