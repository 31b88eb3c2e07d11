// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
)

// =============================================================================
// MODEL INFO TYPE
// =============================================================================

// ModelInfo describes an entry of the model selector.
type ModelInfo struct {
	// ID is the name shown in the selector and stored on conversations
	ID string `json:"id"`

	// Provider identifies who provides the model (Google, OpenAI, ...)
	Provider string `json:"provider"`

	// OllamaTag is the local Ollama model used when the Ollama provider is active
	OllamaTag string `json:"ollama_tag"`

	// Description is a brief explanation of the model's strengths
	Description string `json:"description"`
}

// =============================================================================
// MODEL REGISTRY
// =============================================================================

// DefaultModels is the initial model list, in selector order.
// The first entry is the initial current model.
var DefaultModels = []string{
	"Gemini 2.5",
	"GPT4o-mini",
	"Claude-3.5",
	"Llama-3.2",
	"Gemma-3",
	"DeepSeek",
	"Custom",
}

// Models is the registry of known models with their metadata.
var Models = map[string]ModelInfo{
	"Gemini 2.5": {
		ID:          "Gemini 2.5",
		Provider:    "Google",
		OllamaTag:   "gemma3",
		Description: "Multimodal model with long context",
	},
	"GPT4o-mini": {
		ID:          "GPT4o-mini",
		Provider:    "OpenAI",
		OllamaTag:   "llama3.2",
		Description: "Cost-effective for simple tasks",
	},
	"Claude-3.5": {
		ID:          "Claude-3.5",
		Provider:    "Anthropic",
		OllamaTag:   "qwen2.5",
		Description: "Best balance of speed and capability",
	},
	"Llama-3.2": {
		ID:          "Llama-3.2",
		Provider:    "Meta",
		OllamaTag:   "llama3.2",
		Description: "Meta's versatile open-weights model",
	},
	"Gemma-3": {
		ID:          "Gemma-3",
		Provider:    "Google",
		OllamaTag:   "gemma3",
		Description: "Lightweight open-weights model",
	},
	"DeepSeek": {
		ID:          "DeepSeek",
		Provider:    "DeepSeek",
		OllamaTag:   "deepseek-r1",
		Description: "Strong reasoning and code understanding",
	},
	"Custom": {
		ID:          "Custom",
		Provider:    "Local",
		OllamaTag:   "",
		Description: "Whatever the local server uses by default",
	},
}

// GetModelInfo returns registry metadata for a model id.
// Lookup is exact first, then case-insensitive.
func GetModelInfo(id string) (ModelInfo, bool) {
	if info, ok := Models[id]; ok {
		return info, true
	}
	for key, info := range Models {
		if strings.EqualFold(key, id) {
			return info, true
		}
	}
	return ModelInfo{}, false
}

// Contains reports whether id is one of models.
func Contains(models []string, id string) bool {
	for _, m := range models {
		if m == id {
			return true
		}
	}
	return false
}
