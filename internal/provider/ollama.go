// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/ollama"
)

// Ollama answers through a local Ollama server. Display model names are
// mapped to Ollama tags through the configured map, then the built-in
// registry.
type Ollama struct {
	client   *ollama.Client
	modelMap map[string]string
	logger   *zap.Logger
}

// NewOllama creates an Ollama-backed provider. modelMap overrides the
// built-in display-name-to-tag mapping and may be nil.
func NewOllama(client *ollama.Client, modelMap map[string]string, logger *zap.Logger) *Ollama {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := make(map[string]string, len(modelMap))
	for k, v := range modelMap {
		m[k] = v
	}
	return &Ollama{
		client:   client,
		modelMap: m,
		logger:   logger.With(zap.String("component", "provider.ollama")),
	}
}

// Name implements ResponseProvider.
func (o *Ollama) Name() string { return "ollama" }

// Tag returns the Ollama tag for a display model name, or "" when the
// model has no mapping.
func (o *Ollama) Tag(displayName string) string {
	if tag, ok := o.modelMap[displayName]; ok {
		return tag
	}
	if info, ok := model.GetModelInfo(displayName); ok {
		return info.OllamaTag
	}
	return ""
}

// Generate implements ResponseProvider.
func (o *Ollama) Generate(ctx context.Context, req Request) (*Response, error) {
	tag := o.Tag(req.Model)
	if tag == "" {
		return nil, &Error{
			Kind:     KindModelNotFound,
			Provider: o.Name(),
			Model:    req.Model,
			Message:  fmt.Sprintf("no Ollama model is mapped to %q; set provider.ollama.model_map", req.Model),
		}
	}

	messages := toOllamaMessages(req.History)
	if len(messages) == 0 {
		return nil, &Error{
			Kind:     KindRejected,
			Provider: o.Name(),
			Model:    req.Model,
			Message:  "nothing to send",
		}
	}

	start := time.Now()
	resp, err := o.client.Chat(ctx, tag, messages)
	if err != nil {
		pe := fromOllamaError(err)
		pe.Provider = o.Name()
		pe.Model = req.Model
		return nil, pe
	}

	text := strings.TrimSpace(resp.Message.Content)
	o.logger.Debug("chat completed",
		zap.String("model", req.Model),
		zap.String("tag", tag),
		zap.Int("eval_count", resp.EvalCount),
		zap.Float64("tokens_per_sec", resp.TokensPerSecond()))

	if text == "" {
		return nil, &Error{
			Kind:     KindUnknown,
			Provider: o.Name(),
			Model:    req.Model,
			Message:  "the model returned an empty reply",
		}
	}

	return &Response{
		Text:     text,
		Model:    req.Model,
		Duration: time.Since(start),
	}, nil
}

// toOllamaMessages keeps only settled, non-empty messages.
func toOllamaMessages(history []model.Message) []ollama.Message {
	out := make([]ollama.Message, 0, len(history))
	for _, m := range history {
		if m.IsLoading || m.IsError || m.Content == "" {
			continue
		}
		out = append(out, ollama.Message{Role: m.Role.String(), Content: m.Content})
	}
	return out
}

func fromOllamaError(err error) *Error {
	kind := KindUnknown
	switch {
	case ollama.IsTimeout(err):
		kind = KindTimeout
	case ollama.IsCanceled(err):
		kind = KindCanceled
	case ollama.IsModelNotFound(err):
		kind = KindModelNotFound
	case ollama.IsRejected(err):
		kind = KindRejected
	case ollama.IsNotRunning(err):
		kind = KindUnavailable
	}

	var ce *ollama.ClientError
	msg := err.Error()
	if errors.As(err, &ce) {
		msg = ce.Message
	}
	return &Error{Kind: kind, Message: msg, Cause: err}
}
