// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"fmt"
	"time"
)

// DefaultSimulatedDelay is how long the simulated provider "thinks".
const DefaultSimulatedDelay = 1500 * time.Millisecond

// Simulated answers every request with a fixed sentence naming the model,
// after a delay. It never fails unless ctx ends first.
type Simulated struct {
	Delay time.Duration
}

// NewSimulated creates a simulated provider. A negative delay is treated
// as zero.
func NewSimulated(delay time.Duration) *Simulated {
	if delay < 0 {
		delay = 0
	}
	return &Simulated{Delay: delay}
}

// SimulatedText is the reply the simulated provider gives for modelName.
func SimulatedText(modelName string) string {
	return fmt.Sprintf("This is a simulated response from %s model. "+
		"In a real implementation, this would connect to the appropriate AI model API.", modelName)
}

// Name implements ResponseProvider.
func (s *Simulated) Name() string { return "simulated" }

// Generate implements ResponseProvider.
func (s *Simulated) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()

		select {
		case <-timer.C:
		case <-ctx.Done():
			pe := Classify(ctx.Err())
			pe.Provider = s.Name()
			pe.Model = req.Model
			return nil, pe
		}
	}

	return &Response{
		Text:     SimulatedText(req.Model),
		Model:    req.Model,
		Duration: time.Since(start),
	}, nil
}
