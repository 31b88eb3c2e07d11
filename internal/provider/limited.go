// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package provider

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimited wraps a provider so that at most perMinute completions start
// in any minute. Callers over the limit wait; a caller whose ctx ends while
// waiting gets a Timeout or Canceled error.
type RateLimited struct {
	inner   ResponseProvider
	limiter *rate.Limiter
}

// NewRateLimited wraps inner. perMinute must be positive.
func NewRateLimited(inner ResponseProvider, perMinute int) *RateLimited {
	// Burst of one request, refilled evenly across the minute
	every := time.Minute / time.Duration(perMinute)
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

// Name implements ResponseProvider.
func (r *RateLimited) Name() string { return r.inner.Name() }

// Generate implements ResponseProvider.
func (r *RateLimited) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		cause := ctx.Err()
		if cause == nil {
			// Wait refused because the deadline falls before the next token
			cause = context.DeadlineExceeded
		}
		pe := Classify(cause)
		pe.Provider = r.Name()
		pe.Model = req.Model
		pe.Message = "rate limit: " + pe.Message
		return nil, pe
	}
	return r.inner.Generate(ctx, req)
}
