// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/chatshell/internal/provider"
)

// =============================================================================
// USAGE TRACKER
// =============================================================================

// UsageTracker aggregates completion results per model. It is safe for
// concurrent use and holds nothing beyond the current process.
type UsageTracker struct {
	mu      sync.RWMutex
	started time.Time
	models  map[string]*ModelUsage
	now     func() time.Time
}

// ModelUsage holds the counters for one model.
type ModelUsage struct {
	Model       string         `json:"model"`
	Completions int            `json:"completions"`
	Failures    int            `json:"failures"`
	ByKind      map[string]int `json:"by_kind,omitempty"` // failure kind -> count
	Total       time.Duration  `json:"total"`
	Slowest     time.Duration  `json:"slowest"`
	LastAt      time.Time      `json:"last_at"`
}

// Average returns the mean duration of successful completions.
func (u ModelUsage) Average() time.Duration {
	if u.Completions == 0 {
		return 0
	}
	return u.Total / time.Duration(u.Completions)
}

// Snapshot is a point-in-time copy of the tracker.
type Snapshot struct {
	Started time.Time    `json:"started"`
	Models  []ModelUsage `json:"models"` // sorted by model name
}

// Totals sums completions and failures across models.
func (s Snapshot) Totals() (completions, failures int) {
	for _, m := range s.Models {
		completions += m.Completions
		failures += m.Failures
	}
	return completions, failures
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{
		started: time.Now(),
		models:  make(map[string]*ModelUsage),
		now:     time.Now,
	}
}

// =============================================================================
// RECORDING
// =============================================================================

// ObserveCompletion records one finished completion. A nil err counts as a
// success with the given duration; otherwise the failure is counted under
// its provider kind.
func (t *UsageTracker) ObserveCompletion(model string, duration time.Duration, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	u := t.models[model]
	if u == nil {
		u = &ModelUsage{Model: model}
		t.models[model] = u
	}
	u.LastAt = t.now()

	if err != nil {
		u.Failures++
		if u.ByKind == nil {
			u.ByKind = make(map[string]int)
		}
		u.ByKind[provider.KindOf(err).String()]++
		return
	}

	u.Completions++
	u.Total += duration
	if duration > u.Slowest {
		u.Slowest = duration
	}
}

// =============================================================================
// RETRIEVAL
// =============================================================================

// Snapshot returns a copy of the current counters.
func (t *UsageTracker) Snapshot() Snapshot {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snap := Snapshot{Started: t.started, Models: make([]ModelUsage, 0, len(t.models))}
	for _, u := range t.models {
		cp := *u
		if u.ByKind != nil {
			cp.ByKind = make(map[string]int, len(u.ByKind))
			for k, v := range u.ByKind {
				cp.ByKind[k] = v
			}
		}
		snap.Models = append(snap.Models, cp)
	}
	sort.Slice(snap.Models, func(i, j int) bool {
		return snap.Models[i].Model < snap.Models[j].Model
	})
	return snap
}

// Summary renders the snapshot as short lines for the tools panel.
func (s Snapshot) Summary() string {
	if len(s.Models) == 0 {
		return "No replies yet"
	}

	var b strings.Builder
	for _, m := range s.Models {
		fmt.Fprintf(&b, "%s: %d ok", m.Model, m.Completions)
		if m.Failures > 0 {
			fmt.Fprintf(&b, ", %d failed", m.Failures)
		}
		if m.Completions > 0 {
			fmt.Fprintf(&b, ", avg %s", m.Average().Round(100*time.Millisecond))
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
