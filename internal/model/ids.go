// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator produces identifiers for conversations and messages.
// Implementations must be safe for concurrent use.
type IDGenerator interface {
	NewID() string
}

// UUIDGenerator generates random UUIDv4 identifiers.
type UUIDGenerator struct{}

// NewID returns a fresh UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// SequentialGenerator yields prefix-1, prefix-2, ... for deterministic tests.
type SequentialGenerator struct {
	Prefix string
	n      atomic.Uint64
}

// NewSequentialGenerator creates a generator starting at 1.
func NewSequentialGenerator(prefix string) *SequentialGenerator {
	return &SequentialGenerator{Prefix: prefix}
}

// NewID returns the next identifier in the sequence.
func (g *SequentialGenerator) NewID() string {
	return g.Prefix + "-" + strconv.FormatUint(g.n.Add(1), 10)
}
