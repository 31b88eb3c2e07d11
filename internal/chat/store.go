// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const (
	// subscriberBufferSize is the channel buffer for each subscriber.
	subscriberBufferSize = 64
)

// Change describes one applied action.
type Change struct {
	// Version is the store version after the action was applied
	Version uint64
	Action  Action
}

// =============================================================================
// STORE
// =============================================================================

// Store owns the chat State. All mutation goes through Dispatch or Update,
// which run Reduce one action at a time under a lock. Subscribers are told
// about every applied action.
type Store struct {
	mu      sync.Mutex
	state   State
	version uint64

	subMu  sync.Mutex
	subs   map[uint64]chan Change
	nextID uint64

	logger *zap.Logger
}

// NewStore creates a store holding initial. Pass nil logger for a no-op.
func NewStore(initial State, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		state:  initial.Clone(),
		subs:   make(map[uint64]chan Change),
		logger: logger.With(zap.String("component", "store")),
	}
}

// State returns a deep copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version returns the number of actions applied so far.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Dispatch applies actions in order and returns a copy of the resulting state.
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyLocked(actions)
	return s.state.Clone()
}

// Update calls fn with the current state and applies the actions it
// returns, all under the store lock. No other action can be applied
// between fn reading the state and its actions taking effect.
//
// fn must treat the state as read-only and must not call back into the
// store.
func (s *Store) Update(fn func(State) []Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.applyLocked(fn(s.state))
	return s.state.Clone()
}

func (s *Store) applyLocked(actions []Action) {
	for _, a := range actions {
		if a == nil {
			continue
		}
		s.state = Reduce(s.state, a)
		s.version++

		s.logger.Debug("action applied",
			zap.String("action", a.Kind()),
			zap.Uint64("version", s.version))

		s.publish(Change{Version: s.version, Action: a})
	}
}

// =============================================================================
// SUBSCRIPTIONS
// =============================================================================

// Subscribe registers for change notifications. The returned channel is
// closed when ctx is cancelled or the returned cancel func is called.
//
// Notifications are dropped for subscribers whose buffer is full; a
// subscriber that sees a gap in Version should re-read State.
func (s *Store) Subscribe(ctx context.Context) (<-chan Change, func()) {
	ch := make(chan Change, subscriberBufferSize)

	s.subMu.Lock()
	s.nextID++
	id := s.nextID
	s.subs[id] = ch
	s.subMu.Unlock()

	s.logger.Debug("subscriber added", zap.Uint64("sub_id", id))

	stop := context.AfterFunc(ctx, func() { s.unsubscribe(id) })

	return ch, func() {
		stop()
		s.unsubscribe(id)
	}
}

// publish is called with s.mu held, so changes arrive in version order.
func (s *Store) publish(change Change) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	for id, ch := range s.subs {
		select {
		case ch <- change:
		default:
			s.logger.Debug("dropped change for slow subscriber",
				zap.Uint64("sub_id", id),
				zap.Uint64("version", change.Version))
		}
	}
}

func (s *Store) unsubscribe(id uint64) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	ch, ok := s.subs[id]
	if !ok {
		return
	}
	delete(s.subs, id)
	close(ch)

	s.logger.Debug("subscriber removed", zap.Uint64("sub_id", id))
}
