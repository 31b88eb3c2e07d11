// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat holds the conversation store: state, reducer and the
// message-lifecycle controller.
//
// # State
//
// State is a plain value. Reduce applies one Action and returns the next
// State without touching its input, so earlier snapshots stay valid and
// can be compared or rendered while newer ones are produced.
//
// # Store
//
// Store owns the current State behind a mutex and hands out copies.
// Dispatch applies actions in order; Update lets a caller compute actions
// from the state it is applied against, which is how a reply is resolved
// and the title derived in one step. Subscribers receive a Change for
// every applied action on a buffered channel:
//
//	changes, cancel := store.Subscribe(ctx)
//	defer cancel()
//	for ch := range changes {
//	    render(store.State())
//	}
//
// # Controller
//
// Controller drives the send flow against a provider.ResponseProvider:
//
//	ctrl := chat.NewController(store, provider.NewSimulated(0),
//	    chat.WithLogger(logger),
//	    chat.WithObserver(usage))
//	defer ctrl.Close()
//
//	pending := ctrl.SendMessage("hello")
//	_ = pending.Wait(ctx)
//
// The user message and a loading placeholder are in the store as soon as
// SendMessage returns. The reply is delivered to the conversation that was
// current when the message was sent, even if the user has moved on.
package chat
