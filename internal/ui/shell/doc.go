// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell is the Bubble Tea front end for chatshell.
//
// The shell owns no chat state of its own. It renders the latest
// chat.State read from the controller's store and turns key presses into
// controller calls. Store changes arrive through a subscription; since a
// slow reader may miss notifications, every change re-reads the full state.
//
// Layout, left to right: conversation sidebar, message list with the input
// box below it, and an optional tools panel. A header shows the current
// model and a status line shows transient notices and key hints.
package shell
