// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry tracks completion counts and latency for the session.
//
// UsageTracker is handed to the chat controller as its completion
// observer. Nothing is written to disk.
//
// # Usage
//
//	usage := telemetry.NewUsageTracker()
//	ctrl := chat.NewController(store, p, chat.WithObserver(usage))
//	fmt.Println(usage.Snapshot().Summary())
package telemetry
