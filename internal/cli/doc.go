// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatshell command line.
//
// Commands:
//
//	chatshell                    Start the full-screen chat (same as "tui")
//	chatshell tui                Start the full-screen chat
//	chatshell ask "question"     Send one message and print the reply
//	chatshell repl               Line-mode chat with history
//	chatshell models             List models and probe the Ollama backend
//	chatshell config show        Print the effective configuration
//	chatshell config path        Print the config file location
//	chatshell config init        Write a default config file
//	chatshell config get KEY     Print one setting
//	chatshell config set KEY V   Change one setting and save
//
// Global flags:
//
//	--config PATH    Use a specific config file
//	-v, --verbose    Log at debug level
//
// Every command that talks to a model builds a Session: config, logger,
// response provider, store and controller wired together.
package cli
