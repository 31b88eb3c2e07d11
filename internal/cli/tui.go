// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/ui/shell"
)

func newTUICommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the full-screen chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI(cmd.Context())
		},
	}
}

// runTUI runs the Bubble Tea shell until the user quits.
func (a *App) runTUI(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if !isTerminal(a.Stdout) {
		return &UsageError{Message: "the chat screen needs a terminal; use \"chatshell ask\" or \"chatshell repl\" for piped output"}
	}

	sess, err := a.newSession("")
	if err != nil {
		return err
	}
	defer sess.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Only watch a file that exists; defaults are not reloaded
	watchPath := ""
	if _, err := os.Stat(a.cfgPath); err == nil {
		watchPath = a.cfgPath
	}

	m := shell.New(shell.Options{
		Context:    ctx,
		Controller: sess.Controller,
		Config:     a.cfg,
		ConfigPath: watchPath,
		Usage:      sess.Usage,
		Logger:     a.logger,
	})
	defer m.Close()

	a.logger.Info("tui started", zap.String("provider", sess.Provider), zap.String("config", watchPath))

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("tui: %w", err)
	}

	snap := sess.Usage.Snapshot()
	completions, failures := snap.Totals()
	a.logger.Info("tui stopped", zap.Int("completions", completions), zap.Int("failures", failures))
	return nil
}
