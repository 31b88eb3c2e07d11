// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/config"
	"github.com/jeranaias/chatshell/internal/logging"
	"github.com/jeranaias/chatshell/internal/provider"
)

// =============================================================================
// APP
// =============================================================================

// App carries the state shared by every command: streams, global flags
// and, once the root pre-run has executed, the loaded config and logger.
type App struct {
	Version string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Logger, when set, is used instead of building one from config.
	Logger *zap.Logger

	// NewProvider builds the response provider. Defaults to provider.New.
	NewProvider func(*config.Config, *zap.Logger) (provider.ResponseProvider, error)

	// Global flags
	configPath string
	verbose    bool

	// Set by the root pre-run
	cfg     *config.Config
	cfgPath string
	logger  *zap.Logger
}

// NewApp returns an App wired to the process streams.
func NewApp(version string) *App {
	return &App{
		Version:     version,
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		NewProvider: provider.New,
	}
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "chatshell",
		Short: "chatshell - terminal chat client",
		Long: `chatshell is a terminal chat client with a conversation sidebar,
model selector and pluggable reply backends (simulated or local Ollama).

Run without arguments to start the full-screen chat.`,
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTUI(cmd.Context())
		},
	}

	root.SetIn(app.Stdin)
	root.SetOut(app.Stdout)
	root.SetErr(app.Stderr)

	root.PersistentFlags().StringVar(&app.configPath, "config", "", "Config file (default ~/.chatshell/config.toml)")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		newTUICommand(app),
		newAskCommand(app),
		newREPLCommand(app),
		newModelsCommand(app),
		newConfigCommand(app),
	)
	return root
}

// setup loads the config and builds the logger.
func (a *App) setup() error {
	cfg, path, err := loadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.cfgPath = path

	if a.Logger != nil {
		a.logger = a.Logger
		return nil
	}
	logger, err := logging.New(cfg.Logging, a.verbose)
	if err != nil {
		return &ConfigError{Path: path, Err: err}
	}
	a.logger = logger
	return nil
}

// teardown flushes the logger. Sync errors on terminals are expected and
// ignored.
func (a *App) teardown() {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// loadConfig reads explicit when set, otherwise the first config file found
// in the config directory, otherwise defaults. The returned path is where
// the config was read from, or where it would be written.
func loadConfig(explicit string) (*config.Config, string, error) {
	if explicit != "" {
		cfg, err := config.LoadFromPath(explicit)
		if err != nil {
			return nil, explicit, &ConfigError{Path: explicit, Err: err}
		}
		return cfg, explicit, nil
	}

	found, err := config.FindConfigFile()
	if err != nil {
		return nil, "", &ConfigError{Err: err}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, found, &ConfigError{Path: found, Err: err}
	}
	if found == "" {
		found, _ = config.ConfigPathTOML()
	}
	return cfg, found, nil
}

// =============================================================================
// EXECUTE
// =============================================================================

// Run executes args and flushes the logger afterwards, whether or not the
// command succeeded.
func (a *App) Run(ctx context.Context, args []string) error {
	defer a.teardown()

	root := NewRootCommand(a)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, version string, args []string) int {
	app := NewApp(version)
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintln(app.Stderr, ErrorStyle.Render("Error:"), err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
