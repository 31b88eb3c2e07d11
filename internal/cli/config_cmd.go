// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/config"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
		Example: `  chatshell config show
  chatshell config show --format yaml
  chatshell config init
  chatshell config get ui.theme
  chatshell config set ui.theme light`,
	}

	// path and init must work when the existing file is broken
	skipLoad := func(cmd *cobra.Command, args []string) error {
		return app.setupWithoutConfig()
	}

	var format string
	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Encode(app.cfg, strings.ToLower(format))
			if err != nil {
				return &UsageError{Message: err.Error()}
			}
			_, err = app.Stdout.Write(data)
			return err
		},
	}
	show.Flags().StringVarP(&format, "format", "f", "toml", "Output format: toml, yaml or json")

	path := &cobra.Command{
		Use:               "path",
		Short:             "Print the config file location",
		Args:              cobra.NoArgs,
		PersistentPreRunE: skipLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(app.Stdout, app.cfgPath)
			return nil
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:               "init",
		Short:             "Write a default config file",
		Args:              cobra.NoArgs,
		PersistentPreRunE: skipLoad,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.configInit(force)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")

	get := &cobra.Command{
		Use:   "get KEY",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.cfg.Get(args[0])
			if err != nil {
				return &UsageError{Message: fmt.Sprintf("%v (keys: %s)", err, strings.Join(config.GetAllKeys(), ", "))}
			}
			fmt.Fprintln(app.Stdout, formatValue(v))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Change one setting and save the file",
		Long: `Change one setting and save the file. Lists take comma-separated
values, for example: chatshell config set models "Gemma-3,Llama-3.2"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.configSet(args[0], args[1])
		},
	}

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List every settable key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, k := range config.GetAllKeys() {
				fmt.Fprintln(app.Stdout, k)
			}
			return nil
		},
	}

	cmd.AddCommand(show, path, initCmd, get, set, keys)
	return cmd
}

// setupWithoutConfig resolves the config path and logger without reading
// the file.
func (a *App) setupWithoutConfig() error {
	a.cfg = config.Default()
	a.cfgPath = a.configPath
	if a.cfgPath == "" {
		found, err := config.FindConfigFile()
		if err != nil {
			return &ConfigError{Err: err}
		}
		if found == "" {
			if found, err = config.ConfigPathTOML(); err != nil {
				return &ConfigError{Err: err}
			}
		}
		a.cfgPath = found
	}

	a.logger = a.Logger
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return nil
}

func (a *App) configInit(force bool) error {
	if _, err := os.Stat(a.cfgPath); err == nil && !force {
		return NewCommandError("config", "init", a.cfgPath+" already exists (use --force to overwrite)", nil)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &ConfigError{Path: a.cfgPath, Err: err}
	}

	if err := config.SaveTo(config.Default(), a.cfgPath); err != nil {
		return &ConfigError{Path: a.cfgPath, Err: err}
	}
	a.logger.Info("config written", zap.String("path", a.cfgPath))
	fmt.Fprintln(a.Stdout, SuccessStyle.Render("Wrote "+filepath.Clean(a.cfgPath)))
	return nil
}

func (a *App) configSet(key, value string) error {
	cfg := a.cfg.Clone()
	if err := cfg.Set(key, value); err != nil {
		return &UsageError{Message: fmt.Sprintf("%s: %v", key, err)}
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Path: a.cfgPath, Err: err}
	}
	if err := config.SaveTo(cfg, a.cfgPath); err != nil {
		return &ConfigError{Path: a.cfgPath, Err: err}
	}
	a.cfg = cfg

	a.logger.Info("config updated", zap.String("key", key), zap.String("path", a.cfgPath))
	fmt.Fprintf(a.Stdout, "%s = %s\n", key, value)
	return nil
}

// formatValue prints lists comma-separated and everything else with %v.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, ",")
	case map[string]string:
		parts := make([]string, 0, len(val))
		for k, s := range val {
			parts = append(parts, k+"="+s)
		}
		sort.Strings(parts)
		return strings.Join(parts, ",")
	default:
		return fmt.Sprintf("%v", v)
	}
}
