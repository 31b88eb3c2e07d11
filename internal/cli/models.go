// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/chatshell/internal/config"
	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/ollama"
	"github.com/jeranaias/chatshell/internal/provider"
)

// defaultProbeTimeout bounds the Ollama probe.
const defaultProbeTimeout = 5 * time.Second

type modelsOptions struct {
	probe   bool
	json    bool
	timeout time.Duration
}

// modelRow is one configured model in the models listing.
type modelRow struct {
	Name        string `json:"name"`
	Provider    string `json:"provider,omitempty"`
	Description string `json:"description,omitempty"`
	OllamaTag   string `json:"ollamaTag,omitempty"`
	Current     bool   `json:"current"`

	// Size is the installed model's size, when probed and known
	Size string `json:"size,omitempty"`

	// Installed is nil when Ollama was not probed or could not be reached
	Installed *bool `json:"installed,omitempty"`
}

// modelsReport is the --json output of models.
type modelsReport struct {
	Provider  string     `json:"provider"`
	OllamaURL string     `json:"ollamaUrl,omitempty"`
	Reachable *bool      `json:"reachable,omitempty"`
	Error     string     `json:"error,omitempty"`
	Installed []string   `json:"installed,omitempty"`
	Models    []modelRow `json:"models"`
}

func newModelsCommand(app *App) *cobra.Command {
	var opts modelsOptions

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List configured models and probe the Ollama backend",
		Long: `List the models offered in the model selector.

When the provider is "ollama" (or with --probe) the Ollama server is
checked and each model is marked installed or missing.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("probe") {
				opts.probe = app.cfg.Provider.Kind == config.ProviderOllama
			}
			return app.runModels(cmd.Context(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.probe, "probe", false, "Check the Ollama server (default when the provider is ollama)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the listing as JSON")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", defaultProbeTimeout, "Probe timeout")
	return cmd
}

func (a *App) runModels(ctx context.Context, opts modelsOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := a.cfg

	report := modelsReport{Provider: cfg.Provider.Kind}
	resolver := provider.NewOllama(nil, cfg.Provider.Ollama.ModelMap, a.logger)
	for _, name := range cfg.Models {
		row := modelRow{
			Name:      name,
			OllamaTag: resolver.Tag(name),
			Current:   name == cfg.DefaultModel,
		}
		if info, ok := model.GetModelInfo(name); ok {
			row.Provider = info.Provider
			row.Description = info.Description
		}
		report.Models = append(report.Models, row)
	}

	if opts.probe {
		report.OllamaURL = cfg.Provider.Ollama.URL
		installed, err := probeOllama(ctx, cfg, opts.timeout)
		reachable := err == nil
		report.Reachable = &reachable
		if err != nil {
			report.Error = provider.Classify(err).UserMessage()
			a.logger.Warn("ollama probe failed", zap.String("url", cfg.Provider.Ollama.URL), zap.Error(err))
		} else {
			for _, m := range installed {
				report.Installed = append(report.Installed, m.Name)
			}
			for i := range report.Models {
				info, ok := installedModel(installed, report.Models[i].OllamaTag)
				report.Models[i].Installed = &ok
				if ok && info.Size > 0 {
					report.Models[i].Size = info.FormatSize()
				}
			}
		}
	}

	if opts.json {
		return writeJSON(a.Stdout, report)
	}
	a.printModels(report)
	return nil
}

// probeOllama checks the server and lists its models concurrently.
func probeOllama(ctx context.Context, cfg *config.Config, timeout time.Duration) ([]ollama.ModelInfo, error) {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Provider.Ollama.URL,
		Timeout: timeout,
	})

	var installed []ollama.ModelInfo
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.CheckRunning(gctx)
	})
	g.Go(func() error {
		models, err := client.ListModels(gctx)
		installed = models
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return installed, nil
}

// installedModel finds tag among the installed models. An empty tag is the
// server's default and matches when anything is installed.
func installedModel(installed []ollama.ModelInfo, tag string) (ollama.ModelInfo, bool) {
	if tag == "" {
		return ollama.ModelInfo{}, len(installed) > 0
	}
	return ollama.FindModel(installed, tag)
}

func (a *App) printModels(r modelsReport) {
	w := a.Stdout
	fmt.Fprintln(w, TitleStyle.Render("Models"))
	fmt.Fprintf(w, "%s %s\n", LabelStyle.Render("Provider:"), ValueStyle.Render(r.Provider))

	if r.Reachable != nil {
		status := SuccessStyle.Render("reachable")
		if !*r.Reachable {
			status = ErrorStyle.Render("unreachable") + " " + DimStyle.Render(r.Error)
		}
		fmt.Fprintf(w, "%s %s %s\n", LabelStyle.Render("Ollama:"), ValueStyle.Render(r.OllamaURL), status)
	}
	fmt.Fprintln(w)

	for _, m := range r.Models {
		marker := "  "
		if m.Current {
			marker = "* "
		}
		line := marker + fmt.Sprintf("%-12s", m.Name)
		if m.Provider != "" {
			line += " " + DimStyle.Render(fmt.Sprintf("%-10s", m.Provider))
		}
		if m.OllamaTag != "" {
			line += " " + ValueStyle.Render(m.OllamaTag)
		}
		if m.Installed != nil {
			if *m.Installed {
				line += " " + SuccessStyle.Render("installed")
				if m.Size != "" {
					line += " " + DimStyle.Render(m.Size)
				}
			} else {
				line += " " + WarningStyle.Render("missing")
			}
		}
		fmt.Fprintln(w, line)
	}
}
