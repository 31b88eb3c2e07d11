// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/config"
	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/ollama"
	"github.com/jeranaias/chatshell/internal/provider"
)

// =============================================================================
// HELPERS
// =============================================================================

var echo = provider.Func(func(_ context.Context, req provider.Request) (*provider.Response, error) {
	return &provider.Response{Text: "echo: " + req.LastUserContent(), Model: req.Model}, nil
})

func failWith(err error) provider.ResponseProvider {
	return provider.Func(func(context.Context, provider.Request) (*provider.Response, error) {
		return nil, err
	})
}

// testEnv is a CLI run against a temporary config file.
type testEnv struct {
	t       *testing.T
	cfgPath string
	p       provider.ResponseProvider
	stdin   string
	logger  *zap.Logger
}

func newEnv(t *testing.T, configBody string) *testEnv {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(configBody), 0o600))
	return &testEnv{t: t, cfgPath: path, p: echo}
}

// run executes args and returns stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()

	var out, errOut bytes.Buffer
	app := NewApp("test")
	app.Stdin = strings.NewReader(e.stdin)
	app.Stdout = &out
	app.Stderr = &errOut
	app.Logger = e.logger
	if app.Logger == nil {
		app.Logger = zap.NewNop()
	}
	app.NewProvider = func(*config.Config, *zap.Logger) (provider.ResponseProvider, error) {
		return e.p, nil
	}

	err := app.Run(context.Background(), append(args, "--config", e.cfgPath))
	return out.String(), err
}

// =============================================================================
// ASK
// =============================================================================

func TestAsk_PrintsReply(t *testing.T) {
	env := newEnv(t, "")

	out, err := env.run("ask", "What", "is", "Go?")
	require.NoError(t, err)
	assert.Equal(t, "echo: What is Go?\n", out)
}

func TestAsk_JSON(t *testing.T) {
	env := newEnv(t, "")

	out, err := env.run("ask", "--json", "-m", "Llama-3.2", "What is Go?")
	require.NoError(t, err)

	var res askResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "What is Go?", res.Title)
	assert.Equal(t, "Llama-3.2", res.Model)
	assert.Equal(t, "echo: What is Go?", res.Reply)
	assert.NotEmpty(t, res.ConversationID)
}

func TestAsk_UsesDefaultModel(t *testing.T) {
	env := newEnv(t, "default_model = \"Gemma-3\"\n")

	out, err := env.run("ask", "--json", "hi")
	require.NoError(t, err)

	var res askResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "Gemma-3", res.Model)
}

func TestAsk_ReadsStdin(t *testing.T) {
	env := newEnv(t, "")
	env.stdin = "from a pipe\n"

	out, err := env.run("ask")
	require.NoError(t, err)
	assert.Equal(t, "echo: from a pipe\n\n", out)
}

func TestAsk_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		p        provider.ResponseProvider
		wantCode int
	}{
		{"no question", []string{"ask"}, echo, ExitUsageError},
		{"unknown model", []string{"ask", "-m", "GPT-9", "hi"}, echo, ExitUsageError},
		{"backend down", []string{"ask", "hi"}, failWith(provider.ErrUnavailable), ExitNetworkError},
		{"timeout", []string{"ask", "hi"}, failWith(context.DeadlineExceeded), ExitTimeoutError},
		{"model missing", []string{"ask", "hi"}, failWith(provider.ErrModelNotFound), ExitNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, "")
			env.p = tt.p

			_, err := env.run(tt.args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
		})
	}
}

// =============================================================================
// REPL
// =============================================================================

func TestREPL_Conversation(t *testing.T) {
	env := newEnv(t, "")
	env.stdin = strings.Join([]string{
		"hello there",
		"/model Llama-3.2",
		"/new",
		"second",
		"/list",
		"/quit",
		"never sent",
	}, "\n")

	out, err := env.run("repl")
	require.NoError(t, err)

	assert.Contains(t, out, "Currently using "+model.DefaultModels[0])
	assert.Contains(t, out, "echo: hello there")
	assert.Contains(t, out, "Model: Llama-3.2")
	assert.Contains(t, out, "echo: second")
	assert.Contains(t, out, " 1. second")
	assert.Contains(t, out, " 2. hello there")
	assert.Contains(t, out, "(2 messages) echo: hello there")
	assert.NotContains(t, out, "never sent")
}

func TestREPL_ProviderFailureShowsErrorText(t *testing.T) {
	env := newEnv(t, "")
	env.p = failWith(provider.ErrUnavailable)
	env.stdin = "hi\n"

	out, err := env.run("repl")
	require.NoError(t, err)
	assert.Contains(t, out, "Error: the model backend is unavailable")
}

func TestREPL_CommandErrors(t *testing.T) {
	env := newEnv(t, "")
	env.stdin = "/bogus\n/model GPT-9\n/open 3\n/pin\n"

	out, err := env.run("repl")
	require.NoError(t, err)
	assert.Contains(t, out, "unknown command /bogus")
	assert.Contains(t, out, chat.ErrUnknownModel.Error())
	assert.Contains(t, out, "usage: /open N")
	assert.Contains(t, out, chat.ErrConversationNotFound.Error())
}

func TestREPL_RenamePinDelete(t *testing.T) {
	env := newEnv(t, "")
	env.stdin = "first\n/rename Plans\n/pin\n/list\n/delete\n/list\n"

	out, err := env.run("repl")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. Plans [P]")
	assert.Contains(t, out, "Deleted Plans")
	assert.Contains(t, out, "No conversations yet")
}

func TestREPL_Export(t *testing.T) {
	dir := t.TempDir()
	env := newEnv(t, fmt.Sprintf("[ui]\nexport_dir = %q\n", dir))
	env.stdin = "hello\n/export json\n/export\n"

	out, err := env.run("repl")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported to")

	jsonFiles, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	mdFiles, _ := filepath.Glob(filepath.Join(dir, "*.md"))
	assert.Len(t, jsonFiles, 1)
	assert.Len(t, mdFiles, 1)
}

// =============================================================================
// MODELS
// =============================================================================

func TestModels_ListWithoutProbe(t *testing.T) {
	env := newEnv(t, "")

	out, err := env.run("models", "--json")
	require.NoError(t, err)

	var report modelsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, config.ProviderSimulated, report.Provider)
	assert.Nil(t, report.Reachable)
	require.Len(t, report.Models, len(model.DefaultModels))
	assert.True(t, report.Models[0].Current)
	assert.Equal(t, "llama3.2", report.Models[3].OllamaTag)
	assert.Nil(t, report.Models[3].Installed)
}

func TestModels_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, "Ollama is running")
		case "/api/tags":
			fmt.Fprint(w, `{"models":[{"name":"llama3.2:latest","size":2147483648},{"name":"gemma3:4b"}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	env := newEnv(t, fmt.Sprintf("[provider]\nkind = \"ollama\"\n[provider.ollama]\nurl = %q\n", srv.URL))

	out, err := env.run("models", "--json")
	require.NoError(t, err)

	var report modelsReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Reachable)
	assert.True(t, *report.Reachable)
	assert.ElementsMatch(t, []string{"llama3.2:latest", "gemma3:4b"}, report.Installed)

	installed := map[string]bool{}
	sizes := map[string]string{}
	for _, m := range report.Models {
		require.NotNil(t, m.Installed, m.Name)
		installed[m.Name] = *m.Installed
		sizes[m.Name] = m.Size
	}
	assert.Equal(t, "2.0 GB", sizes["Llama-3.2"])
	assert.Empty(t, sizes["Gemma-3"])
	assert.True(t, installed["Llama-3.2"])
	assert.True(t, installed["Gemma-3"])
	assert.False(t, installed["DeepSeek"])
	assert.True(t, installed["Custom"])
}

func TestModels_ProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	env := newEnv(t, fmt.Sprintf("[provider.ollama]\nurl = %q\n", url))

	out, err := env.run("models", "--probe", "--timeout", "2s")
	require.NoError(t, err)
	assert.Contains(t, out, "unreachable")
}

func TestInstalledModel(t *testing.T) {
	installed := []ollama.ModelInfo{{Name: "llama3.2:latest"}, {Name: "qwen2.5:14b"}}
	tests := []struct {
		tag  string
		want bool
	}{
		{"llama3.2", true},
		{"llama3.2:latest", true},
		{"qwen2.5", true},
		{"gemma3", false},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			_, ok := installedModel(installed, tt.tag)
			assert.Equal(t, tt.want, ok)
		})
	}
	_, ok := installedModel(nil, "")
	assert.False(t, ok)
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfig_Show(t *testing.T) {
	env := newEnv(t, "[ui]\ntheme = \"light\"\n")

	out, err := env.run("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `theme = "light"`)

	out, err = env.run("config", "show", "--format", "json")
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))

	_, err = env.run("config", "show", "--format", "ini")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestConfig_Get(t *testing.T) {
	env := newEnv(t, "")

	out, err := env.run("config", "get", "ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "dark\n", out)

	out, err = env.run("config", "get", "models")
	require.NoError(t, err)
	assert.Equal(t, strings.Join(model.DefaultModels, ",")+"\n", out)

	_, err = env.run("config", "get", "ui.nope")
	assert.Equal(t, ExitUsageError, GetExitCode(err))
}

func TestConfig_Set(t *testing.T) {
	env := newEnv(t, "")

	out, err := env.run("config", "set", "ui.theme", "light")
	require.NoError(t, err)
	assert.Equal(t, "ui.theme = light\n", out)

	cfg, err := config.LoadFromPath(env.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "light", cfg.UI.Theme)
}

func TestConfig_SetRejectsInvalid(t *testing.T) {
	env := newEnv(t, "")

	_, err := env.run("config", "set", "ui.theme", "neon")
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	_, err = env.run("config", "set", "provider.rate_limit_per_minute", "lots")
	assert.Equal(t, ExitUsageError, GetExitCode(err))

	cfg, err := config.LoadFromPath(env.cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "dark", cfg.UI.Theme)
}

func TestConfig_InitAndPath(t *testing.T) {
	env := newEnv(t, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	env.cfgPath = path

	out, err := env.run("config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)

	_, err = env.run("config", "init")
	require.NoError(t, err)
	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().DefaultModel, cfg.DefaultModel)

	_, err = env.run("config", "init")
	var cmdErr *CommandError
	assert.True(t, errors.As(err, &cmdErr))

	_, err = env.run("config", "init", "--force")
	assert.NoError(t, err)
}

func TestConfig_InitOverBrokenFile(t *testing.T) {
	env := newEnv(t, "this is [not toml")

	_, err := env.run("config", "show")
	assert.Equal(t, ExitConfigError, GetExitCode(err))

	_, err = env.run("config", "init", "--force")
	require.NoError(t, err)

	_, err = env.run("config", "show")
	assert.NoError(t, err)
}

// =============================================================================
// ERRORS
// =============================================================================

// syncCounter is a log sink that counts Sync calls.
type syncCounter struct {
	syncs atomic.Int32
}

func (s *syncCounter) Write(p []byte) (int, error) { return len(p), nil }

func (s *syncCounter) Sync() error {
	s.syncs.Add(1)
	return nil
}

func TestRun_SyncsLoggerAfterFailure(t *testing.T) {
	sink := &syncCounter{}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, zapcore.DebugLevel)

	env := newEnv(t, "")
	env.p = failWith(provider.ErrUnavailable)
	env.logger = zap.New(core)

	_, err := env.run("ask", "hi")
	require.Error(t, err)
	assert.Equal(t, ExitNetworkError, GetExitCode(err))
	assert.Positive(t, sink.syncs.Load())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain", errors.New("boom"), ExitGeneralError},
		{"usage", &UsageError{Message: "bad"}, ExitUsageError},
		{"config", &ConfigError{Path: "x", Err: errors.New("bad")}, ExitConfigError},
		{"validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.theme"}}), ExitConfigError},
		{"not found", fmt.Errorf("open: %w", chat.ErrConversationNotFound), ExitNotFoundError},
		{"unknown model", chat.ErrUnknownModel, ExitNotFoundError},
		{"timeout", provider.ErrTimeout, ExitTimeoutError},
		{"unavailable", &provider.Error{Kind: provider.KindUnavailable}, ExitNetworkError},
		{"canceled", provider.ErrCanceled, ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestCommandError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewCommandError("config", "init", "cannot write", cause)

	assert.Equal(t, "config init failed: cannot write: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestReadQuestion(t *testing.T) {
	q, err := readQuestion([]string{"a", "b"}, strings.NewReader("ignored"))
	require.NoError(t, err)
	assert.Equal(t, "a b", q)

	q, err = readQuestion(nil, strings.NewReader("piped"))
	require.NoError(t, err)
	assert.Equal(t, "piped", q)

	_, err = readQuestion([]string{"  "}, nil)
	var usage *UsageError
	assert.True(t, errors.As(err, &usage))
}
