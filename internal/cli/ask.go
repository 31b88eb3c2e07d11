// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/model"
)

// askOptions holds the ask command's flags.
type askOptions struct {
	model string
	json  bool
	raw   bool
}

// askResult is the --json output of ask.
type askResult struct {
	ConversationID string `json:"conversationId"`
	Title          string `json:"title"`
	Model          string `json:"model"`
	Reply          string `json:"reply"`
	DurationMs     int64  `json:"durationMs"`
}

func newAskCommand(app *App) *cobra.Command {
	var opts askOptions

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Send one message and print the reply",
		Long: `Send one message to the current model and print the reply.

With no arguments the question is read from standard input. Replies are
rendered as Markdown when standard output is a terminal.`,
		Example: `  chatshell ask "What is a goroutine?"
  chatshell ask -m Llama-3.2 "Summarize RFC 2119"
  git diff | chatshell ask --raw`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := readQuestion(args, app.Stdin)
			if err != nil {
				return err
			}
			return app.runAsk(cmd.Context(), question, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Model to ask (default from config)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the reply as JSON")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the reply without Markdown rendering")
	return cmd
}

// readQuestion joins args, or reads r when there are none.
func readQuestion(args []string, r io.Reader) (string, error) {
	question := strings.Join(args, " ")
	if len(args) == 0 && r != nil {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("failed to read question: %w", err)
		}
		question = string(data)
	}
	if strings.TrimSpace(question) == "" {
		return "", &UsageError{Message: "no question given"}
	}
	return question, nil
}

func (a *App) runAsk(ctx context.Context, question string, opts askOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sess, err := a.newSession(opts.model)
	if err != nil {
		return err
	}
	defer sess.Close()

	start := time.Now()
	pending := sess.Controller.SendMessage(question)
	if err := pending.Wait(ctx); err != nil {
		a.logger.Warn("ask failed", zap.Error(err))
		return err
	}
	elapsed := time.Since(start)

	conv, ok := sess.Store.State().Conversation(pending.ConversationID)
	if !ok {
		return NewCommandError("ask", "read reply", "conversation disappeared", nil)
	}
	reply, ok := conv.GetMessageByID(pending.PlaceholderID)
	if !ok {
		return NewCommandError("ask", "read reply", "reply missing", nil)
	}

	if opts.json {
		return writeJSON(a.Stdout, askResult{
			ConversationID: conv.ID,
			Title:          conv.Title,
			Model:          reply.Model,
			Reply:          reply.Content,
			DurationMs:     elapsed.Milliseconds(),
		})
	}

	a.displayReply(reply, !opts.raw && isTerminal(a.Stdout))
	return nil
}

// displayReply prints an assistant reply, through glamour when markdown is
// set.
func (a *App) displayReply(reply model.Message, markdown bool) {
	if markdown {
		if out, err := renderMarkdown(reply.Content, wrapWidth(a.Stdout)); err == nil {
			fmt.Fprint(a.Stdout, out)
			return
		}
	}
	fmt.Fprintln(a.Stdout, reply.Content)
}

// renderMarkdown renders content for a terminal of the given width.
func renderMarkdown(content string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	return r.Render(content)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
