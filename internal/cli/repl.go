// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/chatshell/internal/chat"
	"github.com/jeranaias/chatshell/internal/config"
	"github.com/jeranaias/chatshell/internal/export"
	"github.com/jeranaias/chatshell/internal/model"
	"github.com/jeranaias/chatshell/internal/util"
)

// historyFileName is the repl input history inside the config directory.
const historyFileName = "repl_history"

// listPreviewRunes bounds the last-message preview in /list.
const listPreviewRunes = 40

// =============================================================================
// INPUT
// =============================================================================

// lineReader reads one line of user input.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(line string)
	Close() error
}

// linerReader provides line editing and persistent history on a terminal.
type linerReader struct {
	line        *liner.State
	historyFile string
}

func newLinerReader() *linerReader {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	r := &linerReader{line: line}
	if dir, err := config.ConfigDir(); err == nil {
		r.historyFile = filepath.Join(dir, historyFileName)
		if f, err := os.Open(r.historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}
	return r
}

func (r *linerReader) Prompt(prompt string) (string, error) {
	return r.line.Prompt(prompt)
}

func (r *linerReader) AppendHistory(s string) {
	r.line.AppendHistory(s)
}

// Close saves history and restores the terminal.
func (r *linerReader) Close() error {
	if r.historyFile != "" {
		if err := config.EnsureConfigDir(); err == nil {
			if f, err := os.Create(r.historyFile); err == nil {
				_, _ = r.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return r.line.Close()
}

// scanReader reads plain lines, for piped input.
type scanReader struct {
	scanner *bufio.Scanner
}

func newScanReader(r io.Reader) *scanReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &scanReader{scanner: s}
}

func (r *scanReader) Prompt(string) (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error { return nil }

// =============================================================================
// COMMAND
// =============================================================================

func newREPLCommand(app *App) *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Chat line by line with input history",
		Long: `Chat line by line. Type a message and press Enter to send it.

Commands:
  /help             Show commands
  /new              Start a new conversation
  /list             List conversations
  /open N           Switch to conversation N from /list
  /model [name]     Show or switch the model
  /rename TITLE     Rename the current conversation
  /pin              Pin or unpin the current conversation
  /delete           Delete the current conversation
  /history          Show the current conversation
  /export [md|json] Export the current conversation
  /stats            Show reply counts per model
  /quit             Exit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runREPL(cmd.Context(), modelName)
		},
	}
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Model to start with (default from config)")
	return cmd
}

func (a *App) runREPL(ctx context.Context, modelName string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	sess, err := a.newSession(modelName)
	if err != nil {
		return err
	}
	defer sess.Close()

	var in lineReader
	if f, ok := a.Stdin.(*os.File); ok && f == os.Stdin && IsStdinTTY() {
		in = newLinerReader()
	} else {
		in = newScanReader(a.Stdin)
	}
	defer in.Close()

	r := &repl{
		app:      a,
		ctx:      ctx,
		sess:     sess,
		in:       in,
		out:      a.Stdout,
		markdown: a.cfg.UI.RenderMarkdown && isTerminal(a.Stdout),
	}
	return r.run()
}

// =============================================================================
// REPL LOOP
// =============================================================================

type repl struct {
	app      *App
	ctx      context.Context
	sess     *Session
	in       lineReader
	out      io.Writer
	markdown bool
}

func (r *repl) state() chat.State {
	return r.sess.Store.State()
}

func (r *repl) run() error {
	st := r.state()
	fmt.Fprintln(r.out, TitleStyle.Render("chatshell"))
	fmt.Fprintf(r.out, "Currently using %s. Type /help for commands.\n\n", st.CurrentModel)

	for {
		if r.ctx.Err() != nil {
			return nil
		}

		line, err := r.in.Prompt(r.prompt())
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.in.AppendHistory(line)

		if strings.HasPrefix(line, "/") {
			quit, err := r.command(line)
			if err != nil {
				fmt.Fprintln(r.out, ErrorStyle.Render("Error:"), err)
			}
			if quit {
				return nil
			}
			continue
		}

		r.send(line)
	}
}

func (r *repl) prompt() string {
	return r.state().CurrentModel + "> "
}

// send submits line and prints the reply or the error text that replaced
// the placeholder.
func (r *repl) send(line string) {
	pending := r.sess.Controller.SendMessage(line)
	if err := pending.Wait(r.ctx); err != nil {
		r.app.logger.Debug("repl reply failed", zap.Error(err))
	}

	conv, ok := r.state().Conversation(pending.ConversationID)
	if !ok {
		return
	}
	reply, ok := conv.GetMessageByID(pending.PlaceholderID)
	if !ok {
		if err := pending.Err(); err != nil {
			fmt.Fprintln(r.out, ErrorStyle.Render("Error:"), err)
		}
		return
	}
	r.printMessage(reply)
}

func (r *repl) printMessage(msg model.Message) {
	switch {
	case msg.Role == model.RoleUser:
		fmt.Fprintf(r.out, "%s %s\n", PromptStyle.Render("You:"), msg.Content)
	case msg.IsLoading:
		fmt.Fprintf(r.out, "%s %s\n", AssistantStyle.Render(msg.Model+":"), DimStyle.Render("waiting for reply..."))
	case msg.IsError:
		fmt.Fprintln(r.out, ErrorStyle.Render(msg.Content))
	default:
		fmt.Fprintln(r.out, AssistantStyle.Render(msg.Model+":"))
		r.app.displayReply(msg, r.markdown)
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

// command runs a slash command. It reports whether the repl should exit.
func (r *repl) command(line string) (bool, error) {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))
	ctrl := r.sess.Controller

	switch name {
	case "/quit", "/q", "/exit":
		return true, nil

	case "/help", "/h", "/?":
		r.printHelp()

	case "/new", "/n":
		conv := ctrl.StartNewConversation()
		fmt.Fprintln(r.out, SuccessStyle.Render("Started "+conv.Title))

	case "/list", "/l":
		r.printList()

	case "/open", "/o":
		conv, err := r.byIndex(rest)
		if err != nil {
			return false, err
		}
		if err := ctrl.SelectConversation(conv.ID); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("Switched to "+conv.Title))

	case "/model", "/m":
		if rest == "" {
			st := r.state()
			fmt.Fprintf(r.out, "Current model: %s\nAvailable: %s\n", st.CurrentModel, strings.Join(st.AvailableModels, ", "))
			return false, nil
		}
		if err := ctrl.SelectModel(rest); err != nil {
			return false, fmt.Errorf("%w: %s", err, rest)
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("Model: "+rest))

	case "/rename":
		conv, err := r.current()
		if err != nil {
			return false, err
		}
		if rest == "" {
			return false, &UsageError{Message: "usage: /rename TITLE"}
		}
		return false, ctrl.RenameConversation(conv.ID, rest)

	case "/pin":
		conv, err := r.current()
		if err != nil {
			return false, err
		}
		return false, ctrl.TogglePin(conv.ID)

	case "/delete":
		conv, err := r.current()
		if err != nil {
			return false, err
		}
		if err := ctrl.DeleteConversation(conv.ID); err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, SuccessStyle.Render("Deleted "+conv.Title))

	case "/history":
		conv, err := r.current()
		if err != nil {
			return false, err
		}
		fmt.Fprintln(r.out, SectionStyle.Render(conv.Title))
		for _, msg := range conv.Messages {
			r.printMessage(msg)
		}

	case "/export":
		return false, r.export(rest)

	case "/stats":
		fmt.Fprintln(r.out, r.sess.Usage.Snapshot().Summary())

	default:
		return false, &UsageError{Message: fmt.Sprintf("unknown command %s (try /help)", fields[0])}
	}
	return false, nil
}

func (r *repl) current() (model.Conversation, error) {
	conv, ok := r.state().Current()
	if !ok {
		return model.Conversation{}, chat.ErrConversationNotFound
	}
	return conv, nil
}

// listed returns the conversations in sidebar order: pinned first.
func (r *repl) listed() []model.Conversation {
	st := r.state()
	return append(chat.SidebarList(st, true, ""), chat.SidebarList(st, false, "")...)
}

func (r *repl) byIndex(arg string) (model.Conversation, error) {
	n, err := strconv.Atoi(arg)
	list := r.listed()
	if err != nil || n < 1 || n > len(list) {
		return model.Conversation{}, &UsageError{Message: fmt.Sprintf("usage: /open N with N between 1 and %d", len(list))}
	}
	return list[n-1], nil
}

func (r *repl) printList() {
	st := r.state()
	list := r.listed()
	if len(list) == 0 {
		fmt.Fprintln(r.out, DimStyle.Render(chat.EmptyListHint(false, "")))
		return
	}
	for i, c := range list {
		marker := " "
		if c.ID == st.CurrentConversationID {
			marker = "*"
		}
		pin := ""
		if c.Pinned {
			pin = " [P]"
		}
		line := fmt.Sprintf("%s %2d. %s%s %s", marker, i+1,
			util.TruncateWidth(c.Title, 40), pin,
			DimStyle.Render(fmt.Sprintf("(%d messages)", c.MessageCount())))
		if last, ok := c.GetLastMessage(); ok && !last.IsLoading {
			line += " " + DimStyle.Render(strings.Join(strings.Fields(last.Preview(listPreviewRunes)), " "))
		}
		fmt.Fprintln(r.out, line)
	}
}

func (r *repl) export(format string) error {
	conv, err := r.current()
	if err != nil {
		return err
	}
	if format == "" {
		format = "md"
	}
	opts := export.DefaultOptions()
	if dir := r.app.cfg.UI.ExportDir; dir != "" {
		opts.OutputDir = dir
	}
	path, err := export.ExportConversation(conv, format, opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(r.out, SuccessStyle.Render("Exported to "+path))
	return nil
}

func (r *repl) printHelp() {
	cmds := [][2]string{
		{"/new", "Start a new conversation"},
		{"/list", "List conversations"},
		{"/open N", "Switch to conversation N"},
		{"/model [name]", "Show or switch the model"},
		{"/rename TITLE", "Rename the current conversation"},
		{"/pin", "Pin or unpin the current conversation"},
		{"/delete", "Delete the current conversation"},
		{"/history", "Show the current conversation"},
		{"/export [md|json]", "Export the current conversation"},
		{"/stats", "Show reply counts per model"},
		{"/quit", "Exit"},
	}
	fmt.Fprintln(r.out, SectionStyle.Render("Commands"))
	for _, c := range cmds {
		fmt.Fprintf(r.out, "  %s %s\n", LabelStyle.Render(c[0]), c[1])
	}
}
