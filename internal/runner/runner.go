package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/chzyer/readline"

	"github.com/zhubert/reword/internal/config"
	"github.com/zhubert/reword/internal/credential"
	"github.com/zhubert/reword/internal/provider"
	"github.com/zhubert/reword/internal/rewrite"
	"github.com/zhubert/reword/internal/session"
	"github.com/zhubert/reword/internal/typing"
	"github.com/zhubert/reword/internal/ui"
	"github.com/zhubert/reword/internal/version"
)

// Options configures a Runner.
type Options struct {
	Config  config.Config
	Manager *session.Manager
	Store   *credential.Store
	Tone    rewrite.Tone
	Length  rewrite.Length
	// Copy puts each finished rewrite on the clipboard.
	Copy bool
	// Styled enables colors, the spinner and markdown rendering.
	Styled bool
	Width  int
	Out    io.Writer
	Logger *slog.Logger
	// NewProvider builds a provider by name for /provider.
	NewProvider func(name string) (provider.Provider, error)
	HistoryFile string
}

// Runner handles the stdin/stdout rewrite loop.
type Runner struct {
	cfg         config.Config
	manager     *session.Manager
	store       *credential.Store
	credential  string
	tone        rewrite.Tone
	length      rewrite.Length
	copy        bool
	styled      bool
	width       int
	out         io.Writer
	logger      *slog.Logger
	newProvider func(string) (provider.Provider, error)
	historyFile string

	source    string
	last      string
	copyText  func(string) error
	interrupt chan os.Signal
}

// New creates a new Runner.
func New(opts Options) *Runner {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	width := opts.Width
	if width <= 0 {
		width = ui.DefaultWidth
	}
	return &Runner{
		cfg:         opts.Config,
		manager:     opts.Manager,
		store:       opts.Store,
		tone:        opts.Tone,
		length:      opts.Length,
		copy:        opts.Copy,
		styled:      opts.Styled,
		width:       width,
		out:         out,
		logger:      logger,
		newProvider: opts.NewProvider,
		historyFile: opts.HistoryFile,
		copyText:    clipboard.WriteAll,
	}
}

// Once rewrites a single text and returns.
func (r *Runner) Once(ctx context.Context, text string) error {
	stop := r.watchInterrupts()
	defer stop()

	r.source = text
	return r.rewrite(ctx, text)
}

// Run starts the interactive loop.
func (r *Runner) Run(ctx context.Context) error {
	r.printWelcome()

	stop := r.watchInterrupts()
	defer stop()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          ui.HeaderStyle.Render("> "),
		HistoryFile:     r.historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("initializing readline: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue // Ctrl+C clears line, continue prompting
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out, "Goodbye.")
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		lower := strings.ToLower(input)
		if lower == "exit" || lower == "quit" {
			fmt.Fprintln(r.out, "Goodbye.")
			return nil
		}

		if strings.HasPrefix(input, "/") {
			r.handleSlashCommand(ctx, input)
			continue
		}

		r.source = input
		r.report(r.rewrite(ctx, input))
	}
}

// watchInterrupts routes SIGINT to the runner while a rewrite streams.
// Readline handles Ctrl+C itself while it owns the terminal.
func (r *Runner) watchInterrupts() func() {
	r.interrupt = make(chan os.Signal, 1)
	signal.Notify(r.interrupt, os.Interrupt, syscall.SIGTERM)
	return func() {
		signal.Stop(r.interrupt)
	}
}

func (r *Runner) report(err error) {
	if err != nil {
		fmt.Fprintln(r.out, r.errorText(err))
	}
}

func (r *Runner) errorText(err error) string {
	if r.styled {
		return ui.RenderError(err)
	}
	return "Error: " + ui.ErrorMessage(err)
}

// resolveCredential returns the key for the current provider.
func (r *Runner) resolveCredential() (string, error) {
	if r.credential != "" {
		return r.credential, nil
	}
	if r.store == nil {
		return "", fmt.Errorf("%s: %w", r.cfg.Provider, credential.ErrNotFound)
	}
	key, _, err := r.store.Resolve(r.cfg.Provider)
	return key, err
}

// rewrite starts a session for text and types its snapshots as they
// arrive. Starting a rewrite supersedes any session still running.
func (r *Runner) rewrite(parent context.Context, text string) error {
	key, err := r.resolveCredential()
	if err != nil {
		return err
	}

	req := rewrite.Request{SourceText: text, Tone: r.tone, Length: r.length, Credential: key}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sess, seq, err := r.manager.Start(ctx, req)
	if err != nil {
		return err
	}
	r.logger.Debug("rewrite requested", "session", sess.ID(), "tone", r.tone.String(), "length", r.length.String())

	// Drop an interrupt that arrived while no rewrite was running.
	select {
	case <-r.interrupt:
	default:
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-r.interrupt:
			r.manager.Cancel()
			cancel()
		case <-done:
		}
	}()

	if r.styled {
		fmt.Fprintln(r.out, ui.DimStyle.Render(rewrite.SelectionLabel(r.tone, r.length)))
	}

	var spinner *ui.Spinner
	if r.styled {
		spinner = ui.StartSpinner(r.out, "Rewriting")
	}
	stopSpinner := func() {
		if spinner != nil {
			spinner.Stop()
			spinner = nil
		}
	}
	defer stopSpinner()

	wrap := 0
	if r.cfg.Wrap {
		wrap = r.width
	}
	tw := typing.New(r.out, r.cfg.TypingDelay, wrap)

	for snapshot, err := range seq {
		stopSpinner()
		if err != nil {
			if ferr := tw.Flush(); ferr != nil {
				r.logger.Debug("flushing output", "error", ferr)
			}
			return err
		}
		if err := tw.Show(ctx, snapshot); err != nil {
			// Typing was interrupted; leaving the loop cancels the session.
			break
		}
	}
	stopSpinner()

	if sess.State() == session.Cancelled {
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		fmt.Fprintln(r.out, ui.WarnStyle.Render("[Cancelled]"))
		return nil
	}

	if err := tw.Finish(ctx); err != nil {
		if ferr := tw.Flush(); ferr != nil {
			return fmt.Errorf("writing output: %w", ferr)
		}
	}

	r.last = sess.Output()
	if r.copy {
		r.copyLast()
	}
	return nil
}

func (r *Runner) copyLast() {
	if r.last == "" {
		fmt.Fprintln(r.out, "Nothing to copy yet.")
		return
	}
	if err := r.copyText(r.last); err != nil {
		r.logger.Warn("copying to clipboard", "error", err)
		fmt.Fprintln(r.out, ui.ErrorStyle.Render("Could not copy to clipboard: "+err.Error()))
		return
	}
	fmt.Fprintln(r.out, ui.SuccessStyle.Render("Copied to clipboard."))
}

func (r *Runner) handleSlashCommand(ctx context.Context, input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/tone", "/t":
		r.handleToneCommand(ctx, args)
	case "/length", "/l":
		r.handleLengthCommand(ctx, args)
	case "/pad":
		r.handlePadCommand(ctx, args)
	case "/example", "/ex", "/e":
		r.handleExampleCommand(ctx, args)
	case "/key", "/k":
		r.handleKeyCommand(args)
	case "/provider":
		r.handleProviderCommand(args)
	case "/copy", "/c":
		r.copyLast()
	case "/show", "/s":
		r.showSelection()
	case "/help", "/h", "/?":
		r.handleHelpCommand()
	default:
		fmt.Fprintf(r.out, "Unknown command: %s. Type /help for available commands.\n", cmd)
	}
}

func (r *Runner) handleHelpCommand() {
	help := `Available commands:

- **/tone, /t** <casual|neutral|professional> - Change the tone
- **/length, /l** <shorter|same|longer> - Change the length
- **/pad** <x> <y> - Pick both from pad coordinates (0-100, y=0 is Professional)
- **/example, /e** [number] - List examples, or rewrite one
- **/key, /k** [api-key] - Show or save the API key for the current provider
- **/provider** [name] - Show or switch the provider
- **/copy, /c** - Copy the last rewrite to the clipboard
- **/show, /s** - Show the current selection
- **/help, /h, /?** - Show this help message

Type any other text to rewrite it. Changing the tone or length rewrites the last text again. Press Ctrl+C to stop a rewrite, and type exit or quit to leave.
`
	fmt.Fprint(r.out, ui.RenderMarkdown(help, r.width, r.styled))
}

// rerun rewrites the last source text after a selection change.
func (r *Runner) rerun(ctx context.Context) {
	if r.source == "" {
		return
	}
	r.report(r.rewrite(ctx, r.source))
}

func (r *Runner) handleToneCommand(ctx context.Context, args []string) {
	if len(args) == 0 {
		r.showSelection()
		return
	}
	tone, err := rewrite.ParseTone(args[0])
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	r.tone = tone
	r.printSelection()
	r.rerun(ctx)
}

func (r *Runner) handleLengthCommand(ctx context.Context, args []string) {
	if len(args) == 0 {
		r.showSelection()
		return
	}
	length, err := rewrite.ParseLength(args[0])
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	r.length = length
	r.printSelection()
	r.rerun(ctx)
}

func (r *Runner) handlePadCommand(ctx context.Context, args []string) {
	if len(args) == 0 {
		x, y := rewrite.PadPosition(r.tone, r.length)
		fmt.Fprintf(r.out, "Pad position: %.1f %.1f\n", x, y)
		fmt.Fprintln(r.out, ui.RenderPad(r.tone, r.length))
		return
	}
	if len(args) != 2 {
		fmt.Fprintln(r.out, "Usage: /pad <x> <y>")
		return
	}
	x, xerr := strconv.ParseFloat(args[0], 64)
	y, yerr := strconv.ParseFloat(args[1], 64)
	if xerr != nil || yerr != nil {
		fmt.Fprintln(r.out, "Pad coordinates must be numbers between 0 and 100.")
		return
	}

	tone, length := rewrite.PadSelect(x, y)
	if tone == r.tone && length == r.length {
		fmt.Fprintln(r.out, ui.RenderPad(r.tone, r.length))
		return
	}
	r.tone, r.length = tone, length
	fmt.Fprintln(r.out, ui.RenderPad(r.tone, r.length))
	r.rerun(ctx)
}

func (r *Runner) handleExampleCommand(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprint(r.out, ui.RenderMarkdown(ExamplesMarkdown(), r.width, r.styled))
		return
	}
	ex, err := rewrite.LookupExample(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}
	fmt.Fprintln(r.out, ui.DimStyle.Render(ex.Text))
	fmt.Fprintln(r.out)
	r.source = ex.Text
	r.report(r.rewrite(ctx, ex.Text))
}

// ExamplesMarkdown lists the canned examples as a markdown list.
func ExamplesMarkdown() string {
	var b strings.Builder
	b.WriteString("Examples:\n\n")
	for i, ex := range rewrite.Examples() {
		first, _, _ := strings.Cut(ex.Text, "\n")
		fmt.Fprintf(&b, "%d. **%s** - %s\n", i+1, ex.Label, first)
	}
	return b.String()
}

func (r *Runner) handleKeyCommand(args []string) {
	if len(args) == 0 {
		key, err := r.resolveCredential()
		if err != nil {
			fmt.Fprintln(r.out, r.errorText(err))
			return
		}
		fmt.Fprintf(r.out, "%s key: %s\n", r.cfg.Provider, credential.Mask(key))
		return
	}

	key := args[0]
	r.credential = key
	if r.store == nil {
		fmt.Fprintln(r.out, "Key set for this run.")
		return
	}
	if err := r.store.Set(r.cfg.Provider, key); err != nil {
		r.logger.Warn("saving credential", "error", err)
		fmt.Fprintln(r.out, ui.ErrorStyle.Render("Key set for this run but not saved: "+err.Error()))
		return
	}
	fmt.Fprintf(r.out, "Saved %s key to %s\n", r.cfg.Provider, r.store.Path())
}

func (r *Runner) handleProviderCommand(args []string) {
	if len(args) == 0 {
		fmt.Fprintf(r.out, "Current provider: %s (%s)\n", r.cfg.Provider, r.cfg.Model)
		fmt.Fprintf(r.out, "Available: %s\n", strings.Join(provider.Names(), ", "))
		return
	}
	if r.newProvider == nil {
		fmt.Fprintln(r.out, "Switching providers is not available.")
		return
	}

	name := strings.ToLower(args[0])
	p, err := r.newProvider(name)
	if err != nil {
		fmt.Fprintln(r.out, err)
		return
	}

	r.manager.Cancel()
	r.manager.SetProvider(p)
	if name != r.cfg.Provider {
		r.cfg.Model = config.DefaultModel(name)
		r.credential = ""
	}
	r.cfg.Provider = name
	r.manager.SetOptions(SessionOptions(r.cfg, r.logger))
	fmt.Fprintf(r.out, "Switched to %s (%s)\n", r.cfg.Provider, r.cfg.Model)
}

// SessionOptions maps configuration onto session options.
func SessionOptions(cfg config.Config, logger *slog.Logger) session.Options {
	return session.Options{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		IdleTimeout: cfg.IdleTimeout,
		Logger:      logger,
	}
}

func (r *Runner) printSelection() {
	fmt.Fprintln(r.out, ui.HeaderStyle.Render(rewrite.SelectionLabel(r.tone, r.length)))
}

func (r *Runner) showSelection() {
	fmt.Fprintln(r.out, ui.RenderPad(r.tone, r.length))
	tone := rewrite.ToneDescription(r.tone)
	length := rewrite.LengthDescription(r.length)
	fmt.Fprintln(r.out, ui.DimStyle.Render(fmt.Sprintf("%s %s", tone.Emoji, tone.Text)))
	fmt.Fprintln(r.out, ui.DimStyle.Render(fmt.Sprintf("%s %s", length.Emoji, length.Text)))
	fmt.Fprintf(r.out, "Provider: %s (%s)\n", r.cfg.Provider, r.cfg.Model)
}

func (r *Runner) printWelcome() {
	fmt.Fprintf(r.out, "%s %s\n", ui.HeaderStyle.Render("reword"), ui.DimStyle.Render(version.Version))
	fmt.Fprintf(r.out, "%s\n", ui.DimStyle.Render(fmt.Sprintf("%s · %s · %s", r.cfg.Provider, r.cfg.Model, rewrite.SelectionLabel(r.tone, r.length))))
	fmt.Fprintln(r.out, ui.DimStyle.Render("Type text to rewrite it, /help for commands, exit to quit."))
	fmt.Fprintln(r.out)
}
