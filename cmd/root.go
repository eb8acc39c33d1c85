package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zhubert/reword/internal/config"
	"github.com/zhubert/reword/internal/credential"
	"github.com/zhubert/reword/internal/logging"
	"github.com/zhubert/reword/internal/provider"
	"github.com/zhubert/reword/internal/rewrite"
	"github.com/zhubert/reword/internal/runner"
	"github.com/zhubert/reword/internal/session"
	"github.com/zhubert/reword/internal/ui"
	"github.com/zhubert/reword/internal/version"
)

var rootFlags struct {
	tone        string
	length      string
	pad         string
	provider    string
	model       string
	baseURL     string
	example     string
	file        string
	copy        bool
	raw         bool
	typingDelay time.Duration
	idleTimeout time.Duration
	interactive bool
}

var rootCmd = &cobra.Command{
	Use:   "reword [text]",
	Short: "Rewrite text in a different tone and length",
	Long: `Rewrite text with a language model, streaming the result as it arrives.

Text comes from the arguments, --file, --example or standard input. With no
input on a terminal, or with -i, reword starts an interactive session.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.RenderError(err))
		os.Exit(1)
	}
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&rootFlags.tone, "tone", "t", "", "tone: casual, neutral or professional")
	f.StringVarP(&rootFlags.length, "length", "l", "", "length: shorter, same or longer")
	f.StringVar(&rootFlags.pad, "pad", "", "pick tone and length from pad coordinates \"x,y\" (0-100)")
	f.StringVar(&rootFlags.provider, "provider", "", "provider: "+strings.Join(provider.Names(), ", "))
	f.StringVar(&rootFlags.model, "model", "", "model name")
	f.StringVar(&rootFlags.baseURL, "base-url", "", "override the provider API base URL")
	f.StringVarP(&rootFlags.example, "example", "e", "", "rewrite a built-in example (number or label)")
	f.StringVarP(&rootFlags.file, "file", "f", "", "read the text from a file")
	f.BoolVar(&rootFlags.copy, "copy", false, "copy the result to the clipboard")
	f.BoolVar(&rootFlags.raw, "raw", false, "plain output with no styling, wrapping or typing effect")
	f.DurationVar(&rootFlags.typingDelay, "typing-delay", 0, "delay between typed characters")
	f.DurationVar(&rootFlags.idleTimeout, "idle-timeout", 0, "longest wait for stream data")
	f.BoolVarP(&rootFlags.interactive, "interactive", "i", false, "start an interactive session")
}

// setupLogging opens ~/.reword/debug.log, falling back to a discarding
// logger so a read-only home never stops a rewrite.
func setupLogging() (*slog.Logger, func()) {
	dir, err := config.Dir()
	if err == nil {
		logger, cleanup, serr := logging.Setup(dir, logging.ParseLevel(os.Getenv("REWORD_LOG_LEVEL")))
		if serr == nil {
			return logger, func() {
				if cerr := cleanup(); cerr != nil {
					fmt.Fprintf(os.Stderr, "closing log file: %v\n", cerr)
				}
			}
		}
		err = serr
	}
	fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
	return logging.Discard(), func() {}
}

// loadConfig layers command-line flags over the file and environment
// configuration.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	workDir, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("getting working directory: %w", err)
	}
	cfg, err := config.Load(workDir)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		name := strings.ToLower(rootFlags.provider)
		if name != cfg.Provider && !flags.Changed("model") {
			cfg.Model = config.DefaultModel(name)
		}
		cfg.Provider = name
	}
	if flags.Changed("model") {
		cfg.Model = rootFlags.model
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = rootFlags.baseURL
	}
	if flags.Changed("typing-delay") {
		cfg.TypingDelay = rootFlags.typingDelay
	}
	if flags.Changed("idle-timeout") {
		cfg.IdleTimeout = rootFlags.idleTimeout
	}
	if rootFlags.raw {
		cfg.Render = false
		cfg.Wrap = false
		cfg.TypingDelay = 0
	}
	return cfg, cfg.Validate()
}

// selection resolves the tone and length flags. Explicit --tone and
// --length win over --pad.
func selection() (rewrite.Tone, rewrite.Length, error) {
	tone, length := rewrite.Neutral, rewrite.Same

	if rootFlags.pad != "" {
		xs, ys, ok := strings.Cut(rootFlags.pad, ",")
		x, xerr := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		y, yerr := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if !ok || xerr != nil || yerr != nil {
			return tone, length, fmt.Errorf("invalid --pad %q, want \"x,y\"", rootFlags.pad)
		}
		tone, length = rewrite.PadSelect(x, y)
	}

	var err error
	if rootFlags.tone != "" {
		if tone, err = rewrite.ParseTone(rootFlags.tone); err != nil {
			return tone, length, err
		}
	}
	if rootFlags.length != "" {
		if length, err = rewrite.ParseLength(rootFlags.length); err != nil {
			return tone, length, err
		}
	}
	return tone, length, nil
}

// inputText gathers the text to rewrite. It reports false when there is
// none and an interactive session should start instead.
func inputText(args []string, stdin *os.File) (string, bool, error) {
	switch {
	case len(args) > 0:
		return strings.Join(args, " "), true, nil
	case rootFlags.file != "":
		data, err := os.ReadFile(rootFlags.file)
		if err != nil {
			return "", false, fmt.Errorf("reading input file: %w", err)
		}
		return string(data), true, nil
	case rootFlags.example != "":
		ex, err := rewrite.LookupExample(rootFlags.example)
		if err != nil {
			return "", false, err
		}
		return ex.Text, true, nil
	case !ui.IsTerminal(stdin):
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", false, fmt.Errorf("reading standard input: %w", err)
		}
		return string(data), true, nil
	default:
		return "", false, nil
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	logger, closeLog := setupLogging()
	defer closeLog()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	tone, length, err := selection()
	if err != nil {
		return err
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	store := credential.NewStore(dir)

	// base_url belongs to the configured provider; others use their defaults.
	newProvider := func(name string) (provider.Provider, error) {
		opts := provider.Options{Logger: logger}
		if name == cfg.Provider {
			opts.BaseURL = cfg.BaseURL
		}
		return provider.New(name, opts)
	}
	p, err := newProvider(cfg.Provider)
	if err != nil {
		return err
	}
	logger.Info("starting reword", "version", version.Version, "provider", cfg.Provider, "model", cfg.Model)

	r := runner.New(runner.Options{
		Config:      cfg,
		Manager:     session.NewManager(p, runner.SessionOptions(cfg, logger)),
		Store:       store,
		Tone:        tone,
		Length:      length,
		Copy:        rootFlags.copy,
		Styled:      cfg.Render && ui.IsTerminal(os.Stdout),
		Width:       ui.Width(os.Stdout),
		Out:         cmd.OutOrStdout(),
		Logger:      logger,
		NewProvider: newProvider,
		HistoryFile: filepath.Join(dir, "history"),
	})

	text, ok, err := inputText(args, os.Stdin)
	if err != nil {
		return err
	}
	if rootFlags.interactive || !ok {
		if ok {
			return errors.New("--interactive cannot be combined with input text")
		}
		return r.Run(cmd.Context())
	}
	return r.Once(cmd.Context(), text)
}
