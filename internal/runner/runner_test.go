package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zhubert/reword/internal/config"
	"github.com/zhubert/reword/internal/credential"
	"github.com/zhubert/reword/internal/provider"
	"github.com/zhubert/reword/internal/rewrite"
	"github.com/zhubert/reword/internal/session"
)

func newTestRunner(t *testing.T, p provider.Provider) (*Runner, *strings.Builder) {
	t.Helper()

	cfg := config.Default()
	cfg.Provider = provider.NameMock
	cfg.Model = config.DefaultModel(provider.NameMock)

	var out strings.Builder
	r := New(Options{
		Config:  cfg,
		Manager: session.NewManager(p, SessionOptions(cfg, nil)),
		Store:   credential.NewStore(t.TempDir()),
		Tone:    rewrite.Neutral,
		Length:  rewrite.Same,
		Out:     &out,
		NewProvider: func(name string) (provider.Provider, error) {
			return provider.New(name, provider.Options{})
		},
	})
	r.copyText = func(string) error { return nil }
	return r, &out
}

func TestOnceStreamsRewrite(t *testing.T) {
	t.Parallel()

	mock := &provider.Mock{Deltas: []string{"Dear", " Team,", " hello."}}
	r, out := newTestRunner(t, mock)

	if err := r.Once(context.Background(), "hi team"); err != nil {
		t.Fatalf("Once() error: %v", err)
	}
	if out.String() != "Dear Team, hello.\n" {
		t.Errorf("output = %q", out.String())
	}
	if r.last != "Dear Team, hello." {
		t.Errorf("last = %q", r.last)
	}

	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	if calls[0].Prompt.User != "hi team" || calls[0].Credential != "mock" {
		t.Errorf("unexpected call: %+v", calls[0])
	}
}

func TestOnceReturnsProviderError(t *testing.T) {
	t.Parallel()

	mock := &provider.Mock{OpenErr: &provider.RequestError{Provider: "mock", StatusCode: 401, Message: "bad key"}}
	r, _ := newTestRunner(t, mock)

	err := r.Once(context.Background(), "hi")
	var rerr *provider.RequestError
	if !errors.As(err, &rerr) || rerr.StatusCode != 401 {
		t.Errorf("Once() = %v, want RequestError 401", err)
	}
	if r.last != "" {
		t.Errorf("failed rewrite should not set last output, got %q", r.last)
	}
}

func TestOnceValidation(t *testing.T) {
	t.Parallel()

	mock := &provider.Mock{}
	r, _ := newTestRunner(t, mock)

	var verr *rewrite.ValidationError
	if err := r.Once(context.Background(), "   "); !errors.As(err, &verr) {
		t.Errorf("Once() = %v, want ValidationError", err)
	}
	if len(mock.Calls()) != 0 {
		t.Error("invalid input must not reach the provider")
	}
}

func TestMissingCredential(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	r, _ := newTestRunner(t, &provider.Mock{})
	r.cfg.Provider = provider.NameOpenAI

	if err := r.Once(context.Background(), "hi"); !errors.Is(err, credential.ErrNotFound) {
		t.Errorf("Once() = %v, want ErrNotFound", err)
	}
}

func TestCopy(t *testing.T) {
	t.Parallel()

	r, out := newTestRunner(t, &provider.Mock{Deltas: []string{"copied"}})
	var got string
	r.copyText = func(s string) error {
		got = s
		return nil
	}
	r.copy = true

	if err := r.Once(context.Background(), "text"); err != nil {
		t.Fatal(err)
	}
	if got != "copied" {
		t.Errorf("clipboard got %q", got)
	}
	if !strings.Contains(out.String(), "Copied to clipboard.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestCopyFailure(t *testing.T) {
	t.Parallel()

	r, out := newTestRunner(t, &provider.Mock{})
	r.last = "something"
	r.copyText = func(string) error { return errors.New("no clipboard utility") }

	r.handleSlashCommand(context.Background(), "/copy")
	if !strings.Contains(out.String(), "no clipboard utility") {
		t.Errorf("output = %q", out.String())
	}
}

func TestToneCommandRerunsLastText(t *testing.T) {
	t.Parallel()

	mock := &provider.Mock{Deltas: []string{"ok"}}
	r, _ := newTestRunner(t, mock)
	ctx := context.Background()

	if err := r.Once(ctx, "source text"); err != nil {
		t.Fatal(err)
	}
	r.handleSlashCommand(ctx, "/tone casual")
	r.handleSlashCommand(ctx, "/length LONGER")

	if r.tone != rewrite.Casual || r.length != rewrite.Longer {
		t.Errorf("selection = %v/%v", r.tone, r.length)
	}
	calls := mock.Calls()
	if len(calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(calls))
	}
	last := calls[2]
	if last.Tone != rewrite.Casual || last.Length != rewrite.Longer || last.Prompt.User != "source text" {
		t.Errorf("rerun call = %+v", last)
	}
}

func TestToneCommandRejectsUnknown(t *testing.T) {
	t.Parallel()

	mock := &provider.Mock{}
	r, out := newTestRunner(t, mock)

	r.handleSlashCommand(context.Background(), "/tone sarcastic")
	if r.tone != rewrite.Neutral {
		t.Errorf("tone changed to %v", r.tone)
	}
	if !strings.Contains(out.String(), "sarcastic") {
		t.Errorf("output = %q", out.String())
	}
	if len(mock.Calls()) != 0 {
		t.Error("no rewrite should start")
	}
}

func TestPadCommand(t *testing.T) {
	t.Parallel()

	r, out := newTestRunner(t, &provider.Mock{})
	ctx := context.Background()

	r.handleSlashCommand(ctx, "/pad 90 10")
	if r.tone != rewrite.Professional || r.length != rewrite.Longer {
		t.Errorf("selection = %v/%v", r.tone, r.length)
	}

	r.handleSlashCommand(ctx, "/pad left top")
	if !strings.Contains(out.String(), "must be numbers") {
		t.Errorf("output = %q", out.String())
	}
}

func TestExampleCommand(t *testing.T) {
	t.Parallel()

	mock := &provider.Mock{Deltas: []string{"done"}}
	r, out := newTestRunner(t, mock)
	ctx := context.Background()

	r.handleSlashCommand(ctx, "/example")
	if !strings.Contains(out.String(), "Short Announcement") {
		t.Errorf("listing missing example: %q", out.String())
	}

	r.handleSlashCommand(ctx, "/example 3")
	calls := mock.Calls()
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	want := rewrite.Examples()[2].Text
	if calls[0].Prompt.User != want {
		t.Errorf("rewrote %q", calls[0].Prompt.User)
	}
	if r.source != want {
		t.Error("example should become the current source")
	}
}

func TestKeyCommand(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	r, out := newTestRunner(t, &provider.Mock{})
	r.cfg.Provider = provider.NameOpenAI

	r.handleSlashCommand(context.Background(), "/key sk-test-9876")
	if r.credential != "sk-test-9876" {
		t.Errorf("credential = %q", r.credential)
	}
	key, src, err := r.store.Resolve(provider.NameOpenAI)
	if err != nil || key != "sk-test-9876" || src != credential.SourceFile {
		t.Errorf("stored key = %q, %q, %v", key, src, err)
	}

	out.Reset()
	r.handleSlashCommand(context.Background(), "/key")
	if !strings.Contains(out.String(), "9876") || strings.Contains(out.String(), "sk-test") {
		t.Errorf("key should be masked: %q", out.String())
	}
}

func TestProviderCommand(t *testing.T) {
	t.Parallel()

	r, out := newTestRunner(t, &provider.Mock{})

	r.handleSlashCommand(context.Background(), "/provider anthropic")
	if r.cfg.Provider != provider.NameAnthropic || r.cfg.Model != config.DefaultModel(provider.NameAnthropic) {
		t.Errorf("cfg = %+v", r.cfg)
	}
	if r.manager.Provider().Name() != provider.NameAnthropic {
		t.Errorf("manager provider = %s", r.manager.Provider().Name())
	}

	r.handleSlashCommand(context.Background(), "/provider bard")
	if !strings.Contains(out.String(), "unknown provider") {
		t.Errorf("output = %q", out.String())
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()

	r, out := newTestRunner(t, &provider.Mock{})
	r.handleSlashCommand(context.Background(), "/frobnicate")
	if !strings.Contains(out.String(), "Unknown command: /frobnicate") {
		t.Errorf("output = %q", out.String())
	}
}

func TestExamplesMarkdown(t *testing.T) {
	t.Parallel()

	md := ExamplesMarkdown()
	for i, ex := range rewrite.Examples() {
		if !strings.Contains(md, ex.Label) {
			t.Errorf("missing example %d %q", i+1, ex.Label)
		}
	}
	if strings.Count(md, "\n") < len(rewrite.Examples()) {
		t.Error("expected one line per example")
	}
}
