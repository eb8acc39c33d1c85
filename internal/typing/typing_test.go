package typing

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestShowWritesOnlySuffix(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	tw := New(&out, 0, 0)
	ctx := context.Background()

	for _, snap := range []string{"Dear", "Dear Team", "Dear Team,", "Dear Team, hello."} {
		if err := tw.Show(ctx, snap); err != nil {
			t.Fatalf("Show(%q) error: %v", snap, err)
		}
		if out.String() != snap {
			t.Fatalf("after %q output = %q", snap, out.String())
		}
	}
	if err := tw.Finish(ctx); err != nil {
		t.Fatalf("Finish() error: %v", err)
	}
	if out.String() != "Dear Team, hello.\n" {
		t.Errorf("final output = %q", out.String())
	}
}

func TestShowRejectsDivergedSnapshot(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	tw := New(&out, 0, 0)
	ctx := context.Background()

	if err := tw.Show(ctx, "Hello there"); err != nil {
		t.Fatal(err)
	}
	if err := tw.Show(ctx, "Goodbye"); !errors.Is(err, ErrDiverged) {
		t.Errorf("Show() = %v, want ErrDiverged", err)
	}

	tw.Reset()
	out.Reset()
	if err := tw.Show(ctx, "Goodbye"); err != nil {
		t.Errorf("after Reset, Show() = %v", err)
	}
	if out.String() != "Goodbye" {
		t.Errorf("output = %q", out.String())
	}
}

func TestWordWrapAcrossDeltas(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	tw := New(&out, 0, 10)
	ctx := context.Background()

	full := "The quick brown fox jumps"
	// Feed in awkward pieces that split words.
	for _, end := range []int{2, 7, 12, 13, 20, len(full)} {
		if err := tw.Show(ctx, full[:end]); err != nil {
			t.Fatalf("Show() error: %v", err)
		}
	}
	if strings.Contains(out.String(), "jumps") {
		t.Errorf("last word should be held until Finish, got %q", out.String())
	}
	if err := tw.Finish(ctx); err != nil {
		t.Fatal(err)
	}

	want := "The quick\nbrown fox\njumps\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
	if tw.Text() != full {
		t.Errorf("Text() = %q", tw.Text())
	}
}

func TestTypingDelayPerRune(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	tw := New(&out, time.Millisecond, 0)
	var sleeps int
	tw.sleep = func(context.Context, time.Duration) error {
		sleeps++
		return nil
	}

	if err := tw.Show(context.Background(), "héllo"); err != nil {
		t.Fatal(err)
	}
	if sleeps != 5 {
		t.Errorf("sleeps = %d, want one per rune (5)", sleeps)
	}
	if out.String() != "héllo" {
		t.Errorf("output = %q", out.String())
	}
}

func TestCancelledTypingResumes(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	tw := New(&out, time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())

	var sleeps int
	tw.sleep = func(ctx context.Context, _ time.Duration) error {
		sleeps++
		if sleeps == 3 {
			cancel()
		}
		return ctx.Err()
	}

	err := tw.Show(ctx, "abcdef")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Show() = %v, want context.Canceled", err)
	}
	if out.String() != "abc" {
		t.Errorf("partial output = %q", out.String())
	}

	if err := tw.Flush(); err != nil {
		t.Fatal(err)
	}
	if out.String() != "abcdef\n" {
		t.Errorf("flushed output = %q", out.String())
	}
}

func TestFinishEmpty(t *testing.T) {
	t.Parallel()

	var out strings.Builder
	tw := New(&out, 0, 40)
	if err := tw.Finish(context.Background()); err != nil {
		t.Fatal(err)
	}
	if out.String() != "" {
		t.Errorf("output = %q, want nothing", out.String())
	}
}
