// Package typing prints streamed snapshots with a typewriter effect.
//
// Snapshots are cumulative: each one extends the previous. Only the new
// suffix is written, so the terminal never has to redraw earlier text.
package typing

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/muesli/reflow/wordwrap"
)

// ErrDiverged means a snapshot did not extend the text already shown.
var ErrDiverged = errors.New("snapshot does not extend previous text")

// Typewriter writes snapshots one rune at a time.
type Typewriter struct {
	out   io.Writer
	delay time.Duration
	width int

	wrap   *wordwrap.WordWrap
	source string
	shown  int
	closed bool

	sleep func(context.Context, time.Duration) error
}

// New creates a typewriter. A zero delay writes each suffix at once and a
// width of zero or less disables word wrapping.
func New(out io.Writer, delay time.Duration, width int) *Typewriter {
	t := &Typewriter{out: out, delay: delay, width: width, sleep: sleepCtx}
	t.Reset()
	return t
}

// Reset forgets all shown text so a new rewrite can start.
func (t *Typewriter) Reset() {
	t.source = ""
	t.shown = 0
	t.closed = false
	t.wrap = nil
	if t.width > 0 {
		t.wrap = wordwrap.NewWriter(t.width)
	}
}

// Text returns the snapshot text consumed so far.
func (t *Typewriter) Text() string {
	return t.source
}

// Show types the part of snapshot not yet written. It returns ctx.Err()
// if the context ends mid-way; the remainder is written by the next call.
func (t *Typewriter) Show(ctx context.Context, snapshot string) error {
	if !strings.HasPrefix(snapshot, t.source) {
		return ErrDiverged
	}
	delta := snapshot[len(t.source):]
	t.source = snapshot
	if t.wrap != nil && delta != "" {
		// WordWrap.Write never fails.
		_, _ = t.wrap.Write([]byte(delta))
	}
	return t.emit(ctx, t.delay)
}

// Finish types the held-back last word and ends the line.
func (t *Typewriter) Finish(ctx context.Context) error {
	t.close()
	if err := t.emit(ctx, t.delay); err != nil {
		return err
	}
	return t.newline()
}

// Flush writes everything pending immediately and ends the line. It is
// used when typing is interrupted.
func (t *Typewriter) Flush() error {
	t.close()
	if err := t.emit(context.Background(), 0); err != nil {
		return err
	}
	return t.newline()
}

func (t *Typewriter) close() {
	if t.wrap != nil && !t.closed {
		_ = t.wrap.Close()
	}
	t.closed = true
}

func (t *Typewriter) rendered() string {
	if t.wrap == nil {
		return t.source
	}
	return t.wrap.String()
}

func (t *Typewriter) emit(ctx context.Context, delay time.Duration) error {
	text := t.rendered()
	if delay <= 0 {
		if t.shown < len(text) {
			if _, err := io.WriteString(t.out, text[t.shown:]); err != nil {
				return err
			}
			t.shown = len(text)
		}
		return nil
	}

	for t.shown < len(text) {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, size := utf8.DecodeRuneInString(text[t.shown:])
		if _, err := io.WriteString(t.out, text[t.shown:t.shown+size]); err != nil {
			return err
		}
		t.shown += size
		if err := t.sleep(ctx, delay); err != nil {
			return err
		}
	}
	return nil
}

func (t *Typewriter) newline() error {
	text := t.rendered()
	if text == "" || strings.HasSuffix(text, "\n") {
		return nil
	}
	_, err := io.WriteString(t.out, "\n")
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
