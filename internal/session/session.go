// Package session runs a single streaming rewrite from submission to
// completion, turning provider deltas into whole-text snapshots.
package session

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/zhubert/reword/internal/provider"
	"github.com/zhubert/reword/internal/rewrite"
	"github.com/zhubert/reword/internal/token"
)

// State is where a session is in its lifecycle.
type State int

const (
	Idle State = iota
	InFlight
	Streaming
	Completed
	Failed
	Cancelled
)

var stateNames = [...]string{"idle", "in-flight", "streaming", "completed", "failed", "cancelled"}

func (s State) String() string {
	if s < Idle || s > Cancelled {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// DefaultIdleTimeout is the longest a session waits between chunks.
const DefaultIdleTimeout = 30 * time.Second

// ErrAlreadyStarted is returned when a session or its sequence is reused.
var ErrAlreadyStarted = errors.New("session already started")

// Options tunes the calls a session makes.
type Options struct {
	Model       string
	Temperature float64
	// MaxTokens pins max_tokens. Zero sizes it from the source text.
	MaxTokens int
	// MaxTokensCeiling caps the computed budget. Zero means no cap.
	MaxTokensCeiling int
	// IdleTimeout bounds the wait for each chunk. Zero uses
	// DefaultIdleTimeout; a negative value disables the limit.
	IdleTimeout time.Duration
	Logger      *slog.Logger
}

// Session owns one rewrite request and its accumulated output.
type Session struct {
	id       string
	provider provider.Provider
	opts     Options
	logger   *slog.Logger

	mu       sync.Mutex
	state    State
	output   strings.Builder
	chunks   int
	err      error
	started  bool
	iterated bool
	cancel   context.CancelFunc
}

// New creates an idle session that will call p.
func New(p provider.Provider, opts Options) *Session {
	id := uuid.NewString()
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Session{
		id:       id,
		provider: p,
		opts:     opts,
		logger:   logger.With("session", id, "provider", p.Name()),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Output returns the text accumulated so far.
func (s *Session) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output.String()
}

// Err returns the error that failed the session, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Chunks returns the number of deltas appended so far.
func (s *Session) Chunks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.chunks
}

// Cancel aborts the session. A pending read is interrupted and the
// sequence ends without yielding anything further.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	if !s.state.Terminal() && !s.iterated {
		s.state = Cancelled
	}
}

// Start validates req and returns the lazy sequence of accumulated
// snapshots. Validation failures are returned immediately and no network
// activity happens. Each yielded string is the full output so far; a
// failure is yielded once as ("", err). The sequence can be ranged over
// only once. Breaking out of the loop cancels the request.
func (s *Session) Start(ctx context.Context, req rewrite.Request) (iter.Seq2[string, error], error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return nil, ErrAlreadyStarted
	}
	s.started = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	if s.state == Cancelled {
		cancel()
	}
	s.mu.Unlock()

	call := s.buildCall(req)

	return func(yield func(string, error) bool) {
		s.run(ctx, cancel, call, yield)
	}, nil
}

func (s *Session) buildCall(req rewrite.Request) provider.Call {
	maxTokens := s.opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = token.Budget(req.SourceText, req.Length, s.opts.MaxTokensCeiling)
	}
	return provider.Call{
		Prompt:      rewrite.NewPrompt(req),
		Tone:        req.Tone,
		Length:      req.Length,
		Credential:  req.Credential,
		Model:       s.opts.Model,
		Temperature: s.opts.Temperature,
		MaxTokens:   maxTokens,
	}
}

func (s *Session) idleTimeout() time.Duration {
	switch {
	case s.opts.IdleTimeout == 0:
		return DefaultIdleTimeout
	case s.opts.IdleTimeout < 0:
		return 0
	default:
		return s.opts.IdleTimeout
	}
}

func (s *Session) run(ctx context.Context, cancel context.CancelFunc, call provider.Call, yield func(string, error) bool) {
	s.mu.Lock()
	if s.iterated {
		s.mu.Unlock()
		yield("", ErrAlreadyStarted)
		return
	}
	s.iterated = true
	s.mu.Unlock()

	defer cancel()

	start := time.Now()
	defer func() {
		s.logger.Info("session ended",
			"state", s.State().String(),
			"chunks", s.Chunks(),
			"bytes", len(s.Output()),
			"duration", time.Since(start).String(),
		)
	}()

	if ctx.Err() != nil {
		s.setState(Cancelled)
		return
	}

	s.setState(InFlight)
	s.logger.Info("session started", "model", call.Model, "tone", call.Tone.String(), "length", call.Length.String(), "max_tokens", call.MaxTokens)

	wd := newWatchdog(s.idleTimeout(), cancel)
	defer wd.stop()

	wd.arm()
	stream, err := s.provider.Stream(ctx, call)
	wd.disarm()
	if err != nil {
		s.finishWithError(ctx, wd, err, yield)
		return
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil {
			s.logger.Debug("closing stream", "error", cerr)
		}
		if sk, ok := stream.(interface{ Skipped() int }); ok && sk.Skipped() > 0 {
			s.logger.Warn("malformed stream lines skipped", "count", sk.Skipped())
		}
	}()

	for {
		wd.arm()
		delta, err := stream.Recv()
		wd.disarm()

		if err != nil {
			if errors.Is(err, io.EOF) {
				s.setState(Completed)
				return
			}
			s.finishWithError(ctx, wd, err, yield)
			return
		}
		if ctx.Err() != nil {
			s.finishWithError(ctx, wd, ctx.Err(), yield)
			return
		}
		if delta == "" {
			continue
		}

		snapshot := s.appendDelta(delta)
		if !yield(snapshot, nil) {
			s.logger.Debug("consumer stopped iterating")
			s.setState(Cancelled)
			return
		}
		if ctx.Err() != nil {
			s.setState(Cancelled)
			return
		}
	}
}

// appendDelta extends the output and returns the new snapshot.
func (s *Session) appendDelta(delta string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output.WriteString(delta)
	s.chunks++
	s.state = Streaming
	return s.output.String()
}

func (s *Session) finishWithError(ctx context.Context, wd *watchdog, err error, yield func(string, error) bool) {
	switch {
	case wd.fired():
		err = &provider.TransportError{Op: "waiting for data", Err: provider.ErrIdleTimeout}
	case ctx.Err() != nil:
		s.setState(Cancelled)
		return
	default:
		err = classify(err)
	}

	s.mu.Lock()
	s.state = Failed
	s.err = err
	s.mu.Unlock()

	s.logger.Error("session failed", "error", err)
	yield("", err)
}

// classify maps untyped failures onto the transport category.
func classify(err error) error {
	var rerr *provider.RequestError
	var terr *provider.TransportError
	if errors.As(err, &rerr) || errors.As(err, &terr) {
		return err
	}
	return &provider.TransportError{Op: "reading stream", Err: err}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return
	}
	s.state = st
}

// watchdog cancels the session when a wait exceeds the idle timeout.
type watchdog struct {
	timeout time.Duration
	cancel  context.CancelFunc
	timer   *time.Timer
	hit     atomic.Bool
}

func newWatchdog(timeout time.Duration, cancel context.CancelFunc) *watchdog {
	return &watchdog{timeout: timeout, cancel: cancel}
}

func (w *watchdog) arm() {
	if w.timeout <= 0 {
		return
	}
	if w.timer == nil {
		w.timer = time.AfterFunc(w.timeout, w.expire)
		return
	}
	w.timer.Reset(w.timeout)
}

func (w *watchdog) disarm() {
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *watchdog) stop() {
	w.disarm()
}

func (w *watchdog) expire() {
	w.hit.Store(true)
	w.cancel()
}

func (w *watchdog) fired() bool {
	return w.hit.Load()
}
