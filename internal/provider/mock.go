package provider

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/zhubert/reword/internal/rewrite"
)

// Mock is a deterministic provider for tests and offline use.
//
// With no Deltas it streams rewrite.Simulate's output word by word.
type Mock struct {
	// Deltas is the scripted response.
	Deltas []string
	// Delay is slept before every delta.
	Delay time.Duration
	// OpenErr is returned from Stream instead of opening a stream.
	OpenErr error
	// Err is returned by Recv after FailAfter deltas.
	Err       error
	FailAfter int

	mu    sync.Mutex
	calls []Call
	reads int
}

// Name implements Provider.
func (m *Mock) Name() string {
	return NameMock
}

// Stream implements Provider.
func (m *Mock) Stream(ctx context.Context, call Call) (Stream, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call)
	m.mu.Unlock()

	if m.OpenErr != nil {
		return nil, m.OpenErr
	}

	deltas := m.Deltas
	if deltas == nil {
		deltas = SplitWords(rewrite.Simulate(call.Prompt.User, call.Tone, call.Length))
	}

	return &mockStream{
		mock:   m,
		ctx:    ctx,
		deltas: deltas,
		closed: make(chan struct{}),
	}, nil
}

// Calls returns every call the mock has received.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reads returns the number of Recv calls that produced a delta.
func (m *Mock) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

type mockStream struct {
	mock   *Mock
	ctx    context.Context
	deltas []string
	pos    int

	closeOnce sync.Once
	closed    chan struct{}
}

func (s *mockStream) Recv() (string, error) {
	if s.mock.Err != nil && s.pos >= s.mock.FailAfter {
		return "", s.mock.Err
	}
	if s.pos >= len(s.deltas) {
		return "", io.EOF
	}

	if s.mock.Delay > 0 {
		timer := time.NewTimer(s.mock.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-s.ctx.Done():
			return "", s.ctx.Err()
		case <-s.closed:
			return "", &TransportError{Op: "reading stream", Err: io.ErrClosedPipe}
		}
	}

	select {
	case <-s.ctx.Done():
		return "", s.ctx.Err()
	case <-s.closed:
		return "", &TransportError{Op: "reading stream", Err: io.ErrClosedPipe}
	default:
	}

	d := s.deltas[s.pos]
	s.pos++

	s.mock.mu.Lock()
	s.mock.reads++
	s.mock.mu.Unlock()

	return d, nil
}

func (s *mockStream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// SplitWords breaks text into deltas that keep their leading whitespace,
// so concatenating them restores the original exactly.
func SplitWords(text string) []string {
	var out []string
	start := 0
	inSpace := true
	for i, r := range text {
		space := r == ' ' || r == '\n' || r == '\t'
		if space && !inSpace {
			out = append(out, text[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(text) {
		out = append(out, text[start:])
	}
	return out
}
