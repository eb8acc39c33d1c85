package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// SpinnerState tracks the animation frame.
type SpinnerState struct {
	Idx     int
	Started time.Time
}

// NewSpinnerState creates a new spinner starting now.
func NewSpinnerState() *SpinnerState {
	return &SpinnerState{Started: time.Now()}
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Advance moves the spinner to the next frame.
func (s *SpinnerState) Advance() {
	s.Idx++
}

// Frame returns the current spinner character.
func (s *SpinnerState) Frame() string {
	return spinnerFrames[s.Idx%len(spinnerFrames)]
}

// Elapsed returns the time since the spinner started.
func (s *SpinnerState) Elapsed() time.Duration {
	return time.Since(s.Started)
}

// RenderSpinner renders the spinner with a verb and elapsed time.
func (s *SpinnerState) RenderSpinner(verb string) string {
	elapsed := s.Elapsed().Truncate(time.Second)
	frame := AccentStyle.Render(s.Frame())
	label := DimStyle.Render(fmt.Sprintf(" %s... %s", verb, elapsed))
	return frame + label
}

// spinnerInterval is how often the spinner redraws.
const spinnerInterval = 120 * time.Millisecond

// Spinner animates a SpinnerState on one terminal line until stopped.
type Spinner struct {
	out  io.Writer
	verb string

	once sync.Once
	stop chan struct{}
	done chan struct{}
}

// StartSpinner draws the spinner on out until Stop is called.
func StartSpinner(out io.Writer, verb string) *Spinner {
	s := &Spinner{
		out:  out,
		verb: verb,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.loop()
	return s
}

func (s *Spinner) loop() {
	defer close(s.done)

	state := NewSpinnerState()
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	fmt.Fprint(s.out, "\r"+state.RenderSpinner(s.verb))
	for {
		select {
		case <-s.stop:
			// Clear the spinner line.
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
			state.Advance()
			fmt.Fprint(s.out, "\r"+state.RenderSpinner(s.verb))
		}
	}
}

// Stop clears the spinner line and waits for the animation to end. It is
// safe to call more than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		close(s.stop)
	})
	<-s.done
}
