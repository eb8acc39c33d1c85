// Package rewrite defines rewrite requests and the prompts sent to providers.
package rewrite

import (
	"fmt"
	"strings"
)

// Tone is the register the rewritten text should use.
type Tone int

const (
	Casual Tone = iota
	Neutral
	Professional
)

// Length is the size of the rewritten text relative to the source.
type Length int

const (
	Shorter Length = iota
	Same
	Longer
)

var toneNames = [...]string{"Casual", "Neutral", "Professional"}

var lengthNames = [...]string{"Shorter", "Same", "Longer"}

func (t Tone) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tone(%d)", int(t))
	}
	return toneNames[t]
}

// Valid reports whether t is one of the known tones.
func (t Tone) Valid() bool {
	return t >= Casual && t <= Professional
}

func (l Length) String() string {
	if !l.Valid() {
		return fmt.Sprintf("Length(%d)", int(l))
	}
	return lengthNames[l]
}

// Valid reports whether l is one of the known lengths.
func (l Length) Valid() bool {
	return l >= Shorter && l <= Longer
}

// Tones returns every tone in pad order.
func Tones() []Tone {
	return []Tone{Casual, Neutral, Professional}
}

// Lengths returns every length in pad order.
func Lengths() []Length {
	return []Length{Shorter, Same, Longer}
}

// ParseTone parses a tone name, ignoring case.
func ParseTone(s string) (Tone, error) {
	for i, name := range toneNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Tone(i), nil
		}
	}
	return Neutral, fmt.Errorf("unknown tone %q, must be casual, neutral, or professional", s)
}

// ParseLength parses a length name, ignoring case.
func ParseLength(s string) (Length, error) {
	for i, name := range lengthNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return Length(i), nil
		}
	}
	return Same, fmt.Errorf("unknown length %q, must be shorter, same, or longer", s)
}

// Request is a single rewrite submission. It is passed by value and never
// modified after it has been handed to a session.
type Request struct {
	SourceText string
	Tone       Tone
	Length     Length
	Credential string
}

// ValidationError reports a request that was rejected before any I/O.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Validate checks the request without touching the network.
func (r Request) Validate() error {
	if strings.TrimSpace(r.SourceText) == "" {
		return &ValidationError{Field: "source text", Message: "please enter some text to rewrite"}
	}
	if r.Credential == "" {
		return &ValidationError{Field: "credential", Message: "an API key is required"}
	}
	if !r.Tone.Valid() {
		return &ValidationError{Field: "tone", Message: r.Tone.String() + " is not a known tone"}
	}
	if !r.Length.Valid() {
		return &ValidationError{Field: "length", Message: r.Length.String() + " is not a known length"}
	}
	return nil
}
