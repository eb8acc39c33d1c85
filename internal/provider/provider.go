// Package provider talks to the language-model services that perform the
// actual rewriting.
package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/zhubert/reword/internal/rewrite"
)

// Call is everything a provider needs to perform one rewrite.
type Call struct {
	Prompt      rewrite.Prompt
	Tone        rewrite.Tone
	Length      rewrite.Length
	Credential  string
	Model       string
	Temperature float64
	MaxTokens   int
}

// Stream yields content deltas. Recv returns io.EOF once the provider has
// signalled the end of the response. Close aborts any pending read.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Provider opens streaming rewrite calls.
type Provider interface {
	Name() string
	Stream(ctx context.Context, call Call) (Stream, error)
}

// ErrIdleTimeout reports that no data arrived within the idle window.
var ErrIdleTimeout = errors.New("idle timeout waiting for stream data")

// RequestError is a non-success response to the initial request.
type RequestError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Provider, e.StatusCode, e.Message)
}

// TransportError is a failure while reading the response stream.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the stream was abandoned for being idle.
func (e *TransportError) Timeout() bool {
	return errors.Is(e.Err, ErrIdleTimeout)
}

const maxErrorMessage = 200

// newRequestError builds a RequestError from a provider's error body.
func newRequestError(provider string, status int, body []byte) *RequestError {
	msg := gjson.GetBytes(body, "error.message").String()
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage-3] + "..."
	}
	return &RequestError{Provider: provider, StatusCode: status, Message: msg}
}

// Names of the built-in providers.
const (
	NameOpenAI    = "openai"
	NameAnthropic = "anthropic"
	NameMock      = "mock"
)

// Names returns the built-in provider names.
func Names() []string {
	return []string{NameOpenAI, NameAnthropic, NameMock}
}

// Options configures a provider built by New.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// New returns the provider registered under name.
func New(name string, opts Options) (Provider, error) {
	switch name {
	case NameOpenAI:
		return NewOpenAI(opts.BaseURL, opts.HTTPClient, opts.Logger), nil
	case NameAnthropic:
		return NewAnthropic(opts.BaseURL, opts.HTTPClient), nil
	case NameMock:
		return &Mock{}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q, must be one of %s", name, strings.Join(Names(), ", "))
	}
}

func discardLogger(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
