package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
)

// DefaultOpenAIBaseURL is the public OpenAI API root.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

const maxErrorBody = 64 * 1024

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// OpenAI streams chat completions from an OpenAI-compatible endpoint.
type OpenAI struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// NewOpenAI creates a client for the API rooted at baseURL. An empty
// baseURL uses the public OpenAI API; a nil client uses http.DefaultClient.
func NewOpenAI(baseURL string, client *http.Client, logger *slog.Logger) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &OpenAI{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  discardLogger(logger),
	}
}

// Name implements Provider.
func (p *OpenAI) Name() string {
	return NameOpenAI
}

// Stream sends the completion request and returns the decoded delta stream.
func (p *OpenAI) Stream(ctx context.Context, call Call) (Stream, error) {
	body, err := json.Marshal(chatRequest{
		Model: call.Model,
		Messages: []chatMessage{
			{Role: "system", Content: call.Prompt.System},
			{Role: "user", Content: call.Prompt.User},
		},
		Stream:      true,
		Temperature: call.Temperature,
		MaxTokens:   call.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Authorization", "Bearer "+call.Credential)

	p.logger.Debug("sending completion request", "url", req.URL.String(), "model", call.Model, "max_tokens", call.MaxTokens)

	resp, err := p.client.Do(req)
	if err != nil {
		cancel()
		return nil, &TransportError{Op: "sending request", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		resp.Body.Close()
		cancel()
		rerr := newRequestError(p.Name(), resp.StatusCode, data)
		p.logger.Warn("completion request rejected", "status", resp.StatusCode, "message", rerr.Message)
		return nil, rerr
	}

	return &openAIStream{
		body:   resp.Body,
		cancel: cancel,
		dec:    NewDecoder(resp.Body, p.logger),
	}, nil
}

type openAIStream struct {
	body   io.ReadCloser
	cancel context.CancelFunc
	dec    *Decoder

	closeOnce sync.Once
	closeErr  error
}

func (s *openAIStream) Recv() (string, error) {
	return s.dec.Next()
}

// Close cancels the request context first, which unblocks a pending read on
// another goroutine, then releases the body.
func (s *openAIStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}

// Skipped reports how many malformed lines the decoder dropped.
func (s *openAIStream) Skipped() int {
	return s.dec.Skipped()
}
