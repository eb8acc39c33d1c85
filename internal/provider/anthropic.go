package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/ssestream"
	"github.com/tidwall/gjson"
)

// Anthropic streams rewrites from the Anthropic Messages API.
type Anthropic struct {
	baseURL    string
	httpClient *http.Client
}

// NewAnthropic creates a provider for the Messages API. An empty baseURL
// uses the SDK default.
func NewAnthropic(baseURL string, httpClient *http.Client) *Anthropic {
	return &Anthropic{baseURL: baseURL, httpClient: httpClient}
}

// Name implements Provider.
func (p *Anthropic) Name() string {
	return NameAnthropic
}

// Stream starts a streaming message. The SDK defers the HTTP exchange to
// the first read, so request failures surface from Recv.
func (p *Anthropic) Stream(ctx context.Context, call Call) (Stream, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(call.Credential),
		option.WithMaxRetries(0),
	}
	if p.baseURL != "" {
		opts = append(opts, option.WithBaseURL(p.baseURL))
	}
	if p.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(p.httpClient))
	}
	client := anthropic.NewClient(opts...)

	ctx, cancel := context.WithCancel(ctx)
	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(call.Model),
		MaxTokens: int64(call.MaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: call.Prompt.System},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(call.Prompt.User)),
		},
		Temperature: anthropic.Float(call.Temperature),
	})

	return &anthropicStream{stream: stream, cancel: cancel}, nil
}

type anthropicStream struct {
	stream *ssestream.Stream[anthropic.MessageStreamEventUnion]
	cancel context.CancelFunc

	received  int
	closeOnce sync.Once
	closeErr  error
}

func (s *anthropicStream) Recv() (string, error) {
	for s.stream.Next() {
		event := s.stream.Current()
		if event.Type != "content_block_delta" || event.Delta.Type != "text_delta" {
			continue
		}
		if event.Delta.Text == "" {
			continue
		}
		s.received += len(event.Delta.Text)
		return event.Delta.Text, nil
	}

	if err := s.stream.Err(); err != nil {
		return "", mapAnthropicError(err)
	}
	if s.received == 0 {
		return "", &TransportError{Op: "reading stream", Err: errors.New("stream closed before any content")}
	}
	return "", io.EOF
}

func (s *anthropicStream) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.stream.Close()
	})
	return s.closeErr
}

func mapAnthropicError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		rerr := newRequestError(NameAnthropic, apierr.StatusCode, []byte(apierr.RawJSON()))
		if !gjson.Valid(apierr.RawJSON()) {
			rerr.Message = http.StatusText(apierr.StatusCode)
		}
		return rerr
	}
	return &TransportError{Op: "reading stream", Err: err}
}
