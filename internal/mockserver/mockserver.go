// Package mockserver serves a fake OpenAI-style chat completions endpoint
// that streams simulated rewrites, so the real HTTP client can run without
// an account.
package mockserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tmaxmax/go-sse"

	"github.com/zhubert/reword/internal/provider"
	"github.com/zhubert/reword/internal/rewrite"
)

// DefaultAddr is where `reword mock-server` listens.
const DefaultAddr = "127.0.0.1:8089"

// maxBody bounds request bodies.
const maxBody = 1 << 20

// Server streams rewrites produced by rewrite.Simulate.
type Server struct {
	// Delay is slept between words.
	Delay  time.Duration
	logger *slog.Logger
}

// New creates a server. A nil logger discards output.
func New(delay time.Duration, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{Delay: delay, logger: logger}
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", s.handleCompletions)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

type chunkDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

type chunkChoice struct {
	Index        int        `json:"index"`
	Delta        chunkDelta `json:"delta"`
	FinishReason *string    `json:"finish_reason"`
}

type chunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []chunkChoice `json:"choices"`
}

func (s *Server) handleCompletions(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") ||
		strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")) == "" {
		writeError(w, http.StatusUnauthorized, "invalid_request_error", "You didn't provide an API key.")
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}
	if !gjson.ValidBytes(body) {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "request body is not valid JSON")
		return
	}
	req := gjson.ParseBytes(body)
	if !req.Get("stream").Bool() {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "only streaming requests are supported")
		return
	}

	system, user := messages(req)
	if user == "" {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "no user message")
		return
	}
	tone, length, ok := rewrite.ParseInstruction(system)
	if !ok {
		tone, length = rewrite.Neutral, rewrite.Same
	}

	sess, err := sse.Upgrade(w, r)
	if err != nil {
		s.logger.Error("upgrading to event stream", "error", err)
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	id := "chatcmpl-" + uuid.NewString()
	model := req.Get("model").String()
	words := provider.SplitWords(rewrite.Simulate(user, tone, length))
	s.logger.Info("streaming mock rewrite", "id", id, "tone", tone.String(), "length", length.String(), "words", len(words))

	base := chunk{ID: id, Object: "chat.completion.chunk", Created: time.Now().Unix(), Model: model}
	send := func(delta chunkDelta, finish *string) error {
		c := base
		c.Choices = []chunkChoice{{Delta: delta, FinishReason: finish}}
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encoding chunk: %w", err)
		}
		return s.send(sess, string(data))
	}

	if err := send(chunkDelta{Role: "assistant"}, nil); err != nil {
		s.logger.Debug("client went away", "error", err)
		return
	}
	for _, word := range words {
		if err := s.wait(r); err != nil {
			s.logger.Debug("client went away", "error", err)
			return
		}
		if err := send(chunkDelta{Content: word}, nil); err != nil {
			s.logger.Debug("client went away", "error", err)
			return
		}
	}
	stop := "stop"
	if err := send(chunkDelta{}, &stop); err != nil {
		return
	}
	if err := s.send(sess, "[DONE]"); err != nil {
		s.logger.Debug("client went away", "error", err)
	}
}

func (s *Server) send(sess *sse.Session, data string) error {
	msg := &sse.Message{}
	msg.AppendData(data)
	if err := sess.Send(msg); err != nil {
		return err
	}
	return sess.Flush()
}

func (s *Server) wait(r *http.Request) error {
	if s.Delay <= 0 {
		return r.Context().Err()
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-r.Context().Done():
		return r.Context().Err()
	case <-timer.C:
		return nil
	}
}

// messages returns the system prompt and the last user message.
func messages(req gjson.Result) (system, user string) {
	for _, m := range req.Get("messages").Array() {
		switch m.Get("role").String() {
		case "system", "developer":
			system = m.Get("content").String()
		case "user":
			user = m.Get("content").String()
		}
	}
	return system, user
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("request body is empty")
	}
	return data, nil
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload := map[string]any{
		"error": map[string]any{"message": message, "type": kind},
	}
	_ = json.NewEncoder(w).Encode(payload)
}
