package provider

import (
	"bytes"
	"errors"
	"io"
	"log/slog"

	"github.com/tidwall/gjson"
)

// MaxLineSize bounds a single server-sent event line.
const MaxLineSize = 1 << 20

const readSize = 4096

var doneSentinel = []byte("[DONE]")

// Decoder turns an OpenAI-style server-sent event body into content deltas.
//
// Bytes are buffered until a full line is available, so lines, JSON objects
// and multi-byte characters may be split across reads arbitrarily.
type Decoder struct {
	r      io.Reader
	logger *slog.Logger

	buf   []byte
	chunk []byte

	eof  bool
	done bool

	received int
	skipped  int
}

// NewDecoder returns a decoder reading from r.
func NewDecoder(r io.Reader, logger *slog.Logger) *Decoder {
	return &Decoder{
		r:      r,
		logger: discardLogger(logger),
		chunk:  make([]byte, readSize),
	}
}

// Next returns the next non-empty content delta. It returns io.EOF when the
// [DONE] sentinel is seen, or when the body ends after some content has
// arrived. A body that ends before any content is a TransportError.
func (d *Decoder) Next() (string, error) {
	for {
		if d.done {
			return "", io.EOF
		}

		if i := bytes.IndexByte(d.buf, '\n'); i >= 0 {
			line := d.buf[:i]
			delta, ok, err := d.handleLine(line)
			d.consume(i + 1)
			if err != nil {
				return "", err
			}
			if ok {
				return delta, nil
			}
			continue
		}

		if d.eof {
			return d.finish()
		}

		if len(d.buf) > MaxLineSize {
			d.done = true
			return "", &TransportError{Op: "reading stream", Err: errors.New("event line exceeds maximum size")}
		}

		n, err := d.r.Read(d.chunk)
		d.buf = append(d.buf, d.chunk[:n]...)
		if err == io.EOF {
			d.eof = true
		} else if err != nil {
			d.done = true
			return "", &TransportError{Op: "reading stream", Err: err}
		}
	}
}

// Received returns the number of content bytes decoded so far.
func (d *Decoder) Received() int {
	return d.received
}

// Skipped returns the number of malformed lines that were dropped.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// consume drops n bytes from the front of the buffer, reusing its storage.
func (d *Decoder) consume(n int) {
	rest := copy(d.buf, d.buf[n:])
	d.buf = d.buf[:rest]
}

// finish handles an unterminated final line and the end of the body.
func (d *Decoder) finish() (string, error) {
	if len(d.buf) > 0 {
		line := d.buf
		d.buf = nil
		delta, ok, err := d.handleLine(line)
		if err != nil {
			return "", err
		}
		if ok {
			return delta, nil
		}
		if d.done {
			return "", io.EOF
		}
	}

	d.done = true
	if d.received == 0 {
		return "", &TransportError{Op: "reading stream", Err: errors.New("stream closed before any content")}
	}
	d.logger.Debug("stream closed without sentinel", "received", d.received)
	return "", io.EOF
}

// handleLine interprets one event line. ok is true when it carried content.
func (d *Decoder) handleLine(line []byte) (delta string, ok bool, err error) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if len(line) == 0 || line[0] == ':' {
		return "", false, nil
	}

	field, value, _ := bytes.Cut(line, []byte(":"))
	if string(field) != "data" {
		return "", false, nil
	}
	value = bytes.TrimPrefix(value, []byte(" "))

	if bytes.Equal(bytes.TrimSpace(value), doneSentinel) {
		d.done = true
		return "", false, nil
	}

	if !gjson.ValidBytes(value) {
		d.skip("invalid json", value)
		return "", false, nil
	}

	if msg := gjson.GetBytes(value, "error.message"); msg.Exists() {
		d.done = true
		return "", false, &TransportError{Op: "provider stream", Err: errors.New(msg.String())}
	}

	choices := gjson.GetBytes(value, "choices")
	if !choices.IsArray() {
		d.skip("missing choices", value)
		return "", false, nil
	}

	content := choices.Get("0.delta.content")
	if content.Exists() && content.Type != gjson.String && content.Type != gjson.Null {
		d.skip("non-string content", value)
		return "", false, nil
	}
	if content.Str == "" {
		// Role announcements and finish_reason chunks carry no text.
		return "", false, nil
	}

	d.received += len(content.Str)
	return content.Str, true, nil
}

func (d *Decoder) skip(reason string, payload []byte) {
	d.skipped++
	const preview = 120
	if len(payload) > preview {
		payload = payload[:preview]
	}
	d.logger.Debug("skipping malformed stream line", "reason", reason, "payload", string(payload))
}
