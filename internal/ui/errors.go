package ui

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/zhubert/reword/internal/credential"
	"github.com/zhubert/reword/internal/provider"
	"github.com/zhubert/reword/internal/rewrite"
)

// ErrorMessage turns an error from a rewrite into text fit for the user.
// Provider internals beyond the status and message are never shown.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var verr *rewrite.ValidationError
	var rerr *provider.RequestError
	var terr *provider.TransportError

	switch {
	case errors.As(err, &verr):
		return verr.Error()
	case errors.Is(err, credential.ErrNotFound):
		return "No API key configured. Set one with `reword key set` or /key."
	case errors.As(err, &rerr):
		msg := fmt.Sprintf("%s returned %d: %s", rerr.Provider, rerr.StatusCode, rerr.Message)
		switch rerr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			msg += " (check your API key)"
		case http.StatusTooManyRequests:
			msg += " (rate limited, wait a moment)"
		}
		return msg
	case errors.As(err, &terr):
		if terr.Timeout() {
			return "The connection went quiet past the idle timeout. Please try again."
		}
		return "Connection problem, please try again."
	default:
		return err.Error()
	}
}

// RenderError styles an error for the terminal.
func RenderError(err error) string {
	return ErrorStyle.Render("Error: " + ErrorMessage(err))
}
