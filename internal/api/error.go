package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error is a non-2xx response from the backend. Message keeps the
// server-provided text so dialogs can surface it verbatim.
type Error struct {
	Status    int
	Message   string
	RequestID string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// decodeError pulls the message out of the usual {"message": ...} or
// {"error": ...} error bodies.
func decodeError(status int, body []byte) *Error {
	var payload struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	msg := ""
	if json.Unmarshal(body, &payload) == nil {
		msg = payload.Message
		if msg == "" {
			msg = payload.Err
		}
	}
	return &Error{Status: status, Message: msg}
}

// ServerMessage extracts the backend's message from err, or returns fallback
// when the failure carried none (transport errors, empty bodies).
func ServerMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// IsChallengeTokenError reports whether the failure names an invalid or
// expired challenge token, which gets the specific "close and reopen the
// dialog" remediation.
func IsChallengeTokenError(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "challenge token")
}
