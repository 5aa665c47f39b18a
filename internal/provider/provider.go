// Package provider turns a conversation into a proposed command by calling
// a chat-completion model.
package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ashwch/smartff/internal/conversation"
)

// Result is one proposal from the model.
type Result struct {
	Command     string `json:"command"`
	Explanation string `json:"explanation"`
}

// JSON is the form in which a Result is replayed to the model as an
// assistant turn.
func (r Result) JSON() string {
	bytes, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"command":%q,"explanation":%q}`, r.Command, r.Explanation)
	}
	return string(bytes)
}

type Generator interface {
	Generate(ctx context.Context, conv *conversation.Conversation) (Result, error)
}

// APIError reports a failed call to the completion endpoint: transport,
// authentication or an HTTP error status.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("completion request failed (HTTP %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("completion request failed: %s", e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// MalformedError reports model output that could not be decoded into a
// Result. Raw keeps the text as received.
type MalformedError struct {
	Raw string
	Err error
}

func (e *MalformedError) Error() string {
	return fmt.Sprintf("model response is not a valid command object: %v", e.Err)
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}
