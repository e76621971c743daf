package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Completer abstracts a chat-completion provider.
type Completer interface {
	// Name identifies the provider in logs and metrics ("openai", "anthropic").
	Name() string
	// Complete returns the raw completion text for the request.
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single provider call. System may be empty; providers without a
// system role fold it into the prompt.
type Request struct {
	Purpose   string
	System    string
	Prompt    string
	MaxTokens int
}

var (
	// ErrEmptyCompletion is returned when the provider answered without content.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrNoJSONObject is returned when a completion holds no JSON object.
	ErrNoJSONObject = errors.New("no JSON object in completion")
)

// StatusError reports a non-2xx provider response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http status %d: %s", e.Provider, e.StatusCode, truncate(e.Body, 300))
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// Outcome classifies a provider error for logs and metrics.
func Outcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "ok"
	case IsCircuitOpen(err):
		return "circuit_open"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &statusErr):
		return "http_error"
	case errors.Is(err, ErrEmptyCompletion):
		return "empty"
	case errors.Is(err, ErrNoJSONObject):
		return "no_json"
	default:
		return "error"
	}
}
