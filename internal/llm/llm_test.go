package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFirstJSONObject(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{name: "bare", in: `{"a":1}`, want: `{"a":1}`, ok: true},
		{name: "prose around", in: "Sure! Here it is:\n{\"a\":{\"b\":2}}\nThanks.", want: `{"a":{"b":2}}`, ok: true},
		{name: "brace in string", in: `x {"a":"}{","b":"\"}"} y {"c":3}`, want: `{"a":"}{","b":"\"}"}`, ok: true},
		{name: "first of two", in: `{"a":1} and {"b":2}`, want: `{"a":1}`, ok: true},
		{name: "code fence", in: "```json\n{\"team_name\":\"X\"}\n```", want: `{"team_name":"X"}`, ok: true},
		{name: "none", in: "no json here", ok: false},
		{name: "only closing", in: "} oops {", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FirstJSONObject(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Fatalf("FirstJSONObject(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

type stubCompleter struct {
	calls int
	err   error
	out   string
}

func (s *stubCompleter) Name() string { return "stub" }

func (s *stubCompleter) Complete(ctx context.Context, req Request) (string, error) {
	s.calls++
	return s.out, s.err
}

func TestBreakerOpensAndSkipsProvider(t *testing.T) {
	failing := &stubCompleter{err: errors.New("boom")}
	c := WithBreaker(failing, BreakerConfig{MinRequests: 2, FailureRatio: 0.5, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		if _, err := c.Complete(context.Background(), Request{}); err == nil || IsCircuitOpen(err) {
			t.Fatalf("call %d: expected provider error, got %v", i, err)
		}
	}
	_, err := c.Complete(context.Background(), Request{})
	if !IsCircuitOpen(err) {
		t.Fatalf("expected open breaker, got %v", err)
	}
	if failing.calls != 2 {
		t.Fatalf("provider should not be called while open, got %d calls", failing.calls)
	}
	if c.Name() != "stub" {
		t.Fatalf("breaker should keep the provider name")
	}
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	cancelled := &stubCompleter{err: context.Canceled}
	c := WithBreaker(cancelled, BreakerConfig{MinRequests: 1, FailureRatio: 0.5, OpenTimeout: time.Minute})
	for i := 0; i < 3; i++ {
		if _, err := c.Complete(context.Background(), Request{}); IsCircuitOpen(err) {
			t.Fatalf("cancellations must not open the breaker")
		}
	}
	if cancelled.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", cancelled.calls)
	}
}

func TestStatusErrorTruncatesBody(t *testing.T) {
	body := make([]byte, 400)
	for i := range body {
		body[i] = 'x'
	}
	err := &StatusError{Provider: "openai", StatusCode: 500, Body: string(body)}
	if got := err.Error(); len(got) > 340 {
		t.Fatalf("expected truncated message, got %d chars", len(got))
	}
}
