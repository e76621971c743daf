package teamextract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"mailsplit-backend/internal/llm"
	"mailsplit-backend/internal/llm/anthropic"
	"mailsplit-backend/internal/llm/openai"
)

type fakeProvider struct {
	name   string
	result TeamExtraction
	err    error
	calls  int
	seen   string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) TryExtract(ctx context.Context, text string) (TeamExtraction, error) {
	f.calls++
	f.seen = text
	return f.result, f.err
}

func TestParseWithoutProvidersUsesFallback(t *testing.T) {
	p := NewParser()
	text := "Team: Billing\ncontact: billing@acme.com"
	if got := p.Parse(context.Background(), text); !reflect.DeepEqual(got, FallbackParse(text)) {
		t.Fatalf("expected fallback result, got %+v", got)
	}
	if len(p.ProviderNames()) != 0 {
		t.Fatalf("expected no providers")
	}
}

func TestParseFirstSuccessfulProviderWins(t *testing.T) {
	primary := &fakeProvider{name: "openai", result: TeamExtraction{TeamName: "Primary"}}
	secondary := &fakeProvider{name: "anthropic", result: TeamExtraction{TeamName: "Secondary"}}

	got := NewParser(primary, secondary).Parse(context.Background(), "text")
	if got.TeamName != "Primary" {
		t.Fatalf("expected primary result, got %+v", got)
	}
	if secondary.calls != 0 {
		t.Fatalf("secondary must not be called after a success")
	}
}

func TestParseFallsThroughInOrder(t *testing.T) {
	primary := &fakeProvider{name: "openai", err: &llm.StatusError{Provider: "openai", StatusCode: 500}}
	secondary := &fakeProvider{name: "anthropic", err: llm.ErrNoJSONObject}

	text := "Department: Support\nhelp@acme.com"
	got := NewParser(primary, secondary).Parse(context.Background(), text)
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("expected one call each, got %d and %d", primary.calls, secondary.calls)
	}
	if !reflect.DeepEqual(got, FallbackParse(text)) {
		t.Fatalf("expected fallback result, got %+v", got)
	}
}

func TestParseTruncatesBeforeProvidersAndFallback(t *testing.T) {
	provider := &fakeProvider{name: "openai", err: errors.New("down")}
	long := strings.Repeat("x", MaxInputRunes) + "\nTeam: Hidden"

	got := NewParser(provider).Parse(context.Background(), long)
	if len([]rune(provider.seen)) != MaxInputRunes {
		t.Fatalf("provider saw %d runes", len([]rune(provider.seen)))
	}
	if got.TeamName != PlaceholderTeamName {
		t.Fatalf("content past the limit must be ignored, got %q", got.TeamName)
	}
}

func chatServer(t *testing.T, status int, content string, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.WriteHeader(status)
		payload, _ := json.Marshal(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
		})
		_, _ = w.Write(payload)
	}))
}

func messagesServer(t *testing.T, status int, text string, hits *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		var req struct {
			MaxTokens int `json:"max_tokens"`
			Messages  []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) != 1 {
			t.Errorf("unexpected anthropic request: %v", err)
		} else if !strings.Contains(req.Messages[0].Content, "\n\nDocument:\n") || req.MaxTokens != 1024 {
			t.Errorf("unexpected anthropic prompt shape: %q (max_tokens %d)", req.Messages[0].Content, req.MaxTokens)
		}
		w.WriteHeader(status)
		payload, _ := json.Marshal(map[string]any{
			"content": []any{map[string]any{"type": "text", "text": text}},
		})
		_, _ = w.Write(payload)
	}))
}

func TestParseReturnsPrimaryObjectUnmodified(t *testing.T) {
	var hits int32
	srv := chatServer(t, http.StatusOK, `Sure, here is the JSON: {"team_name":"Widgets Support","description":"ops@widgets.com handles outages","products":["Widget"],"issues_handled":["outage"],"contact_email":["ops@widgets.com"]} Hope that helps.`, &hits)
	defer srv.Close()

	client, err := openai.NewClient("k", "gpt-4o", openai.WithEndpoint(srv.URL))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	got := NewParser(NewProvider(client, time.Second)).Parse(context.Background(), "irrelevant text")
	want := TeamExtraction{
		TeamName:      "Widgets Support",
		Description:   "ops@widgets.com handles outages",
		Products:      []string{"Widget"},
		IssuesHandled: []string{"outage"},
		ContactEmail:  []string{"ops@widgets.com"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if hits != 1 {
		t.Fatalf("expected one provider call, got %d", hits)
	}
}

func TestParsePrimaryNon2xxTriesSecondary(t *testing.T) {
	var primaryHits, secondaryHits int32
	primarySrv := chatServer(t, http.StatusInternalServerError, "", &primaryHits)
	defer primarySrv.Close()
	secondarySrv := messagesServer(t, http.StatusOK, `{"team_name":"From Claude","contact_email":["c@acme.com"]}`, &secondaryHits)
	defer secondarySrv.Close()

	primary, _ := openai.NewClient("k", "gpt-4o", openai.WithEndpoint(primarySrv.URL))
	secondary, _ := anthropic.NewClient("k", "claude", anthropic.WithEndpoint(secondarySrv.URL))

	got := NewParser(NewProvider(primary, time.Second), NewProvider(secondary, time.Second)).
		Parse(context.Background(), "Team: Ignored")
	if got.TeamName != "From Claude" || !reflect.DeepEqual(got.ContactEmail, []string{"c@acme.com"}) {
		t.Fatalf("expected secondary result, got %+v", got)
	}
	if got.Description != PlaceholderDescription || got.Products == nil {
		t.Fatalf("absent fields should be defaulted, got %+v", got)
	}
	if primaryHits != 1 || secondaryHits != 1 {
		t.Fatalf("expected one call each, got %d/%d", primaryHits, secondaryHits)
	}
}

func TestParseAllProvidersFailingNeverPanics(t *testing.T) {
	var hits int32
	bad := chatServer(t, http.StatusBadGateway, "", &hits)
	defer bad.Close()
	empty := messagesServer(t, http.StatusOK, "", &hits)
	defer empty.Close()

	primary, _ := openai.NewClient("k", "gpt-4o", openai.WithEndpoint(bad.URL))
	secondary, _ := anthropic.NewClient("k", "claude", anthropic.WithEndpoint(empty.URL))

	text := "Team Name: Widgets Support\nping ops@widgets.com"
	got := NewParser(NewProvider(primary, time.Second), NewProvider(secondary, time.Second)).Parse(context.Background(), text)
	if got.TeamName != "Widgets Support" || !reflect.DeepEqual(got.ContactEmail, []string{"ops@widgets.com"}) {
		t.Fatalf("expected fallback extraction, got %+v", got)
	}
}

func TestProviderTimeoutFallsThrough(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	client, _ := openai.NewClient("k", "gpt-4o", openai.WithEndpoint(slow.URL))
	start := time.Now()
	got := NewParser(NewProvider(client, 50*time.Millisecond)).Parse(context.Background(), "Team: Quick")
	if time.Since(start) > time.Second {
		t.Fatalf("provider deadline was not applied")
	}
	if got.TeamName != "Quick" {
		t.Fatalf("expected fallback after timeout, got %+v", got)
	}
}

func TestOutcomeFor(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: &llm.StatusError{StatusCode: 500}, want: "http_error"},
		{err: context.DeadlineExceeded, want: "timeout"},
		{err: llm.ErrEmptyCompletion, want: "empty"},
		{err: errNoKnownFields, want: "no_json"},
		{err: errors.New("other"), want: "error"},
	}
	for _, tt := range tests {
		if got := outcomeFor(tt.err); got != tt.want {
			t.Fatalf("outcomeFor(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
