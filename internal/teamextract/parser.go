package teamextract

import (
	"context"
	"errors"
	"time"

	"mailsplit-backend/internal/llm"
	"mailsplit-backend/internal/shared/metrics"
	"mailsplit-backend/internal/shared/telemetry"
)

// DefaultProviderTimeout bounds one provider call.
const DefaultProviderTimeout = 30 * time.Second

// Provider turns document text into a TeamExtraction or reports why it could not.
type Provider interface {
	Name() string
	TryExtract(ctx context.Context, text string) (TeamExtraction, error)
}

type completerProvider struct {
	completer llm.Completer
	timeout   time.Duration
}

// NewProvider adapts an llm.Completer into a Provider with a per-call deadline.
func NewProvider(c llm.Completer, timeout time.Duration) Provider {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	return &completerProvider{completer: c, timeout: timeout}
}

func (p *completerProvider) Name() string { return p.completer.Name() }

func (p *completerProvider) TryExtract(ctx context.Context, text string) (TeamExtraction, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	completion, err := p.completer.Complete(ctx, buildRequest(p.Name(), text))
	if err != nil {
		return TeamExtraction{}, err
	}
	return decodeCompletion(completion)
}

// Parser tries each provider in order and falls back to FallbackParse. It is safe for
// concurrent use and holds no per-request state.
type Parser struct {
	providers []Provider
}

// NewParser builds a parser over an ordered provider list. An empty list means every
// call goes straight to the fallback without network I/O.
func NewParser(providers ...Provider) *Parser {
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Parser{providers: kept}
}

// ProviderNames lists the configured providers in call order.
func (p *Parser) ProviderNames() []string {
	names := make([]string, 0, len(p.providers))
	for _, provider := range p.providers {
		names = append(names, provider.Name())
	}
	return names
}

// Parse never fails: provider errors are logged and the next tier is tried.
func (p *Parser) Parse(ctx context.Context, text string) TeamExtraction {
	text = Truncate(text)

	for _, provider := range p.providers {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		result, err := provider.TryExtract(ctx, text)
		elapsed := time.Since(start)
		if err == nil {
			metrics.ObserveProviderAttempt(provider.Name(), purpose, "ok", elapsed)
			telemetry.Info("teamextract.provider.ok", map[string]any{
				"provider":    provider.Name(),
				"duration_ms": elapsed.Milliseconds(),
			})
			return result
		}
		outcome := outcomeFor(err)
		metrics.ObserveProviderAttempt(provider.Name(), purpose, outcome, elapsed)
		telemetry.Warn("teamextract.provider.failed", map[string]any{
			"provider":    provider.Name(),
			"outcome":     outcome,
			"duration_ms": elapsed.Milliseconds(),
			"error":       err.Error(),
		})
	}

	metrics.IncFallback(purpose)
	telemetry.Info("teamextract.fallback", map[string]any{
		"providers": len(p.providers),
		"chars":     len(text),
	})
	return FallbackParse(text)
}

func outcomeFor(err error) string {
	if errors.Is(err, errNoKnownFields) {
		return "no_json"
	}
	return llm.Outcome(err)
}
