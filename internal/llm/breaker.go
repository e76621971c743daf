package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker/v2"

	"mailsplit-backend/internal/shared/telemetry"
)

// BreakerConfig tunes the per-provider circuit breaker.
type BreakerConfig struct {
	// MinRequests is the number of calls in a window before the ratio is considered.
	MinRequests uint32
	// FailureRatio at or above which the breaker opens.
	FailureRatio float64
	// OpenTimeout is how long the breaker stays open before a half-open probe.
	OpenTimeout time.Duration
	// Interval resets closed-state counts; zero keeps counts until a state change.
	Interval time.Duration
}

// DefaultBreakerConfig opens after 5 calls with at least 60% failures and probes again after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MinRequests:  5,
		FailureRatio: 0.6,
		OpenTimeout:  30 * time.Second,
		Interval:     time.Minute,
	}
}

type breakerCompleter struct {
	next    Completer
	breaker *gobreaker.CircuitBreaker[string]
}

// WithBreaker wraps c in a circuit breaker. While open, Complete fails fast with
// gobreaker.ErrOpenState and the provider is not called. Caller cancellations do not
// count as provider failures.
func WithBreaker(c Completer, cfg BreakerConfig) Completer {
	if cfg.MinRequests == 0 {
		cfg.MinRequests = 1
	}
	settings := gobreaker.Settings{
		Name:        c.Name(),
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			telemetry.Warn("llm.breaker.state_change", map[string]any{
				"provider": name,
				"from":     from.String(),
				"to":       to.String(),
			})
		},
	}
	return &breakerCompleter{
		next:    c,
		breaker: gobreaker.NewCircuitBreaker[string](settings),
	}
}

func (b *breakerCompleter) Name() string { return b.next.Name() }

func (b *breakerCompleter) Complete(ctx context.Context, req Request) (string, error) {
	return b.breaker.Execute(func() (string, error) {
		return b.next.Complete(ctx, req)
	})
}

// IsCircuitOpen reports whether err came from an open or saturated breaker.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
