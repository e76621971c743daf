package search

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/shared/metrics"
	"mailsplit-backend/internal/shared/telemetry"
	"mailsplit-backend/internal/teams"
)

// SyncerOptions bounds the background retries.
type SyncerOptions struct {
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
	MaxInFlight     int
}

// DefaultSyncerOptions retries for up to 30 seconds with at most 8 concurrent syncs.
func DefaultSyncerOptions() SyncerOptions {
	return SyncerOptions{
		InitialInterval: 500 * time.Millisecond,
		MaxElapsedTime:  30 * time.Second,
		MaxInFlight:     8,
	}
}

// Syncer pushes email and team changes to the Backend in the background. Calls never
// block the caller; failures are retried with exponential backoff and then logged.
// A nil Backend turns every call into a no-op.
type Syncer struct {
	backend Backend
	opts    SyncerOptions
	slots   chan struct{}
	wg      sync.WaitGroup
}

// NewSyncer builds a Syncer over backend.
func NewSyncer(backend Backend, opts SyncerOptions) *Syncer {
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = DefaultSyncerOptions().InitialInterval
	}
	if opts.MaxElapsedTime <= 0 {
		opts.MaxElapsedTime = DefaultSyncerOptions().MaxElapsedTime
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = DefaultSyncerOptions().MaxInFlight
	}
	return &Syncer{backend: backend, opts: opts, slots: make(chan struct{}, opts.MaxInFlight)}
}

// IndexEmails queues an upsert of the given emails.
func (s *Syncer) IndexEmails(ctx context.Context, list []emails.Email) {
	if s.backend == nil || len(list) == 0 {
		return
	}
	docs := make([]EmailDoc, 0, len(list))
	for _, e := range list {
		docs = append(docs, EmailToDoc(e))
	}
	s.run(ctx, "emails", len(docs), func(ctx context.Context) error {
		return s.backend.UpsertEmails(ctx, docs)
	})
}

// IndexTeams queues an upsert of the given teams.
func (s *Syncer) IndexTeams(ctx context.Context, list []teams.Team) {
	if s.backend == nil || len(list) == 0 {
		return
	}
	docs := make([]TeamDoc, 0, len(list))
	for _, t := range list {
		docs = append(docs, TeamToDoc(t))
	}
	s.run(ctx, "teams", len(docs), func(ctx context.Context) error {
		return s.backend.UpsertTeams(ctx, docs)
	})
}

// RemoveTeam queues deletion of a team document.
func (s *Syncer) RemoveTeam(ctx context.Context, team teams.Team) {
	if s.backend == nil {
		return
	}
	id := TeamDocID(team.CompanyID, team.TeamName)
	s.run(ctx, "teams", 1, func(ctx context.Context) error {
		return s.backend.DeleteTeam(ctx, id)
	})
}

// Wait blocks until queued syncs finish or ctx is done.
func (s *Syncer) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Syncer) run(ctx context.Context, index string, count int, op func(context.Context) error) {
	select {
	case s.slots <- struct{}{}:
	default:
		metrics.IncSearchSync(index, "dropped")
		telemetry.Warn("search.sync.dropped", map[string]any{"index": index, "count": count})
		return
	}
	// Request contexts end with the response; the sync outlives them.
	bg := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.slots }()

		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = s.opts.InitialInterval
		policy.MaxElapsedTime = s.opts.MaxElapsedTime

		attempts := 0
		err := backoff.Retry(func() error {
			attempts++
			return op(bg)
		}, backoff.WithContext(policy, bg))
		if err != nil {
			metrics.IncSearchSync(index, "failed")
			telemetry.Warn("search.sync.failed", map[string]any{
				"index":    index,
				"count":    count,
				"attempts": attempts,
				"error":    err.Error(),
			})
			return
		}
		metrics.IncSearchSync(index, "ok")
	}()
}

var (
	_ emails.Indexer = (*Syncer)(nil)
	_ teams.Indexer  = (*Syncer)(nil)
)
