package assign

import (
	"context"
	"errors"
	"time"

	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/llm"
	"mailsplit-backend/internal/shared/metrics"
	"mailsplit-backend/internal/shared/telemetry"
	"mailsplit-backend/internal/teams"
)

// DefaultProviderTimeout bounds one provider call.
const DefaultProviderTimeout = 30 * time.Second

// Tier names the stage that produced an assignment.
const (
	TierAI        = "ai"
	TierHeuristic = "heuristic"
)

// EmailStore is the subset of the emails service the assignment pass needs.
type EmailStore interface {
	Get(ctx context.Context, companyID, id int64) (emails.Email, error)
	SetStatus(ctx context.Context, companyID, id int64, status emails.Status) (emails.Email, error)
	RecordAssignment(ctx context.Context, companyID, id int64, a emails.Assignment) (emails.Email, error)
}

// TeamSource lists a company's teams.
type TeamSource interface {
	Teams(ctx context.Context, companyID int64) ([]teams.Team, error)
}

// Service routes emails to teams. Providers are tried in order before the keyword heuristic.
type Service struct {
	Emails     EmailStore
	TeamSource TeamSource
	completers []llm.Completer
	timeout    time.Duration
}

// NewService builds a Service over an ordered completer list. Nil completers are dropped.
func NewService(store EmailStore, source TeamSource, timeout time.Duration, completers ...llm.Completer) *Service {
	if timeout <= 0 {
		timeout = DefaultProviderTimeout
	}
	kept := make([]llm.Completer, 0, len(completers))
	for _, c := range completers {
		if c != nil {
			kept = append(kept, c)
		}
	}
	return &Service{Emails: store, TeamSource: source, completers: kept, timeout: timeout}
}

// AssignEmail runs the assignment pass for one email and stores the result. The email
// is marked processing while the pass runs and failed when it cannot be completed.
func (s *Service) AssignEmail(ctx context.Context, companyID, emailID int64) (emails.Email, error) {
	email, err := s.Emails.SetStatus(ctx, companyID, emailID, emails.StatusProcessing)
	if err != nil {
		if !errors.Is(err, emails.ErrNotFound) {
			metrics.IncAssignJob("failed")
		}
		return emails.Email{}, err
	}

	list, err := s.TeamSource.Teams(ctx, companyID)
	if err != nil {
		return emails.Email{}, s.fail(ctx, email, err)
	}

	assignment, tier := s.Decide(ctx, email, list)
	stored, err := s.Emails.RecordAssignment(ctx, companyID, emailID, assignment)
	if err != nil {
		return emails.Email{}, s.fail(ctx, email, err)
	}

	outcome := tier
	if len(assignment.Teams) == 0 {
		outcome = "unassigned"
	}
	metrics.IncAssignJob(outcome)
	telemetry.Info("assign.completed", map[string]any{
		"email_id":   emailID,
		"company_id": companyID,
		"tier":       tier,
		"teams":      assignment.Teams,
	})
	return stored, nil
}

// Decide picks teams for the email without persisting anything.
func (s *Service) Decide(ctx context.Context, email emails.Email, list []teams.Team) (emails.Assignment, string) {
	if len(list) == 0 {
		return emails.Assignment{Teams: []string{}, Reason: "No teams are configured."}, TierHeuristic
	}
	if len(s.completers) > 0 {
		req := buildRequest(email, list)
		for _, c := range s.completers {
			if ctx.Err() != nil {
				break
			}
			start := time.Now()
			assignment, err := s.try(ctx, c, req, list)
			elapsed := time.Since(start)
			outcome := outcomeFor(err)
			metrics.ObserveProviderAttempt(c.Name(), purpose, outcome, elapsed)
			if err == nil {
				return assignment, TierAI
			}
			telemetry.Warn("assign.provider.failed", map[string]any{
				"provider":    c.Name(),
				"outcome":     outcome,
				"email_id":    email.ID,
				"duration_ms": elapsed.Milliseconds(),
				"error":       err.Error(),
			})
		}
	}
	metrics.IncFallback(purpose)
	return Heuristic(email, list), TierHeuristic
}

func (s *Service) try(ctx context.Context, c llm.Completer, req llm.Request, list []teams.Team) (emails.Assignment, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	completion, err := c.Complete(ctx, req)
	if err != nil {
		return emails.Assignment{}, err
	}
	return decodeAnswer(completion, list)
}

func (s *Service) fail(ctx context.Context, email emails.Email, cause error) error {
	metrics.IncAssignJob("failed")
	telemetry.Error("assign.failed", map[string]any{
		"email_id":   email.ID,
		"company_id": email.CompanyID,
		"error":      cause.Error(),
	})
	// The caller's context may already be done; the status write must still land.
	if _, err := s.Emails.SetStatus(context.WithoutCancel(ctx), email.CompanyID, email.ID, emails.StatusFailed); err != nil {
		telemetry.Warn("assign.mark_failed", map[string]any{"email_id": email.ID, "error": err.Error()})
	}
	return cause
}

func outcomeFor(err error) string {
	if errors.Is(err, errNoAssignmentField) || errors.Is(err, errOnlyUnknownTeams) {
		return "no_json"
	}
	return llm.Outcome(err)
}

var _ emails.Assigner = (*Service)(nil)
