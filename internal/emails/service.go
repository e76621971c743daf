package emails

import (
	"context"
	"strings"
	"time"

	"mailsplit-backend/internal/queue"
	"mailsplit-backend/internal/shared/telemetry"
)

// Indexer receives email changes for the search index. Implementations must not block.
type Indexer interface {
	IndexEmails(ctx context.Context, emails []Email)
}

type noopIndexer struct{}

func (noopIndexer) IndexEmails(context.Context, []Email) {}

// Assigner runs the assignment pass for one email and returns the stored result.
type Assigner interface {
	AssignEmail(ctx context.Context, companyID, emailID int64) (Email, error)
}

// Service contains business logic for emails.
type Service struct {
	Repo         EmailsRepo
	Indexer      Indexer
	Queue        queue.Client
	Assigner     Assigner
	SeedMockData bool
	Seed         []byte
	Now          func() time.Time
}

// NewService constructs a Service. queueClient may be nil.
func NewService(repo EmailsRepo, indexer Indexer, queueClient queue.Client, seedMockData bool) *Service {
	if indexer == nil {
		indexer = noopIndexer{}
	}
	return &Service{
		Repo:         repo,
		Indexer:      indexer,
		Queue:        queueClient,
		SeedMockData: seedMockData,
		Seed:         mockEmailsYAML,
		Now:          func() time.Time { return time.Now().UTC() },
	}
}

// List returns the company's emails, newest first. An empty inbox is seeded with
// mock emails when seeding is enabled.
func (s *Service) List(ctx context.Context, companyID int64) ([]Email, error) {
	list, err := s.Repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 && s.SeedMockData {
		list, err = s.seed(ctx, companyID)
		if err != nil {
			return nil, err
		}
	}
	s.Indexer.IndexEmails(ctx, list)
	return list, nil
}

// Emails returns the company's emails without seeding or indexing side effects.
func (s *Service) Emails(ctx context.Context, companyID int64) ([]Email, error) {
	return s.Repo.List(ctx, companyID)
}

// Get returns an email by id.
func (s *Service) Get(ctx context.Context, companyID, id int64) (Email, error) {
	if id <= 0 {
		return Email{}, ErrNotFound
	}
	return s.Repo.Get(ctx, companyID, id)
}

// Create stores a new email and enqueues an assignment job when a queue is configured.
// A failed enqueue is logged and does not fail the create.
func (s *Service) Create(ctx context.Context, companyID int64, in EmailInput, requestID string) (Email, error) {
	if in.From == nil || strings.TrimSpace(*in.From) == "" {
		return Email{}, ErrInvalidInput
	}
	if err := in.validate(); err != nil {
		return Email{}, err
	}
	now := s.Now()
	email := Email{
		CompanyID:        companyID,
		From:             strings.TrimSpace(*in.From),
		ProcessingStatus: StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if in.Date != nil && !in.Date.IsZero() {
		email.CreatedAt = in.Date.UTC()
	}
	in.applyTo(&email)
	if strings.TrimSpace(email.Preview) == "" {
		email.Preview = derivePreview(email.Content)
	}
	if err := s.Repo.Create(ctx, &email); err != nil {
		return Email{}, err
	}
	s.Indexer.IndexEmails(ctx, []Email{email})
	s.enqueue(ctx, email, requestID)
	return email, nil
}

// Patch applies the fields present in the input to the email.
func (s *Service) Patch(ctx context.Context, companyID, id int64, in EmailInput) (Email, error) {
	if err := in.validate(); err != nil {
		return Email{}, err
	}
	email, err := s.Get(ctx, companyID, id)
	if err != nil {
		return Email{}, err
	}
	in.applyTo(&email)
	email.UpdatedAt = s.Now()
	if err := s.Repo.Update(ctx, email); err != nil {
		return Email{}, err
	}
	s.Indexer.IndexEmails(ctx, []Email{email})
	return email, nil
}

// Assign runs the assignment pass synchronously.
func (s *Service) Assign(ctx context.Context, companyID, id int64) (Email, error) {
	if s.Assigner == nil {
		return Email{}, ErrAssignerUnavailable
	}
	if _, err := s.Get(ctx, companyID, id); err != nil {
		return Email{}, err
	}
	return s.Assigner.AssignEmail(ctx, companyID, id)
}

// SetStatus moves the email to status without touching other fields.
func (s *Service) SetStatus(ctx context.Context, companyID, id int64, status Status) (Email, error) {
	email, err := s.Get(ctx, companyID, id)
	if err != nil {
		return Email{}, err
	}
	email.ProcessingStatus = status
	email.UpdatedAt = s.Now()
	if err := s.Repo.Update(ctx, email); err != nil {
		return Email{}, err
	}
	return email, nil
}

// RecordAssignment stores the outcome of an assignment pass and marks the email processed.
func (s *Service) RecordAssignment(ctx context.Context, companyID, id int64, a Assignment) (Email, error) {
	email, err := s.Get(ctx, companyID, id)
	if err != nil {
		return Email{}, err
	}
	now := s.Now()
	email.AssignedTeams = cleanTeams(a.Teams)
	email.AssignmentReason = a.Reason
	email.ExtractedContacts = a.Contacts
	email.ProcessingStatus = StatusProcessed
	email.ProcessedAt = &now
	email.UpdatedAt = now
	if err := s.Repo.Update(ctx, email); err != nil {
		return Email{}, err
	}
	s.Indexer.IndexEmails(ctx, []Email{email})
	return email, nil
}

func (s *Service) enqueue(ctx context.Context, email Email, requestID string) {
	if s.Queue == nil {
		return
	}
	msg := queue.NewMessage(email.ID, email.CompanyID, requestID)
	if err := s.Queue.Send(ctx, msg); err != nil {
		telemetry.Warn("emails.enqueue.failed", map[string]any{
			"email_id":   email.ID,
			"company_id": email.CompanyID,
			"request_id": requestID,
			"error":      err.Error(),
		})
		return
	}
	telemetry.Info("emails.enqueued", map[string]any{
		"email_id":   email.ID,
		"company_id": email.CompanyID,
		"request_id": requestID,
	})
}

func (s *Service) seed(ctx context.Context, companyID int64) ([]Email, error) {
	mocks, err := loadSeedEmails(s.Seed)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	out := make([]Email, 0, len(mocks))
	for _, m := range mocks {
		email := Email{
			CompanyID:        companyID,
			From:             m.From,
			Subject:          m.Subject,
			Preview:          m.Preview,
			Content:          strings.TrimSpace(m.Content),
			AssignedTeams:    cleanTeams(m.AssignedTeams),
			AssignmentReason: strings.TrimSpace(m.AssignmentReason),
			Notes:            m.Notes,
			ProcessingStatus: StatusPending,
			CreatedAt:        m.Date.UTC(),
			UpdatedAt:        now,
		}
		if email.CreatedAt.IsZero() {
			email.CreatedAt = now
		}
		if err := s.Repo.Create(ctx, &email); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	telemetry.Info("emails.seeded", map[string]any{"company_id": companyID, "count": len(out)})
	return out, nil
}
