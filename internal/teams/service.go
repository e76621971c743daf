package teams

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"mailsplit-backend/internal/shared/telemetry"
)

// Indexer receives team changes for the search index. Implementations must not block.
type Indexer interface {
	IndexTeams(ctx context.Context, teams []Team)
	RemoveTeam(ctx context.Context, team Team)
}

type noopIndexer struct{}

func (noopIndexer) IndexTeams(context.Context, []Team) {}
func (noopIndexer) RemoveTeam(context.Context, Team)   {}

// Service contains business logic for teams.
type Service struct {
	Repo    TeamsRepo
	Indexer Indexer
	Seed    []byte
	Now     func() time.Time
}

// NewService constructs a Service seeded from the embedded starter teams.
func NewService(repo TeamsRepo, indexer Indexer) *Service {
	if indexer == nil {
		indexer = noopIndexer{}
	}
	return &Service{Repo: repo, Indexer: indexer, Seed: seedYAML, Now: func() time.Time { return time.Now().UTC() }}
}

// List returns the company's teams. A company without teams gets the starter teams.
func (s *Service) List(ctx context.Context, companyID int64) ([]Team, error) {
	list, err := s.Repo.List(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 && len(s.Seed) > 0 {
		list, err = s.seed(ctx, companyID)
		if err != nil {
			return nil, err
		}
	}
	s.Indexer.IndexTeams(ctx, list)
	return list, nil
}

// Teams returns the company's teams without seeding or indexing side effects.
func (s *Service) Teams(ctx context.Context, companyID int64) ([]Team, error) {
	return s.Repo.List(ctx, companyID)
}

// Get returns a team by name.
func (s *Service) Get(ctx context.Context, companyID int64, name string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, ErrInvalidInput
	}
	return s.Repo.GetByName(ctx, companyID, name)
}

// Create stores a new team.
func (s *Service) Create(ctx context.Context, companyID int64, in TeamInput) (Team, error) {
	if in.TeamName == nil || strings.TrimSpace(*in.TeamName) == "" {
		return Team{}, ErrInvalidInput
	}
	now := s.Now()
	team := Team{
		ID:        uuid.NewString(),
		CompanyID: companyID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	in.applyTo(&team)
	if err := s.Repo.Create(ctx, team); err != nil {
		return Team{}, err
	}
	s.Indexer.IndexTeams(ctx, []Team{team})
	return team, nil
}

// Update applies the fields present in the input to the named team.
func (s *Service) Update(ctx context.Context, companyID int64, name string, in TeamInput) (Team, error) {
	team, err := s.Get(ctx, companyID, name)
	if err != nil {
		return Team{}, err
	}
	if in.TeamName != nil && strings.TrimSpace(*in.TeamName) == "" {
		return Team{}, ErrInvalidInput
	}
	original := team
	in.applyTo(&team)
	team.UpdatedAt = s.Now()
	if err := s.Repo.Update(ctx, original.TeamName, team); err != nil {
		return Team{}, err
	}
	if team.TeamName != original.TeamName {
		s.Indexer.RemoveTeam(ctx, original)
	}
	s.Indexer.IndexTeams(ctx, []Team{team})
	return team, nil
}

// Delete removes the named team.
func (s *Service) Delete(ctx context.Context, companyID int64, name string) error {
	team, err := s.Get(ctx, companyID, name)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, companyID, team.TeamName); err != nil {
		return err
	}
	s.Indexer.RemoveTeam(ctx, team)
	return nil
}

func (s *Service) seed(ctx context.Context, companyID int64) ([]Team, error) {
	starters, err := loadSeedTeams(s.Seed)
	if err != nil {
		return nil, err
	}
	base := s.Now()
	out := make([]Team, 0, len(starters))
	for i, st := range starters {
		// Earlier entries get later timestamps so newest-first order matches the file.
		created := base.Add(-time.Duration(i) * time.Millisecond)
		team := Team{
			ID:            uuid.NewString(),
			CompanyID:     companyID,
			TeamName:      st.TeamName,
			Description:   st.Description,
			Products:      nonNil(st.Products),
			IssuesHandled: nonNil(st.IssuesHandled),
			ContactEmail:  nonNil(st.ContactEmail),
			CreatedAt:     created,
			UpdatedAt:     created,
		}
		if err := s.Repo.Create(ctx, team); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return nil, err
		}
		out = append(out, team)
	}
	telemetry.Info("teams.seeded", map[string]any{"company_id": companyID, "count": len(out)})
	return out, nil
}
