package companies

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"mailsplit-backend/internal/shared/telemetry"
)

// Service contains business logic for companies.
type Service struct {
	Repo CompaniesRepo
}

// List returns all companies, creating the default company when there are none.
func (s *Service) List(ctx context.Context) ([]Company, error) {
	list, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) > 0 {
		return list, nil
	}
	def, err := s.createDefault(ctx)
	if err != nil {
		return nil, err
	}
	return []Company{def}, nil
}

// Resolve maps a requested company id to an existing company. An empty, malformed or
// unknown id falls back to the oldest company.
func (s *Service) Resolve(ctx context.Context, requested string) (int64, error) {
	if raw := strings.TrimSpace(requested); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil && id > 0 {
			c, err := s.Repo.Get(ctx, id)
			if err == nil {
				return c.ID, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return 0, err
			}
		}
	}
	list, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return list[0].ID, nil
}

// Get returns a company by id.
func (s *Service) Get(ctx context.Context, id int64) (Company, error) {
	if id <= 0 {
		return Company{}, ErrInvalidInput
	}
	return s.Repo.Get(ctx, id)
}

func (s *Service) createDefault(ctx context.Context) (Company, error) {
	c, err := s.Repo.Create(ctx, DefaultName, DefaultSlug)
	if err != nil {
		return Company{}, err
	}
	telemetry.Info("companies.default_created", map[string]any{"company_id": c.ID})
	return c, nil
}
