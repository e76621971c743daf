package teams

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of TeamsRepo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[int64][]Team // companyId -> teams
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[int64][]Team)}
}

func (r *MemoryRepo) List(ctx context.Context, companyID int64) ([]Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Team, len(r.data[companyID]))
	copy(out, r.data[companyID])
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) GetByName(ctx context.Context, companyID int64, name string) (Team, error) {
	if err := ctx.Err(); err != nil {
		return Team{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := indexOf(r.data[companyID], name); i >= 0 {
		return r.data[companyID][i], nil
	}
	return Team{}, ErrNotFound
}

func (r *MemoryRepo) Create(ctx context.Context, team Team) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if indexOf(r.data[team.CompanyID], team.TeamName) >= 0 {
		return ErrConflict
	}
	r.data[team.CompanyID] = append(r.data[team.CompanyID], team)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, originalName string, team Team) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[team.CompanyID]
	i := indexOf(list, originalName)
	if i < 0 {
		return ErrNotFound
	}
	if team.TeamName != originalName && indexOf(list, team.TeamName) >= 0 {
		return ErrConflict
	}
	list[i] = team
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, companyID int64, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.data[companyID]
	i := indexOf(list, name)
	if i < 0 {
		return ErrNotFound
	}
	r.data[companyID] = append(list[:i:i], list[i+1:]...)
	return nil
}

func indexOf(list []Team, name string) int {
	for i := range list {
		if list[i].TeamName == name {
			return i
		}
	}
	return -1
}
