package emails

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of EmailsRepo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]Email
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[int64]Email)}
}

func (r *MemoryRepo) List(ctx context.Context, companyID int64) ([]Email, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := []Email{}
	for _, e := range r.data {
		if e.CompanyID == companyID {
			out = append(out, clone(e))
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, companyID, id int64) (Email, error) {
	if err := ctx.Err(); err != nil {
		return Email{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.data[id]
	if !ok || e.CompanyID != companyID {
		return Email{}, ErrNotFound
	}
	return clone(e), nil
}

func (r *MemoryRepo) Create(ctx context.Context, email *Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	email.ID = r.nextID
	r.data[email.ID] = clone(*email)
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, email Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.data[email.ID]
	if !ok || existing.CompanyID != email.CompanyID {
		return ErrNotFound
	}
	r.data[email.ID] = clone(email)
	return nil
}

func clone(e Email) Email {
	e.AssignedTeams = append([]string(nil), e.AssignedTeams...)
	e.ExtractedContacts = append([]ExtractedContact(nil), e.ExtractedContacts...)
	if e.ProcessedAt != nil {
		t := *e.ProcessedAt
		e.ProcessedAt = &t
	}
	return e
}
