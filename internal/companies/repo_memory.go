package companies

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of CompaniesRepo.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	data   []Company
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{nextID: 1}
}

func (r *MemoryRepo) List(ctx context.Context) ([]Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Company, len(r.data))
	copy(out, r.data)
	return out, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int64) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.data {
		if c.ID == id {
			return c, nil
		}
	}
	return Company{}, ErrNotFound
}

// Create returns the existing company when the slug is already taken.
func (r *MemoryRepo) Create(ctx context.Context, name, slug string) (Company, error) {
	if err := ctx.Err(); err != nil {
		return Company{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.data {
		if c.Slug == slug {
			return c, nil
		}
	}
	c := Company{ID: r.nextID, Name: name, Slug: slug, CreatedAt: time.Now().UTC()}
	r.nextID++
	r.data = append(r.data, c)
	return c, nil
}
