package companies

import "context"

// CompaniesRepo defines persistence operations for companies.
type CompaniesRepo interface {
	// List returns companies oldest first.
	List(ctx context.Context) ([]Company, error)
	Get(ctx context.Context, id int64) (Company, error)
	Create(ctx context.Context, name, slug string) (Company, error)
}
