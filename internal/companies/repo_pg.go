package companies

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements CompaniesRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) List(ctx context.Context) ([]Company, error) {
	const query = `
SELECT id, name, slug, created_at
FROM companies
ORDER BY created_at ASC, id ASC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Company{}
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, id int64) (Company, error) {
	const query = `
SELECT id, name, slug, created_at
FROM companies
WHERE id = $1`
	var c Company
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Company{}, ErrNotFound
		}
		return Company{}, err
	}
	return c, nil
}

// Create inserts a company, or returns the existing row when the slug is taken so that
// concurrent default-company creation converges on one row.
func (r *PGRepo) Create(ctx context.Context, name, slug string) (Company, error) {
	const query = `
INSERT INTO companies (name, slug)
VALUES ($1, $2)
ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
RETURNING id, name, slug, created_at`
	var c Company
	if err := r.DB.QueryRowContext(ctx, query, name, slug).Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
		return Company{}, err
	}
	return c, nil
}
