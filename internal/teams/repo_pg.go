package teams

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// PGRepo implements TeamsRepo using Postgres. List fields are stored as JSONB arrays.
type PGRepo struct {
	DB *sql.DB
}

const teamColumns = `id, company_id, team_name, description, products, issues_handled, contact_email, created_at, updated_at`

func (r *PGRepo) List(ctx context.Context, companyID int64) ([]Team, error) {
	query := `
SELECT ` + teamColumns + `
FROM teams
WHERE company_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Team{}
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, team)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByName(ctx context.Context, companyID int64, name string) (Team, error) {
	query := `
SELECT ` + teamColumns + `
FROM teams
WHERE company_id = $1 AND team_name = $2`
	team, err := scanTeam(r.DB.QueryRowContext(ctx, query, companyID, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Team{}, ErrNotFound
		}
		return Team{}, err
	}
	return team, nil
}

func (r *PGRepo) Create(ctx context.Context, team Team) error {
	const query = `
INSERT INTO teams (id, company_id, team_name, description, products, issues_handled, contact_email, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	products, issues, contacts, err := encodeLists(team)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		team.ID,
		team.CompanyID,
		team.TeamName,
		team.Description,
		products,
		issues,
		contacts,
		team.CreatedAt,
		team.UpdatedAt,
	)
	return mapWriteError(err)
}

func (r *PGRepo) Update(ctx context.Context, originalName string, team Team) error {
	const query = `
UPDATE teams
SET team_name = $3, description = $4, products = $5, issues_handled = $6, contact_email = $7, updated_at = $8
WHERE company_id = $1 AND team_name = $2`
	products, issues, contacts, err := encodeLists(team)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		team.CompanyID,
		originalName,
		team.TeamName,
		team.Description,
		products,
		issues,
		contacts,
		team.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, companyID int64, name string) error {
	const query = `DELETE FROM teams WHERE company_id = $1 AND team_name = $2`
	res, err := r.DB.ExecContext(ctx, query, companyID, name)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTeam(row rowScanner) (Team, error) {
	var team Team
	var products, issues, contacts []byte
	if err := row.Scan(
		&team.ID,
		&team.CompanyID,
		&team.TeamName,
		&team.Description,
		&products,
		&issues,
		&contacts,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return Team{}, err
	}
	if err := decodeList(products, &team.Products); err != nil {
		return Team{}, err
	}
	if err := decodeList(issues, &team.IssuesHandled); err != nil {
		return Team{}, err
	}
	if err := decodeList(contacts, &team.ContactEmail); err != nil {
		return Team{}, err
	}
	return team, nil
}

func encodeLists(team Team) (products, issues, contacts []byte, err error) {
	if products, err = json.Marshal(nonNil(team.Products)); err != nil {
		return nil, nil, nil, err
	}
	if issues, err = json.Marshal(nonNil(team.IssuesHandled)); err != nil {
		return nil, nil, nil, err
	}
	if contacts, err = json.Marshal(nonNil(team.ContactEmail)); err != nil {
		return nil, nil, nil, err
	}
	return products, issues, contacts, nil
}

func decodeList(raw []byte, dst *[]string) error {
	if len(raw) == 0 {
		*dst = []string{}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return err
	}
	*dst = nonNil(*dst)
	return nil
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrConflict
	}
	return err
}
