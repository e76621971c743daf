package emails

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements EmailsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const emailColumns = `id, company_id, from_address, subject, body, preview, assigned_teams, assignment_reason, notes, extracted_contacts, processing_status, processed_at, created_at, updated_at`

func (r *PGRepo) List(ctx context.Context, companyID int64) ([]Email, error) {
	query := `
SELECT ` + emailColumns + `
FROM emails
WHERE company_id = $1
ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Email{}
	for rows.Next() {
		e, err := scanEmail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, companyID, id int64) (Email, error) {
	query := `
SELECT ` + emailColumns + `
FROM emails
WHERE company_id = $1 AND id = $2`
	e, err := scanEmail(r.DB.QueryRowContext(ctx, query, companyID, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Email{}, ErrNotFound
		}
		return Email{}, err
	}
	return e, nil
}

func (r *PGRepo) Create(ctx context.Context, email *Email) error {
	const query = `
INSERT INTO emails (company_id, from_address, subject, body, preview, assigned_teams, assignment_reason, notes, extracted_contacts, processing_status, processed_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING id`
	teams, contacts, err := encodeJSON(*email)
	if err != nil {
		return err
	}
	return r.DB.QueryRowContext(ctx, query,
		email.CompanyID,
		email.From,
		nullString(email.Subject),
		nullString(email.Content),
		nullString(email.Preview),
		teams,
		nullString(email.AssignmentReason),
		nullString(email.Notes),
		contacts,
		string(email.ProcessingStatus),
		email.ProcessedAt,
		email.CreatedAt,
		email.UpdatedAt,
	).Scan(&email.ID)
}

func (r *PGRepo) Update(ctx context.Context, email Email) error {
	const query = `
UPDATE emails
SET subject = $3, body = $4, preview = $5, assigned_teams = $6, assignment_reason = $7, notes = $8,
    extracted_contacts = $9, processing_status = $10, processed_at = $11, updated_at = $12
WHERE company_id = $1 AND id = $2`
	teams, contacts, err := encodeJSON(email)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		email.CompanyID,
		email.ID,
		nullString(email.Subject),
		nullString(email.Content),
		nullString(email.Preview),
		teams,
		nullString(email.AssignmentReason),
		nullString(email.Notes),
		contacts,
		string(email.ProcessingStatus),
		email.ProcessedAt,
		email.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmail(row rowScanner) (Email, error) {
	var (
		e                                     Email
		subject, body, preview, reason, notes sql.NullString
		teams, contacts                       []byte
		status                                string
		processedAt                           sql.NullTime
	)
	if err := row.Scan(
		&e.ID,
		&e.CompanyID,
		&e.From,
		&subject,
		&body,
		&preview,
		&teams,
		&reason,
		&notes,
		&contacts,
		&status,
		&processedAt,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return Email{}, err
	}
	e.Subject = subject.String
	e.Content = body.String
	e.Preview = preview.String
	e.AssignmentReason = reason.String
	e.Notes = notes.String
	e.ProcessingStatus = Status(status)
	if processedAt.Valid {
		t := processedAt.Time
		e.ProcessedAt = &t
	}
	if len(teams) > 0 {
		if err := json.Unmarshal(teams, &e.AssignedTeams); err != nil {
			return Email{}, err
		}
	}
	if len(contacts) > 0 {
		if err := json.Unmarshal(contacts, &e.ExtractedContacts); err != nil {
			return Email{}, err
		}
	}
	return e, nil
}

func encodeJSON(e Email) (teams, contacts []byte, err error) {
	list := e.AssignedTeams
	if list == nil {
		list = []string{}
	}
	if teams, err = json.Marshal(list); err != nil {
		return nil, nil, err
	}
	if e.ExtractedContacts == nil {
		return teams, nil, nil
	}
	if contacts, err = json.Marshal(e.ExtractedContacts); err != nil {
		return nil, nil, err
	}
	return teams, contacts, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
