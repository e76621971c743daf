package teams

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestPGRepoCreateEncodesLists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	team := Team{ID: "t-1", CompanyID: 1, TeamName: "Ops", Description: "d", ContactEmail: []string{"ops@acme.com"}, CreatedAt: now, UpdatedAt: now}
	mock.ExpectExec("INSERT INTO teams").
		WithArgs("t-1", int64(1), "Ops", "d", []byte(`[]`), []byte(`[]`), []byte(`["ops@acme.com"]`), now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := (&PGRepo{DB: db}).Create(context.Background(), team); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("INSERT INTO teams").WillReturnError(&pgconn.PgError{Code: "23505"})
	err = (&PGRepo{DB: db}).Create(context.Background(), Team{ID: "t", TeamName: "Ops"})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPGRepoGetByNameDecodesJSONB(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "company_id", "team_name", "description", "products", "issues_handled", "contact_email", "created_at", "updated_at"}).
		AddRow("t-1", int64(1), "Ops", "d", []byte(`["Pager"]`), []byte(`null`), []byte(`["ops@acme.com"]`), now, now)
	mock.ExpectQuery("FROM teams\\s+WHERE company_id = \\$1 AND team_name = \\$2").
		WithArgs(int64(1), "Ops").
		WillReturnRows(rows)

	team, err := (&PGRepo{DB: db}).GetByName(context.Background(), 1, "Ops")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if len(team.Products) != 1 || team.IssuesHandled == nil || team.ContactEmail[0] != "ops@acme.com" {
		t.Fatalf("unexpected team %+v", team)
	}
}

func TestPGRepoDeleteMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("DELETE FROM teams").WithArgs(int64(1), "Ghost").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := (&PGRepo{DB: db}).Delete(context.Background(), 1, "Ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
