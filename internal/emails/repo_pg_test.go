package emails

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var emailColumnNames = []string{"id", "company_id", "from_address", "subject", "body", "preview", "assigned_teams", "assignment_reason", "notes", "extracted_contacts", "processing_status", "processed_at", "created_at", "updated_at"}

func TestPGRepoCreateReturnsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	email := &Email{CompanyID: 1, From: "a@b.test", Subject: "hi", AssignedTeams: []string{"Ops"}, ProcessingStatus: StatusPending, CreatedAt: now, UpdatedAt: now}
	mock.ExpectQuery("INSERT INTO emails").
		WithArgs(int64(1), "a@b.test", "hi", nil, nil, []byte(`["Ops"]`), nil, nil, []byte(nil), "pending", sqlmock.AnyArg(), now, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(17)))

	if err := (&PGRepo{DB: db}).Create(context.Background(), email); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if email.ID != 17 {
		t.Fatalf("expected id 17, got %d", email.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetDecodesNullableColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	now := time.Now().UTC()
	rows := sqlmock.NewRows(emailColumnNames).
		AddRow(int64(5), int64(1), "a@b.test", nil, "body text", nil, []byte(`["Sales Team"]`), "pricing", nil,
			[]byte(`[{"email":"sales@company.com","team_name":"Sales Team"}]`), "processed", now, now, now)
	mock.ExpectQuery("FROM emails\\s+WHERE company_id = \\$1 AND id = \\$2").
		WithArgs(int64(1), int64(5)).
		WillReturnRows(rows)

	got, err := (&PGRepo{DB: db}).Get(context.Background(), 1, 5)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Subject != "" || got.Content != "body text" || got.AssignedTeam() != "Sales Team" {
		t.Fatalf("unexpected email %+v", got)
	}
	if len(got.ExtractedContacts) != 1 || got.ExtractedContacts[0].Email != "sales@company.com" {
		t.Fatalf("unexpected contacts %+v", got.ExtractedContacts)
	}
	if got.ProcessingStatus != StatusProcessed || got.ProcessedAt == nil {
		t.Fatalf("unexpected status fields %+v", got)
	}
}

func TestPGRepoGetMapsNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("FROM emails").WillReturnRows(sqlmock.NewRows(emailColumnNames))
	if _, err := (&PGRepo{DB: db}).Get(context.Background(), 1, 9); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoUpdateRequiresRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE emails").WillReturnResult(sqlmock.NewResult(0, 0))
	err = (&PGRepo{DB: db}).Update(context.Background(), Email{ID: 3, CompanyID: 1, ProcessingStatus: StatusPending})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
