package emails

import "context"

// EmailsRepo defines persistence operations for emails.
type EmailsRepo interface {
	// List returns the company's emails, newest first.
	List(ctx context.Context, companyID int64) ([]Email, error)
	Get(ctx context.Context, companyID, id int64) (Email, error)
	// Create stores the email and sets its ID.
	Create(ctx context.Context, email *Email) error
	Update(ctx context.Context, email Email) error
}
