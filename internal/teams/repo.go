package teams

import "context"

// TeamsRepo defines persistence operations for teams.
type TeamsRepo interface {
	// List returns the company's teams, newest first.
	List(ctx context.Context, companyID int64) ([]Team, error)
	GetByName(ctx context.Context, companyID int64, name string) (Team, error)
	Create(ctx context.Context, team Team) error
	// Update replaces the team stored under originalName.
	Update(ctx context.Context, originalName string, team Team) error
	Delete(ctx context.Context, companyID int64, name string) error
}
