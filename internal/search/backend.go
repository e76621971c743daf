package search

import "context"

// Backend is a hosted search index holding emails and teams.
type Backend interface {
	Configure(ctx context.Context) error
	UpsertEmails(ctx context.Context, docs []EmailDoc) error
	UpsertTeams(ctx context.Context, docs []TeamDoc) error
	DeleteTeam(ctx context.Context, id string) error
	SearchEmails(ctx context.Context, companyID int64, query string, limit int) ([]EmailDoc, error)
	SearchTeams(ctx context.Context, companyID int64, query string, limit int) ([]TeamDoc, error)
}
