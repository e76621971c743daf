package search

import (
	"context"
	"errors"
	"strings"

	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/shared/metrics"
	"mailsplit-backend/internal/shared/telemetry"
	"mailsplit-backend/internal/teams"
)

// DefaultLimit caps search results.
const DefaultLimit = 50

// Result types.
const (
	TypeEmails = "emails"
	TypeTeams  = "teams"
)

// Sources of a search result.
const (
	SourceIndex   = "meilisearch"
	SourceKeyword = "keyword"
)

// ErrInvalidType is returned for an unknown search type.
var ErrInvalidType = errors.New("type must be emails or teams")

// EmailLister lists a company's emails without side effects.
type EmailLister interface {
	Emails(ctx context.Context, companyID int64) ([]emails.Email, error)
}

// TeamLister lists a company's teams without side effects.
type TeamLister interface {
	Teams(ctx context.Context, companyID int64) ([]teams.Team, error)
}

// Service answers searches and bulk re-syncs. Backend may be nil, in which case
// searches use the keyword filter and syncs report an error.
type Service struct {
	Backend Backend
	Emails  EmailLister
	Teams   TeamLister
}

// Result is one search answer.
type Result struct {
	Type   string     `json:"type"`
	Query  string     `json:"query"`
	Source string     `json:"source"`
	Emails []EmailDoc `json:"emails,omitempty"`
	Teams  []TeamDoc  `json:"teams,omitempty"`
}

// SyncReport summarizes a bulk re-sync.
type SyncReport struct {
	Success      bool     `json:"success"`
	Configured   bool     `json:"configured"`
	EmailsSynced int      `json:"emailsSynced"`
	TeamsSynced  int      `json:"teamsSynced"`
	Errors       []string `json:"errors"`
}

// Search queries the index when configured and falls back to the keyword filter when
// it is not or when the index call fails.
func (s *Service) Search(ctx context.Context, companyID int64, kind, query string) (Result, error) {
	if kind == "" {
		kind = TypeEmails
	}
	if kind != TypeEmails && kind != TypeTeams {
		return Result{}, ErrInvalidType
	}
	res := Result{Type: kind, Query: query}

	if s.Backend != nil && strings.TrimSpace(query) != "" {
		var err error
		if kind == TypeEmails {
			res.Emails, err = s.Backend.SearchEmails(ctx, companyID, query, DefaultLimit)
		} else {
			res.Teams, err = s.Backend.SearchTeams(ctx, companyID, query, DefaultLimit)
		}
		if err == nil {
			res.Source = SourceIndex
			return res, nil
		}
		telemetry.Warn("search.index.failed", map[string]any{
			"type":       kind,
			"company_id": companyID,
			"error":      err.Error(),
		})
		res.Emails, res.Teams = nil, nil
	}

	res.Source = SourceKeyword
	if kind == TypeEmails {
		list, err := s.Emails.Emails(ctx, companyID)
		if err != nil {
			return Result{}, err
		}
		res.Emails = []EmailDoc{}
		for _, e := range list {
			doc := EmailToDoc(e)
			if MatchEmail(doc, query) {
				res.Emails = append(res.Emails, doc)
			}
			if len(res.Emails) == DefaultLimit {
				break
			}
		}
		return res, nil
	}

	list, err := s.Teams.Teams(ctx, companyID)
	if err != nil {
		return Result{}, err
	}
	res.Teams = []TeamDoc{}
	for _, t := range list {
		doc := TeamToDoc(t)
		if MatchTeam(doc, query) {
			res.Teams = append(res.Teams, doc)
		}
		if len(res.Teams) == DefaultLimit {
			break
		}
	}
	return res, nil
}

// Sync pushes every email and team of the company to the index, optionally
// reconfiguring the indexes first. Errors are collected, not returned.
func (s *Service) Sync(ctx context.Context, companyID int64, configure bool) SyncReport {
	report := SyncReport{Errors: []string{}}
	if s.Backend == nil {
		report.Errors = append(report.Errors, "search index is not configured")
		return report
	}

	if configure {
		if err := s.Backend.Configure(ctx); err != nil {
			report.Errors = append(report.Errors, "configure: "+err.Error())
		} else {
			report.Configured = true
		}
	}

	if list, err := s.Emails.Emails(ctx, companyID); err != nil {
		report.Errors = append(report.Errors, "list emails: "+err.Error())
	} else {
		docs := make([]EmailDoc, 0, len(list))
		for _, e := range list {
			docs = append(docs, EmailToDoc(e))
		}
		if err := s.Backend.UpsertEmails(ctx, docs); err != nil {
			report.Errors = append(report.Errors, "emails: "+err.Error())
			metrics.IncSearchSync(TypeEmails, "failed")
		} else {
			report.EmailsSynced = len(docs)
			metrics.IncSearchSync(TypeEmails, "ok")
		}
	}

	if list, err := s.Teams.Teams(ctx, companyID); err != nil {
		report.Errors = append(report.Errors, "list teams: "+err.Error())
	} else {
		docs := make([]TeamDoc, 0, len(list))
		for _, t := range list {
			docs = append(docs, TeamToDoc(t))
		}
		if err := s.Backend.UpsertTeams(ctx, docs); err != nil {
			report.Errors = append(report.Errors, "teams: "+err.Error())
			metrics.IncSearchSync(TypeTeams, "failed")
		} else {
			report.TeamsSynced = len(docs)
			metrics.IncSearchSync(TypeTeams, "ok")
		}
	}

	report.Success = len(report.Errors) == 0
	telemetry.Info("search.sync.bulk", map[string]any{
		"company_id":    companyID,
		"configured":    report.Configured,
		"emails_synced": report.EmailsSynced,
		"teams_synced":  report.TeamsSynced,
		"errors":        len(report.Errors),
	})
	return report
}
