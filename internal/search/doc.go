package search

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"
	"unicode"

	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/teams"
)

// EmailDoc is the indexed shape of an email.
type EmailDoc struct {
	ID               string    `json:"id"`
	CompanyID        int64     `json:"company_id"`
	From             string    `json:"from"`
	Subject          string    `json:"subject"`
	Preview          string    `json:"preview"`
	Content          string    `json:"content"`
	AssignedTeams    []string  `json:"assignedTeams"`
	ProcessingStatus string    `json:"processingStatus"`
	Notes            string    `json:"notes,omitempty"`
	Date             time.Time `json:"date"`
}

// TeamDoc is the indexed shape of a team.
type TeamDoc struct {
	ID            string   `json:"id"`
	CompanyID     int64    `json:"company_id"`
	TeamName      string   `json:"team_name"`
	Description   string   `json:"description"`
	Products      []string `json:"products"`
	IssuesHandled []string `json:"issues_handled"`
	ContactEmail  []string `json:"contact_email"`
}

// EmailToDoc converts an email to its index document.
func EmailToDoc(e emails.Email) EmailDoc {
	teamsList := e.AssignedTeams
	if teamsList == nil {
		teamsList = []string{}
	}
	return EmailDoc{
		ID:               strconv.FormatInt(e.ID, 10),
		CompanyID:        e.CompanyID,
		From:             e.From,
		Subject:          e.Subject,
		Preview:          e.DisplayPreview(),
		Content:          e.Content,
		AssignedTeams:    teamsList,
		ProcessingStatus: string(e.ProcessingStatus),
		Notes:            e.Notes,
		Date:             e.CreatedAt,
	}
}

// TeamToDoc converts a team to its index document.
func TeamToDoc(t teams.Team) TeamDoc {
	return TeamDoc{
		ID:            TeamDocID(t.CompanyID, t.TeamName),
		CompanyID:     t.CompanyID,
		TeamName:      t.TeamName,
		Description:   t.Description,
		Products:      orEmpty(t.Products),
		IssuesHandled: orEmpty(t.IssuesHandled),
		ContactEmail:  orEmpty(t.ContactEmail),
	}
}

// TeamDocID builds a primary key from the company and team name. Index keys only
// allow [A-Za-z0-9_-], so the name is slugged and suffixed with a hash of the raw
// name to keep distinct names distinct.
func TeamDocID(companyID int64, name string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			lastDash = false
			continue
		}
		if !lastDash && b.Len() > 0 {
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	if slug == "" {
		return fmt.Sprintf("%d-%08x", companyID, h.Sum32())
	}
	return fmt.Sprintf("%d-%s-%08x", companyID, slug, h.Sum32())
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
