package emails

import (
	"strings"
	"time"
)

// Status tracks where an email is in the assignment pipeline.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusFailed     Status = "failed"
)

// PreviewRunes is the length of a derived preview.
const PreviewRunes = 100

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusProcessed, StatusFailed:
		return true
	default:
		return false
	}
}

// ExtractedContact is a team contact suggested for an email.
type ExtractedContact struct {
	Email    string `json:"email"`
	TeamName string `json:"team_name"`
	Reason   string `json:"reason,omitempty"`
}

// Email is an inbound message routed to zero or more teams.
type Email struct {
	ID                int64
	CompanyID         int64
	From              string
	Subject           string
	Preview           string
	Content           string
	AssignedTeams     []string
	AssignmentReason  string
	Notes             string
	ExtractedContacts []ExtractedContact
	ProcessingStatus  Status
	ProcessedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AssignedTeam returns the first assigned team, or "".
func (e Email) AssignedTeam() string {
	if len(e.AssignedTeams) == 0 {
		return ""
	}
	return e.AssignedTeams[0]
}

// DisplayPreview returns the stored preview or the start of the content.
func (e Email) DisplayPreview() string {
	if strings.TrimSpace(e.Preview) != "" {
		return e.Preview
	}
	return derivePreview(e.Content)
}

func derivePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= PreviewRunes {
		return content
	}
	return string(runes[:PreviewRunes])
}

// Assignment is the outcome of one assignment pass.
type Assignment struct {
	Teams    []string
	Reason   string
	Contacts []ExtractedContact
}
