package emails

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// EmailInput carries create and patch fields. Nil fields are left unchanged.
type EmailInput struct {
	From              *string             `json:"from"`
	Subject           *string             `json:"subject"`
	Preview           *string             `json:"preview"`
	Content           *string             `json:"content"`
	Date              *time.Time          `json:"date"`
	AssignedTeam      *string             `json:"assignedTeam"`
	AssignedTeams     *[]string           `json:"assignedTeams"`
	AssignmentReason  *string             `json:"assignmentReason"`
	Notes             *string             `json:"notes"`
	ExtractedContacts *[]ExtractedContact `json:"extractedContacts"`
	ProcessingStatus  *string             `json:"processingStatus"`
	ProcessedAt       optionalTime        `json:"processedAt"`
}

// optionalTime records whether the key was present so null can clear the value.
type optionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *optionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

func (in EmailInput) validate() error {
	if in.ProcessingStatus != nil && *in.ProcessingStatus != "" && !Status(*in.ProcessingStatus).Valid() {
		return ErrInvalidInput
	}
	return nil
}

// assignedTeams resolves the team list, preferring assignedTeams over the legacy field.
func (in EmailInput) assignedTeams() ([]string, bool) {
	if in.AssignedTeams != nil {
		return cleanTeams(*in.AssignedTeams), true
	}
	if in.AssignedTeam != nil {
		return cleanTeams([]string{*in.AssignedTeam}), true
	}
	return nil, false
}

func (in EmailInput) applyTo(e *Email) {
	if in.Subject != nil {
		e.Subject = *in.Subject
	}
	if in.Content != nil {
		e.Content = *in.Content
	}
	if in.Preview != nil {
		e.Preview = *in.Preview
	}
	if teams, ok := in.assignedTeams(); ok {
		e.AssignedTeams = teams
	}
	if in.AssignmentReason != nil {
		e.AssignmentReason = *in.AssignmentReason
	}
	if in.Notes != nil {
		e.Notes = *in.Notes
	}
	if in.ExtractedContacts != nil {
		e.ExtractedContacts = *in.ExtractedContacts
	}
	if in.ProcessingStatus != nil {
		e.ProcessingStatus = Status(*in.ProcessingStatus)
		if e.ProcessingStatus == "" {
			e.ProcessingStatus = StatusPending
		}
	}
	if in.ProcessedAt.Set {
		e.ProcessedAt = in.ProcessedAt.Value
	}
}

func cleanTeams(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// EmailResponse is the outward-facing representation of an email.
type EmailResponse struct {
	ID                string             `json:"id"`
	From              string             `json:"from"`
	Subject           string             `json:"subject"`
	Preview           string             `json:"preview"`
	Content           string             `json:"content"`
	Date              time.Time          `json:"date"`
	CompanyID         int64              `json:"company_id"`
	AssignedTeam      string             `json:"assignedTeam,omitempty"`
	AssignedTeams     []string           `json:"assignedTeams,omitempty"`
	AssignmentReason  string             `json:"assignmentReason,omitempty"`
	Notes             string             `json:"notes,omitempty"`
	ExtractedContacts []ExtractedContact `json:"extractedContacts,omitempty"`
	ProcessingStatus  string             `json:"processingStatus,omitempty"`
	ProcessedAt       *time.Time         `json:"processedAt,omitempty"`
}

// ToResponse converts an Email to its API shape.
func ToResponse(e Email) EmailResponse {
	return EmailResponse{
		ID:                strconv.FormatInt(e.ID, 10),
		From:              e.From,
		Subject:           e.Subject,
		Preview:           e.DisplayPreview(),
		Content:           e.Content,
		Date:              e.CreatedAt,
		CompanyID:         e.CompanyID,
		AssignedTeam:      e.AssignedTeam(),
		AssignedTeams:     e.AssignedTeams,
		AssignmentReason:  e.AssignmentReason,
		Notes:             e.Notes,
		ExtractedContacts: e.ExtractedContacts,
		ProcessingStatus:  string(e.ProcessingStatus),
		ProcessedAt:       e.ProcessedAt,
	}
}
