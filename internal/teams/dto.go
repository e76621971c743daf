package teams

import (
	"encoding/json"
	"strings"
	"time"
)

// TeamInput carries create and patch fields. Nil fields are left unchanged.
type TeamInput struct {
	TeamName      *string    `json:"team_name"`
	Description   *string    `json:"description"`
	Products      *[]string  `json:"products"`
	IssuesHandled *[]string  `json:"issues_handled"`
	ContactEmail  *emailList `json:"contact_email"`
}

// emailList accepts either a JSON array or a single string.
type emailList []string

func (l *emailList) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		if strings.TrimSpace(single) == "" {
			*l = []string{}
		} else {
			*l = []string{strings.TrimSpace(single)}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

func (in TeamInput) applyTo(team *Team) {
	if in.TeamName != nil {
		team.TeamName = strings.TrimSpace(*in.TeamName)
	}
	if in.Description != nil {
		team.Description = *in.Description
	}
	if in.Products != nil {
		team.Products = nonNil(*in.Products)
	}
	if in.IssuesHandled != nil {
		team.IssuesHandled = nonNil(*in.IssuesHandled)
	}
	if in.ContactEmail != nil {
		team.ContactEmail = nonNil(*in.ContactEmail)
	}
	team.Products = nonNil(team.Products)
	team.IssuesHandled = nonNil(team.IssuesHandled)
	team.ContactEmail = nonNil(team.ContactEmail)
}

// TeamResponse is the outward-facing representation of a team.
type TeamResponse struct {
	ID            string    `json:"id"`
	CompanyID     int64     `json:"company_id"`
	TeamName      string    `json:"team_name"`
	Description   string    `json:"description"`
	Products      []string  `json:"products"`
	IssuesHandled []string  `json:"issues_handled"`
	ContactEmail  []string  `json:"contact_email"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toResponse(t Team) TeamResponse {
	return TeamResponse{
		ID:            t.ID,
		CompanyID:     t.CompanyID,
		TeamName:      t.TeamName,
		Description:   t.Description,
		Products:      nonNil(t.Products),
		IssuesHandled: nonNil(t.IssuesHandled),
		ContactEmail:  nonNil(t.ContactEmail),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
