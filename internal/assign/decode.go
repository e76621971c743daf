package assign

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/llm"
	"mailsplit-backend/internal/teams"
)

var (
	errNoAssignmentField = errors.New("JSON object has no assigned_teams")
	errOnlyUnknownTeams  = errors.New("answer names no known team")
)

type rawAnswer struct {
	AssignedTeams *[]string `json:"assigned_teams"`
	Reason        string    `json:"reason"`
	Contacts      []struct {
		Email    string `json:"email"`
		TeamName string `json:"team_name"`
		Reason   string `json:"reason"`
	} `json:"contacts"`
}

// decodeAnswer maps a provider completion onto an Assignment. Team names are matched
// case-insensitively against the company's teams and unknown names are dropped. An
// answer whose teams are all unknown is rejected so the next tier can run.
func decodeAnswer(completion string, list []teams.Team) (emails.Assignment, error) {
	obj, ok := llm.FirstJSONObject(completion)
	if !ok {
		return emails.Assignment{}, llm.ErrNoJSONObject
	}
	var raw rawAnswer
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return emails.Assignment{}, fmt.Errorf("decode assignment JSON: %w", err)
	}
	if raw.AssignedTeams == nil {
		return emails.Assignment{}, errNoAssignmentField
	}

	known := make(map[string]string, len(list))
	for _, t := range list {
		known[strings.ToLower(strings.TrimSpace(t.TeamName))] = t.TeamName
	}
	canonical := func(name string) (string, bool) {
		n, ok := known[strings.ToLower(strings.TrimSpace(name))]
		return n, ok
	}

	out := emails.Assignment{Reason: strings.TrimSpace(raw.Reason), Teams: []string{}}
	seen := map[string]bool{}
	for _, name := range *raw.AssignedTeams {
		n, ok := canonical(name)
		if !ok || seen[n] {
			continue
		}
		seen[n] = true
		out.Teams = append(out.Teams, n)
	}
	if len(*raw.AssignedTeams) > 0 && len(out.Teams) == 0 {
		return emails.Assignment{}, errOnlyUnknownTeams
	}

	for _, c := range raw.Contacts {
		n, ok := canonical(c.TeamName)
		addr := strings.TrimSpace(c.Email)
		if !ok || !seen[n] || addr == "" {
			continue
		}
		out.Contacts = append(out.Contacts, emails.ExtractedContact{Email: addr, TeamName: n, Reason: strings.TrimSpace(c.Reason)})
	}
	return out, nil
}
