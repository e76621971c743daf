package teamextract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mailsplit-backend/internal/llm"
)

var errNoKnownFields = errors.New("JSON object has none of the team fields")

// stringList accepts a JSON array, a single string or null.
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*l = nil
		return nil
	}
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*l = []string{}
			return nil
		}
		*l = []string{s}
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			// non-string entries are dropped
			continue
		}
		out = append(out, s)
	}
	*l = out
	return nil
}

type rawExtraction struct {
	TeamName      *string     `json:"team_name"`
	Description   *string     `json:"description"`
	Products      *stringList `json:"products"`
	IssuesHandled *stringList `json:"issues_handled"`
	ContactEmail  *stringList `json:"contact_email"`
}

// decodeCompletion locates the first JSON object in a provider completion and maps it
// onto TeamExtraction. Absent fields get placeholders; present fields are kept as sent.
func decodeCompletion(completion string) (TeamExtraction, error) {
	obj, ok := llm.FirstJSONObject(completion)
	if !ok {
		return TeamExtraction{}, llm.ErrNoJSONObject
	}
	var raw rawExtraction
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return TeamExtraction{}, fmt.Errorf("decode team JSON: %w", err)
	}
	if raw.TeamName == nil && raw.Description == nil && raw.Products == nil &&
		raw.IssuesHandled == nil && raw.ContactEmail == nil {
		return TeamExtraction{}, errNoKnownFields
	}

	var out TeamExtraction
	if raw.TeamName != nil {
		out.TeamName = *raw.TeamName
	}
	if raw.Description != nil {
		out.Description = *raw.Description
	}
	if raw.Products != nil {
		out.Products = *raw.Products
	}
	if raw.IssuesHandled != nil {
		out.IssuesHandled = *raw.IssuesHandled
	}
	if raw.ContactEmail != nil {
		out.ContactEmail = *raw.ContactEmail
	}
	return out.withDefaults(), nil
}
