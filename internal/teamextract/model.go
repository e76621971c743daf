package teamextract

// Placeholders used when a field cannot be determined.
const (
	PlaceholderTeamName    = "Team Name (Please Edit)"
	PlaceholderDescription = "Please provide a team description"
	PlaceholderContact     = "team@example.com"
)

// MaxInputRunes bounds how much document text any provider or the fallback sees.
const MaxInputRunes = 6000

// TeamExtraction is the structured result of reading a team document. It pre-fills the
// team form and is not persisted as-is.
type TeamExtraction struct {
	TeamName      string   `json:"team_name"`
	Description   string   `json:"description"`
	Products      []string `json:"products"`
	IssuesHandled []string `json:"issues_handled"`
	ContactEmail  []string `json:"contact_email"`
}

// withDefaults fills required fields with placeholders and replaces nil lists with
// empty ones so they encode as [].
func (t TeamExtraction) withDefaults() TeamExtraction {
	if t.TeamName == "" {
		t.TeamName = PlaceholderTeamName
	}
	if t.Description == "" {
		t.Description = PlaceholderDescription
	}
	if t.Products == nil {
		t.Products = []string{}
	}
	if t.IssuesHandled == nil {
		t.IssuesHandled = []string{}
	}
	if len(t.ContactEmail) == 0 {
		t.ContactEmail = []string{PlaceholderContact}
	}
	return t
}

// Truncate returns at most MaxInputRunes runes of text.
func Truncate(text string) string {
	if len(text) <= MaxInputRunes {
		return text
	}
	count := 0
	for i := range text {
		if count == MaxInputRunes {
			return text[:i]
		}
		count++
	}
	return text
}
