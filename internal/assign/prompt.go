package assign

import (
	"fmt"
	"strings"

	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/llm"
	"mailsplit-backend/internal/teams"
)

const purpose = "assign"

// maxContentRunes bounds the email body sent to a provider.
const maxContentRunes = 6000

const answerShape = `{
  "assigned_teams": ["exact team names from the list"],
  "reason": "one or two sentences naming the keywords that drove the choice",
  "contacts": [{"email": "contact address of an assigned team", "team_name": "team name", "reason": "why this contact"}]
}`

const systemPrompt = `You route inbound customer emails to the internal teams responsible for them.
Pick every team whose products or issues match the email. Use team names exactly as listed.
If no team fits, return an empty assigned_teams array.
Return ONLY a valid JSON object with this shape:
` + answerShape

const maxTokens = 1024

func buildRequest(email emails.Email, list []teams.Team) llm.Request {
	var b strings.Builder
	b.WriteString("Teams:\n")
	for _, t := range list {
		fmt.Fprintf(&b, "- %s: %s\n", t.TeamName, strings.TrimSpace(t.Description))
		if len(t.Products) > 0 {
			fmt.Fprintf(&b, "  products: %s\n", strings.Join(t.Products, ", "))
		}
		if len(t.IssuesHandled) > 0 {
			fmt.Fprintf(&b, "  issues: %s\n", strings.Join(t.IssuesHandled, ", "))
		}
		if len(t.ContactEmail) > 0 {
			fmt.Fprintf(&b, "  contacts: %s\n", strings.Join(t.ContactEmail, ", "))
		}
	}
	b.WriteString("\nEmail:\n")
	fmt.Fprintf(&b, "From: %s\n", email.From)
	fmt.Fprintf(&b, "Subject: %s\n\n", email.Subject)
	b.WriteString(truncateRunes(email.Content, maxContentRunes))

	return llm.Request{
		Purpose:   purpose,
		System:    systemPrompt,
		Prompt:    b.String(),
		MaxTokens: maxTokens,
	}
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
