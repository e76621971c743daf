package assign

import (
	"fmt"
	"strings"
	"unicode"

	"mailsplit-backend/internal/emails"
	"mailsplit-backend/internal/teams"
)

var stopWords = map[string]bool{
	"team": true, "teams": true, "the": true, "and": true, "all": true, "for": true,
	"with": true, "general": true, "issue": true, "issues": true, "problem": true, "problems": true,
}

// Heuristic scores each team by keyword overlap with the email subject and content.
// A full keyword phrase scores 2, a single significant word of it scores 1. The first
// team with the highest positive score wins.
func Heuristic(email emails.Email, list []teams.Team) emails.Assignment {
	text := strings.ToLower(email.Subject + "\n" + email.Content)
	tokens := tokenSet(text)

	bestScore := 0
	var best *teams.Team
	var bestMatched []string
	for i := range list {
		score, matched := scoreTeam(list[i], text, tokens)
		if score > bestScore {
			bestScore = score
			best = &list[i]
			bestMatched = matched
		}
	}
	if best == nil {
		return emails.Assignment{Teams: []string{}, Reason: "No team keywords found in the email."}
	}

	quoted := make([]string, 0, len(bestMatched))
	for _, k := range bestMatched {
		quoted = append(quoted, "'"+k+"'")
	}
	out := emails.Assignment{
		Teams:  []string{best.TeamName},
		Reason: fmt.Sprintf("Keyword match for %s: %s.", best.TeamName, strings.Join(quoted, ", ")),
	}
	for _, addr := range best.ContactEmail {
		if addr = strings.TrimSpace(addr); addr != "" {
			out.Contacts = append(out.Contacts, emails.ExtractedContact{
				Email:    addr,
				TeamName: best.TeamName,
				Reason:   "Contact for " + best.TeamName,
			})
		}
	}
	return out
}

func scoreTeam(t teams.Team, text string, tokens map[string]bool) (int, []string) {
	score := 0
	var matched []string
	for _, kw := range t.Keywords() {
		phrase := strings.ToLower(strings.TrimSpace(kw))
		if phrase == "" {
			continue
		}
		if strings.Contains(text, phrase) {
			score += 2
			matched = append(matched, kw)
			continue
		}
		for _, w := range words(phrase) {
			if len(w) < 3 || stopWords[w] {
				continue
			}
			if tokens[stem(w)] {
				score++
				matched = append(matched, kw)
				break
			}
		}
	}
	return score, matched
}

func tokenSet(text string) map[string]bool {
	out := map[string]bool{}
	for _, w := range words(text) {
		out[stem(w)] = true
	}
	return out
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// stem drops a plural "s" so "bugs" matches "bug".
func stem(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}
