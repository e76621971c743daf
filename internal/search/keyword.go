package search

import "strings"

// MatchEmail reports whether the query is a case-insensitive substring of any
// searchable email field.
func MatchEmail(d EmailDoc, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{d.From, d.Subject, d.Preview, d.Content, d.Notes}
	fields = append(fields, d.AssignedTeams...)
	return containsAny(fields, q)
}

// MatchTeam reports whether the query is a case-insensitive substring of any
// searchable team field.
func MatchTeam(d TeamDoc, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	fields := []string{d.TeamName, d.Description}
	fields = append(fields, d.Products...)
	fields = append(fields, d.IssuesHandled...)
	fields = append(fields, d.ContactEmail...)
	return containsAny(fields, q)
}

func containsAny(fields []string, q string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
