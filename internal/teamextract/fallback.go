package teamextract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	teamNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)team\s*name[:\s]+(.+)`),
		regexp.MustCompile(`(?i)team[:\s]+(.+)`),
		regexp.MustCompile(`(?i)department[:\s]+(.+)`),
	}
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9_-]+`)
)

const (
	descriptionMinRunes = 20
	descriptionMaxLines = 3
	descriptionMaxRunes = 200
)

// FallbackParse extracts team fields from text with label and email patterns. It never
// calls out and always returns a complete extraction; products and issues stay empty.
func FallbackParse(text string) TeamExtraction {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, len(rawLines))
	for i, line := range rawLines {
		lines[i] = strings.TrimSpace(line)
	}

	out := TeamExtraction{
		TeamName:      findTeamName(lines),
		Description:   buildDescription(lines),
		Products:      []string{},
		IssuesHandled: []string{},
	}
	if email := findEmail(lines); email != "" {
		out.ContactEmail = []string{email}
	}
	return out.withDefaults()
}

func findTeamName(lines []string) string {
	for _, line := range lines {
		for _, pattern := range teamNamePatterns {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			if name := strings.TrimSpace(m[1]); name != "" {
				return name
			}
		}
	}
	return ""
}

func findEmail(lines []string) string {
	for _, line := range lines {
		if m := emailPattern.FindString(line); m != "" {
			return m
		}
	}
	return ""
}

func buildDescription(lines []string) string {
	picked := make([]string, 0, descriptionMaxLines)
	for _, line := range lines {
		if utf8.RuneCountInString(line) > descriptionMinRunes {
			picked = append(picked, line)
			if len(picked) == descriptionMaxLines {
				break
			}
		}
	}
	desc := strings.Join(picked, " ")
	if utf8.RuneCountInString(desc) > descriptionMaxRunes {
		desc = string([]rune(desc)[:descriptionMaxRunes])
	}
	return desc
}
