package teamextract

import (
	"reflect"
	"strings"
	"testing"
)

func TestFallbackParseWidgets(t *testing.T) {
	text := "Welcome to the support handbook\nTeam Name: Widgets Support\nReach us at ops@widgets.com any time"
	got := FallbackParse(text)
	if got.TeamName != "Widgets Support" {
		t.Fatalf("unexpected team name %q", got.TeamName)
	}
	if !reflect.DeepEqual(got.ContactEmail, []string{"ops@widgets.com"}) {
		t.Fatalf("unexpected contacts %v", got.ContactEmail)
	}
	want := "Welcome to the support handbook Team Name: Widgets Support Reach us at ops@widgets.com any time"
	if got.Description != want {
		t.Fatalf("unexpected description %q", got.Description)
	}
}

func TestFallbackParseBilling(t *testing.T) {
	got := FallbackParse("Team: Billing\ncontact: billing@acme.com")
	want := TeamExtraction{
		TeamName:      "Billing",
		Description:   "contact: billing@acme.com",
		Products:      []string{},
		IssuesHandled: []string{},
		ContactEmail:  []string{"billing@acme.com"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected extraction:\n got %+v\nwant %+v", got, want)
	}
}

func TestFallbackParsePlaceholders(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n", "short line\nanother", "no labels or addresses in this fairly long line"} {
		got := FallbackParse(text)
		if got.TeamName != PlaceholderTeamName {
			t.Fatalf("%q: expected placeholder team name, got %q", text, got.TeamName)
		}
		if !reflect.DeepEqual(got.ContactEmail, []string{PlaceholderContact}) {
			t.Fatalf("%q: expected placeholder contact, got %v", text, got.ContactEmail)
		}
		if got.Description == "" {
			t.Fatalf("%q: description must never be empty", text)
		}
		if got.Products == nil || got.IssuesHandled == nil {
			t.Fatalf("%q: lists must be empty, not nil", text)
		}
	}
	if got := FallbackParse("tiny"); got.Description != PlaceholderDescription {
		t.Fatalf("expected placeholder description, got %q", got.Description)
	}
}

func TestFallbackParseTeamNamePatterns(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "team name label", text: "TEAM NAME:   Payments  ", want: "Payments"},
		{name: "teamname without space", text: "teamname: Core", want: "Core"},
		{name: "team label", text: "Teamwork matters\nteam: Support", want: "Support"},
		{name: "department label", text: "Department: Finance", want: "Finance"},
		{name: "first line wins", text: "Department: Finance\nTeam Name: Payments", want: "Finance"},
		{name: "blank capture skipped", text: "Team:   \nDepartment: Legal", want: "Legal"},
		{name: "windows newlines", text: "Team Name: Ops\r\nother", want: "Ops"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FallbackParse(tt.text).TeamName; got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFallbackParseDescriptionLimits(t *testing.T) {
	long := strings.Repeat("a", 150)
	text := strings.Join([]string{long, "exactly twenty chars", long, long, "this fourth long line is ignored"}, "\n")
	got := FallbackParse(text)
	if n := len([]rune(got.Description)); n != 200 {
		t.Fatalf("expected description cut to 200 runes, got %d", n)
	}
	if strings.Contains(got.Description, "exactly twenty chars") {
		t.Fatalf("lines of 20 characters must not qualify")
	}

	multibyte := strings.Repeat("é", 21)
	if got := FallbackParse(multibyte).Description; got != multibyte {
		t.Fatalf("rune length should be used, got %q", got)
	}
}

func TestFallbackParseIsDeterministic(t *testing.T) {
	text := "Department: Ops\nEscalations go to oncall@acme.io and backup@acme.io\nMore words here to pass the limit"
	first := FallbackParse(text)
	for i := 0; i < 5; i++ {
		if got := FallbackParse(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differs: %+v vs %+v", i, got, first)
		}
	}
	if !reflect.DeepEqual(first.ContactEmail, []string{"oncall@acme.io"}) {
		t.Fatalf("expected first email only, got %v", first.ContactEmail)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short"); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	in := strings.Repeat("ü", MaxInputRunes+10)
	if got := Truncate(in); len([]rune(got)) != MaxInputRunes {
		t.Fatalf("expected %d runes, got %d", MaxInputRunes, len([]rune(got)))
	}
	exact := strings.Repeat("x", MaxInputRunes)
	if got := Truncate(exact); got != exact {
		t.Fatalf("text at the limit must be kept")
	}
}
