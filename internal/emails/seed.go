package emails

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed mock_emails.yaml
var mockEmailsYAML []byte

type seedEmail struct {
	From             string    `yaml:"from"`
	Subject          string    `yaml:"subject"`
	Preview          string    `yaml:"preview"`
	Content          string    `yaml:"content"`
	Date             time.Time `yaml:"date"`
	AssignedTeams    []string  `yaml:"assigned_teams"`
	AssignmentReason string    `yaml:"assignment_reason"`
	Notes            string    `yaml:"notes"`
}

func loadSeedEmails(raw []byte) ([]seedEmail, error) {
	var out []seedEmail
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse mock emails: %w", err)
	}
	for i, e := range out {
		if e.From == "" {
			return nil, fmt.Errorf("mock email %d has no from", i)
		}
	}
	return out, nil
}
