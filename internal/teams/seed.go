package teams

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

type seedTeam struct {
	TeamName      string   `yaml:"team_name"`
	Description   string   `yaml:"description"`
	Products      []string `yaml:"products"`
	IssuesHandled []string `yaml:"issues_handled"`
	ContactEmail  []string `yaml:"contact_email"`
}

func loadSeedTeams(raw []byte) ([]seedTeam, error) {
	var out []seedTeam
	if err := yaml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse seed teams: %w", err)
	}
	for i, t := range out {
		if t.TeamName == "" {
			return nil, fmt.Errorf("seed team %d has no team_name", i)
		}
	}
	return out, nil
}
