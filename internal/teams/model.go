package teams

import "time"

// Team is a responsibility group that emails can be routed to. Teams are addressed by
// TeamName inside a company.
type Team struct {
	ID            string
	CompanyID     int64
	TeamName      string
	Description   string
	Products      []string
	IssuesHandled []string
	ContactEmail  []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Keywords returns the name, products and issues that describe the team's scope.
func (t Team) Keywords() []string {
	out := make([]string, 0, 1+len(t.Products)+len(t.IssuesHandled))
	out = append(out, t.TeamName)
	out = append(out, t.Products...)
	out = append(out, t.IssuesHandled...)
	return out
}
