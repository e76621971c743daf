package companies

import "time"

const (
	DefaultName = "Default Company"
	DefaultSlug = "default-company"
)

// Company groups teams and emails. It is a selection scope, not an access boundary.
type Company struct {
	ID        int64
	Name      string
	Slug      string
	CreatedAt time.Time
}
