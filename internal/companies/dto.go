package companies

// CompanyResponse is the outward-facing representation of a company.
type CompanyResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type selectRequest struct {
	CompanyID int64 `json:"companyId"`
}

func toResponse(c Company) CompanyResponse {
	return CompanyResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}
