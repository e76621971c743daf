package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meilisearch/meilisearch-go"
)

const primaryKey = "id"

// MeiliBackend stores documents in two Meilisearch indexes.
type MeiliBackend struct {
	client      meilisearch.ServiceManager
	emailsIndex string
	teamsIndex  string
}

// NewMeiliBackend builds a client for host. It does not contact the server.
func NewMeiliBackend(host, apiKey, emailsIndex, teamsIndex string) (*MeiliBackend, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("meilisearch host is required")
	}
	if emailsIndex == "" || teamsIndex == "" {
		return nil, fmt.Errorf("meilisearch index names are required")
	}
	return &MeiliBackend{
		client:      meilisearch.New(host, meilisearch.WithAPIKey(apiKey)),
		emailsIndex: emailsIndex,
		teamsIndex:  teamsIndex,
	}, nil
}

// Configure creates both indexes if needed and sets searchable and filterable attributes.
func (m *MeiliBackend) Configure(ctx context.Context) error {
	for _, uid := range []string{m.emailsIndex, m.teamsIndex} {
		// Creating an existing index fails asynchronously and leaves it untouched.
		if _, err := m.client.CreateIndexWithContext(ctx, &meilisearch.IndexConfig{Uid: uid, PrimaryKey: primaryKey}); err != nil {
			return fmt.Errorf("create index %s: %w", uid, err)
		}
	}

	emails := m.client.Index(m.emailsIndex)
	if _, err := emails.UpdateSearchableAttributesWithContext(ctx, &[]string{"from", "subject", "preview", "content", "assignedTeams"}); err != nil {
		return fmt.Errorf("emails searchable attributes: %w", err)
	}
	emailFilters := []interface{}{"company_id", "assignedTeams", "processingStatus"}
	if _, err := emails.UpdateFilterableAttributesWithContext(ctx, &emailFilters); err != nil {
		return fmt.Errorf("emails filterable attributes: %w", err)
	}

	teams := m.client.Index(m.teamsIndex)
	if _, err := teams.UpdateSearchableAttributesWithContext(ctx, &[]string{"team_name", "description", "products", "issues_handled", "contact_email"}); err != nil {
		return fmt.Errorf("teams searchable attributes: %w", err)
	}
	teamFilters := []interface{}{"company_id"}
	if _, err := teams.UpdateFilterableAttributesWithContext(ctx, &teamFilters); err != nil {
		return fmt.Errorf("teams filterable attributes: %w", err)
	}
	return nil
}

// UpsertEmails adds or replaces email documents.
func (m *MeiliBackend) UpsertEmails(ctx context.Context, docs []EmailDoc) error {
	if len(docs) == 0 {
		return nil
	}
	pk := primaryKey
	if _, err := m.client.Index(m.emailsIndex).UpdateDocumentsWithContext(ctx, docs, &meilisearch.DocumentOptions{PrimaryKey: &pk}); err != nil {
		return fmt.Errorf("upsert emails: %w", err)
	}
	return nil
}

// UpsertTeams adds or replaces team documents.
func (m *MeiliBackend) UpsertTeams(ctx context.Context, docs []TeamDoc) error {
	if len(docs) == 0 {
		return nil
	}
	pk := primaryKey
	if _, err := m.client.Index(m.teamsIndex).UpdateDocumentsWithContext(ctx, docs, &meilisearch.DocumentOptions{PrimaryKey: &pk}); err != nil {
		return fmt.Errorf("upsert teams: %w", err)
	}
	return nil
}

// DeleteTeam removes one team document.
func (m *MeiliBackend) DeleteTeam(ctx context.Context, id string) error {
	if _, err := m.client.Index(m.teamsIndex).DeleteDocumentWithContext(ctx, id, nil); err != nil {
		return fmt.Errorf("delete team %s: %w", id, err)
	}
	return nil
}

// SearchEmails runs a company-scoped query on the emails index.
func (m *MeiliBackend) SearchEmails(ctx context.Context, companyID int64, query string, limit int) ([]EmailDoc, error) {
	var out []EmailDoc
	if err := m.search(ctx, m.emailsIndex, companyID, query, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SearchTeams runs a company-scoped query on the teams index.
func (m *MeiliBackend) SearchTeams(ctx context.Context, companyID int64, query string, limit int) ([]TeamDoc, error) {
	var out []TeamDoc
	if err := m.search(ctx, m.teamsIndex, companyID, query, limit, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MeiliBackend) search(ctx context.Context, uid string, companyID int64, query string, limit int, hits any) error {
	raw, err := m.client.Index(uid).SearchRawWithContext(ctx, query, &meilisearch.SearchRequest{
		Filter: fmt.Sprintf("company_id = %d", companyID),
		Limit:  int64(limit),
	})
	if err != nil {
		return fmt.Errorf("search %s: %w", uid, err)
	}
	return decodeHits(*raw, hits)
}

func decodeHits(raw []byte, hits any) error {
	var envelope struct {
		Hits json.RawMessage `json:"hits"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decode search response: %w", err)
	}
	if len(envelope.Hits) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Hits, hits); err != nil {
		return fmt.Errorf("decode search hits: %w", err)
	}
	return nil
}

var _ Backend = (*MeiliBackend)(nil)
