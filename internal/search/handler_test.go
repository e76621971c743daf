package search

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/companies"
)

func setupRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	companySvc := &companies.Service{Repo: companies.NewMemoryRepo()}
	api := r.Group("/api/v1", companies.Middleware(companySvc))
	NewHandler(svc).RegisterRoutes(api)
	return r
}

func do(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestSearchRoute(t *testing.T) {
	es, ts := fixtures()
	r := setupRouter(&Service{Emails: es, Teams: ts})

	resp := do(r, http.MethodGet, "/api/v1/search?q=payment")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var res Result
	_ = json.Unmarshal(resp.Body.Bytes(), &res)
	if res.Type != TypeEmails || res.Source != SourceKeyword || len(res.Emails) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}

	resp = do(r, http.MethodGet, "/api/v1/search?q=x&type=people")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestSyncSearchRoute(t *testing.T) {
	es, ts := fixtures()

	resp := do(setupRouter(&Service{Emails: es, Teams: ts}), http.MethodPost, "/api/v1/sync-search")
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("unconfigured sync: expected 500, got %d", resp.Code)
	}

	r := setupRouter(&Service{Backend: &fakeBackend{}, Emails: es, Teams: ts})
	resp = do(r, http.MethodPost, "/api/v1/sync-search?configure=true&company_id=1")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var report SyncReport
	_ = json.Unmarshal(resp.Body.Bytes(), &report)
	if !report.Success || !report.Configured || report.TeamsSynced != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	resp = do(r, http.MethodPost, "/api/v1/sync-search?company_id=abc")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
