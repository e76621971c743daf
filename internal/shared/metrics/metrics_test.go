package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestProviderAttemptCounter(t *testing.T) {
	before := testutil.ToFloat64(providerAttemptsTotal.WithLabelValues("openai", "team_extract", "ok"))
	ObserveProviderAttempt("openai", "team_extract", "ok", 120*time.Millisecond)
	after := testutil.ToFloat64(providerAttemptsTotal.WithLabelValues("openai", "team_extract", "ok"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestHandlerRendersRegisteredMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncParseDocument("ok")
	IncFallback("team_extract")

	r := gin.New()
	r.Use(Middleware())
	r.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	body := resp.Body.String()
	for _, name := range []string{
		"mailsplit_parse_document_requests_total",
		"mailsplit_llm_heuristic_fallback_total",
	} {
		if !strings.Contains(body, name) {
			t.Fatalf("missing metric %s in output", name)
		}
	}
}

func TestOutcomeCounters(t *testing.T) {
	tests := []struct {
		name string
		inc  func()
		read func() float64
	}{
		{
			name: "assign",
			inc:  func() { IncAssignJob("heuristic") },
			read: func() float64 { return testutil.ToFloat64(assignJobsTotal.WithLabelValues("heuristic")) },
		},
		{
			name: "worker",
			inc:  func() { IncWorkerJob("duplicate") },
			read: func() float64 { return testutil.ToFloat64(workerJobsTotal.WithLabelValues("duplicate")) },
		},
		{
			name: "search",
			inc:  func() { IncSearchSync("teams", "dropped") },
			read: func() float64 { return testutil.ToFloat64(searchSyncTotal.WithLabelValues("teams", "dropped")) },
		},
	}
	for _, tt := range tests {
		before := tt.read()
		tt.inc()
		if got := tt.read() - before; got != 1 {
			t.Fatalf("%s: expected +1, got %v", tt.name, got)
		}
	}
}
