package parsedoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"testing"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/extract/extracttest"
	"mailsplit-backend/internal/shared/server/respond"
	"mailsplit-backend/internal/teamextract"
)

type panicParser struct{}

func (panicParser) Parse(ctx context.Context, text string) teamextract.TeamExtraction {
	panic("boom")
}

func setupRouter(parser TeamParser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(parser)).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func uploadRequest(t *testing.T, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, fileName))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse-document", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeError(t *testing.T, resp *httptest.ResponseRecorder) respond.ErrorBody {
	t.Helper()
	var payload respond.ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	return payload.Error
}

func TestParseDocumentPDFWithoutCredentials(t *testing.T) {
	r := setupRouter(teamextract.NewParser())
	pdfData := extracttest.BuildPDF(t, []string{"Team: Billing", "contact: billing@acme.com"})

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, uploadRequest(t, "billing.pdf", "application/pdf", pdfData))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got teamextract.TeamExtraction
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.TeamName != "Billing" || !reflect.DeepEqual(got.ContactEmail, []string{"billing@acme.com"}) {
		t.Fatalf("unexpected extraction %+v", got)
	}
	if got.Products == nil || len(got.Products) != 0 || got.IssuesHandled == nil || len(got.IssuesHandled) != 0 {
		t.Fatalf("products and issues should be empty arrays, got %+v", got)
	}
	if got.Description == "" {
		t.Fatalf("description must be set")
	}
}

func TestParseDocumentPlainTextAndMarkdown(t *testing.T) {
	r := setupRouter(teamextract.NewParser())
	for _, tc := range []struct{ name, ctype string }{
		{name: "team.txt", ctype: "text/plain"},
		{name: "team.md", ctype: "text/markdown"},
		{name: "team.md", ctype: "application/octet-stream"},
	} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, uploadRequest(t, tc.name, tc.ctype, []byte("Team Name: Widgets Support\nops@widgets.com")))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s (%s): expected 200, got %d", tc.name, tc.ctype, resp.Code)
		}
		var got teamextract.TeamExtraction
		_ = json.Unmarshal(resp.Body.Bytes(), &got)
		if got.TeamName != "Widgets Support" {
			t.Fatalf("%s: unexpected team %q", tc.name, got.TeamName)
		}
	}
}

func TestParseDocumentErrors(t *testing.T) {
	r := setupRouter(teamextract.NewParser())

	tests := []struct {
		name       string
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantCode   string
	}{
		{
			name: "no file",
			req: func(t *testing.T) *http.Request {
				var body bytes.Buffer
				mw := multipart.NewWriter(&body)
				_ = mw.WriteField("other", "value")
				_ = mw.Close()
				req := httptest.NewRequest(http.MethodPost, "/api/v1/parse-document", &body)
				req.Header.Set("Content-Type", mw.FormDataContentType())
				return req
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "no_file_provided",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/api/v1/parse-document", bytes.NewBufferString("{}"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "no_file_provided",
		},
		{
			name: "unsupported type",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "logo.png", "image/png", []byte("\x89PNG\r\n\x1a\n"))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "no_text_found",
		},
		{
			name: "whitespace text",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "blank.txt", "text/plain", []byte(" \n\t "))
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "no_text_found",
		},
		{
			name: "file over 10MB",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "huge.txt", "text/plain", bytes.Repeat([]byte("a"), 11<<20))
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantCode:   "file_too_large",
		},
		{
			name: "broken pdf",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "broken.pdf", "application/pdf", []byte("%PDF-1.4 garbage"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "pdf_parse_failed",
		},
		{
			name: "broken docx",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "broken.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", []byte("not a zip"))
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "docx_parse_failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			r.ServeHTTP(resp, tt.req(t))
			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
			if body := decodeError(t, resp); body.Code != tt.wantCode {
				t.Fatalf("expected code %q, got %q", tt.wantCode, body.Code)
			}
		})
	}
}

func TestParseDocumentParserPanicIsProcessingFailed(t *testing.T) {
	r := setupRouter(panicParser{})
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, uploadRequest(t, "team.txt", "text/plain", []byte("Team: Ops")))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if body := decodeError(t, resp); body.Code != "processing_failed" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestParseDocumentDOCX(t *testing.T) {
	r := setupRouter(teamextract.NewParser())
	data := extracttest.BuildDOCX(t, "Department: Platform", "Pages go to platform@acme.com for outages")

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, uploadRequest(t, "platform.docx", "", data))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got teamextract.TeamExtraction
	_ = json.Unmarshal(resp.Body.Bytes(), &got)
	if got.TeamName != "Platform" || got.ContactEmail[0] != "platform@acme.com" {
		t.Fatalf("unexpected extraction %+v", got)
	}
}
