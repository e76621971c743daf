package extract

import (
	"testing"

	"mailsplit-backend/internal/extract/extracttest"
)

func TestResolveMimeType(t *testing.T) {
	pdfData := extracttest.BuildPDF(t, []string{"hello"})
	docxData := extracttest.BuildDOCX(t, "hello")

	tests := []struct {
		name     string
		declared string
		fileName string
		data     []byte
		want     string
	}{
		{name: "declared wins", declared: "text/markdown", fileName: "a.pdf", data: pdfData, want: MimeMarkdown},
		{name: "declared params dropped", declared: "Application/PDF; x=y", data: pdfData, want: MimePDF},
		{name: "markdown extension", declared: "application/octet-stream", fileName: "team.md", data: []byte("# Team"), want: MimeMarkdown},
		{name: "sniffed pdf", declared: "", fileName: "upload", data: pdfData, want: MimePDF},
		{name: "zip docx by contents", declared: "application/zip", fileName: "upload", data: docxData, want: MimeDOCX},
		{name: "docx extension", declared: "application/zip", fileName: "team.DOCX", data: docxData, want: MimeDOCX},
		{name: "sniffed text", declared: "", fileName: "notes", data: []byte("Team: Billing\n"), want: MimeText},
		{name: "nothing to go on", declared: "", fileName: "", data: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveMimeType(tt.declared, tt.fileName, tt.data); got != tt.want {
				t.Fatalf("ResolveMimeType(%q, %q) = %q, want %q", tt.declared, tt.fileName, got, tt.want)
			}
		})
	}
}
