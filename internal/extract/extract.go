package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

const (
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"
	MimePDF      = "application/pdf"
	MimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	// ErrPDFParseFailed reports that the PDF library could not decode the payload.
	ErrPDFParseFailed = errors.New("pdf parse failed")
	// ErrDOCXParseFailed reports that the DOCX library could not decode the payload.
	ErrDOCXParseFailed = errors.New("docx parse failed")
)

// ExtractText turns a document payload into plain text, dispatching on the declared
// content type. Unsupported types yield an empty string and a nil error; callers decide
// whether empty text is a failure.
// Libraries used: github.com/ledongthuc/pdf (PDF) and github.com/nguyenthenguyen/docx (DOCX).
func ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch normalizeMimeType(mimeType) {
	case MimeText, MimeMarkdown:
		return string(data), nil
	case MimePDF:
		text, err := extractPDF(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrPDFParseFailed, err)
		}
		return text, nil
	case MimeDOCX:
		text, err := extractDOCX(data)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDOCXParseFailed, err)
		}
		return text, nil
	default:
		return "", nil
	}
}

// Supported reports whether ExtractText knows how to read the declared type.
func Supported(mimeType string) bool {
	switch normalizeMimeType(mimeType) {
	case MimeText, MimeMarkdown, MimePDF, MimeDOCX:
		return true
	default:
		return false
	}
}

// extractPDF walks pages 1..N and rebuilds lines from glyph positions. Lines and
// pages are joined with a newline.
func extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf library panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.Join(pdfLines(page.Content().Text), "\n"))
	}
	return strings.Join(pages, "\n"), nil
}

// lineTolerance is the largest baseline difference, in points, still treated as one line.
const lineTolerance = 1.0

type pdfLine struct {
	y      float64
	glyphs []pdf.Text
}

// pdfLines groups glyphs by baseline, orders lines top to bottom and glyphs left to
// right, and inserts a space where two runs on one line leave a visible gap.
func pdfLines(glyphs []pdf.Text) []string {
	var lines []*pdfLine
	var current *pdfLine
	for _, g := range glyphs {
		if g.S == "" {
			continue
		}
		if current == nil || math.Abs(g.Y-current.y) > lineTolerance {
			current = nil
			for _, l := range lines {
				if math.Abs(g.Y-l.y) <= lineTolerance {
					current = l
					break
				}
			}
			if current == nil {
				current = &pdfLine{y: g.Y}
				lines = append(lines, current)
			}
		}
		current.glyphs = append(current.glyphs, g)
	}

	sort.SliceStable(lines, func(i, j int) bool { return lines[i].y > lines[j].y })

	out := make([]string, 0, len(lines))
	for _, l := range lines {
		sort.SliceStable(l.glyphs, func(i, j int) bool { return l.glyphs[i].X < l.glyphs[j].X })
		var b strings.Builder
		for i, g := range l.glyphs {
			if i > 0 {
				prev := l.glyphs[i-1]
				gap := g.X - (prev.X + prev.W)
				if prev.W > 0 && gap > g.FontSize*0.25 && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(g.S, " ") {
					b.WriteByte(' ')
				}
			}
			b.WriteString(g.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func extractDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	raw := doc.Editable().GetContent()
	if strings.TrimSpace(raw) == "" {
		return "", errors.New("document.xml is empty")
	}
	return stripDocxXML(raw)
}

func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.Write(t)
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
}
