package parsedoc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mailsplit-backend/internal/extract"
	"mailsplit-backend/internal/shared/telemetry"
	"mailsplit-backend/internal/teamextract"
)

// TeamParser turns document text into a team extraction.
type TeamParser interface {
	Parse(ctx context.Context, text string) teamextract.TeamExtraction
}

// Service runs the upload pipeline: extract text, then parse it into team fields.
type Service struct {
	Parser  TeamParser
	Extract func(ctx context.Context, data []byte, mimeType string) (string, error)
}

// NewService constructs a Service backed by extract.ExtractText.
func NewService(parser TeamParser) *Service {
	return &Service{Parser: parser, Extract: extract.ExtractText}
}

// Parse returns the extraction for one document or one of the package's sentinel errors.
func (s *Service) Parse(ctx context.Context, data []byte, mimeType string) (result teamextract.TeamExtraction, err error) {
	defer func() {
		if r := recover(); r != nil {
			telemetry.Error("parsedoc.panic", map[string]any{"panic": fmt.Sprint(r), "mime_type": mimeType})
			result, err = teamextract.TeamExtraction{}, ErrProcessingFailed
		}
	}()

	text, err := s.Extract(ctx, data, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, ErrPDFParseFailed), errors.Is(err, ErrDOCXParseFailed):
			return teamextract.TeamExtraction{}, err
		default:
			return teamextract.TeamExtraction{}, fmt.Errorf("%w: %v", ErrProcessingFailed, err)
		}
	}
	if strings.TrimSpace(text) == "" {
		return teamextract.TeamExtraction{}, ErrNoTextFound
	}

	telemetry.Info("parsedoc.text_extracted", map[string]any{
		"mime_type": mimeType,
		"chars":     len(text),
	})
	return s.Parser.Parse(ctx, text), nil
}
