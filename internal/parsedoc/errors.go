package parsedoc

import (
	"errors"

	"mailsplit-backend/internal/extract"
)

var (
	ErrNoFileProvided   = errors.New("no file provided")
	ErrNoTextFound      = errors.New("could not extract text from document")
	ErrPDFParseFailed   = extract.ErrPDFParseFailed
	ErrDOCXParseFailed  = extract.ErrDOCXParseFailed
	ErrProcessingFailed = errors.New("failed to process document")
)
