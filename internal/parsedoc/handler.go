package parsedoc

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/extract"
	"mailsplit-backend/internal/shared/metrics"
	"mailsplit-backend/internal/shared/server/respond"
	"mailsplit-backend/internal/shared/util"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires the parse-document endpoint to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the parse-document route to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/parse-document", h.parse)
}

func (h *Handler) parse(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, "file_too_large", "File exceeds the 10MB limit")
			return
		}
		fail(c, http.StatusBadRequest, "no_file_provided", "No file provided")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		fail(c, http.StatusInternalServerError, "processing_failed", "Failed to process document")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, http.StatusInternalServerError, "processing_failed", "Failed to process document")
		return
	}

	mimeType := extract.ResolveMimeType(fileHeader.Header.Get("Content-Type"), fileHeader.Filename, data)
	c.Set("fileName", util.SanitizeFileName(fileHeader.Filename))
	c.Set("fileSha256", util.SHA256Hex(data))

	result, err := h.Svc.Parse(c.Request.Context(), data, mimeType)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoTextFound):
			fail(c, http.StatusBadRequest, "no_text_found", "Could not extract text from document")
		case errors.Is(err, ErrPDFParseFailed):
			fail(c, http.StatusInternalServerError, "pdf_parse_failed", "PDF parsing failed")
		case errors.Is(err, ErrDOCXParseFailed):
			fail(c, http.StatusInternalServerError, "docx_parse_failed", "DOCX parsing failed")
		default:
			fail(c, http.StatusInternalServerError, "processing_failed", "Failed to process document")
		}
		return
	}

	metrics.IncParseDocument("ok")
	respond.OK(c, result)
}

func fail(c *gin.Context, status int, code, message string) {
	metrics.IncParseDocument(code)
	respond.Error(c, status, code, message, nil)
}
