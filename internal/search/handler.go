package search

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/companies"
	"mailsplit-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches search routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search", h.search)
	rg.POST("/sync-search", h.sync)
}

func (h *Handler) search(c *gin.Context) {
	res, err := h.Svc.Search(c.Request.Context(), companies.IDFromContext(c), c.Query("type"), c.Query("q"))
	if err != nil {
		if errors.Is(err, ErrInvalidType) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Search failed", nil)
		return
	}
	respond.OK(c, res)
}

func (h *Handler) sync(c *gin.Context) {
	companyID := companies.IDFromContext(c)
	if raw := c.Query("company_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error", "company_id must be a positive integer", nil)
			return
		}
		companyID = id
	}
	configure, _ := strconv.ParseBool(c.DefaultQuery("configure", "false"))

	report := h.Svc.Sync(c.Request.Context(), companyID, configure)
	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}
	respond.JSON(c, status, report)
}
