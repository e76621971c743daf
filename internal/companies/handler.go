package companies

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/shared/server/respond"
)

const selectionCookieMaxAge = 60 * 60 * 24 * 365

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc          *Service
	SecureCookie bool
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, secureCookie bool) *Handler {
	return &Handler{Svc: svc, SecureCookie: secureCookie}
}

// RegisterRoutes attaches company routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/companies", h.list)
	rg.PUT("/companies/selected", h.selectCompany)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch companies", nil)
		return
	}
	out := make([]CompanyResponse, 0, len(list))
	for _, company := range list {
		out = append(out, toResponse(company))
	}
	respond.OK(c, out)
}

func (h *Handler) selectCompany(c *gin.Context) {
	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	company, err := h.Svc.Get(c.Request.Context(), req.CompanyID)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "companyId is required", nil)
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "company not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to select company", nil)
		}
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, strconv.FormatInt(company.ID, 10), selectionCookieMaxAge, "/", "", h.SecureCookie, true)
	respond.OK(c, toResponse(company))
}
