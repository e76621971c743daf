package emails

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

// RegisterRoutes attaches email routes to the router group. The group must run the
// company selection middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/emails", h.list)
	rg.POST("/emails", h.create)
	rg.GET("/emails/:id", h.get)
	rg.PATCH("/emails/:id", h.patch)
	rg.POST("/emails/:id/assign", h.assign)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), companies.IDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch emails", nil)
		return
	}
	out := make([]EmailResponse, 0, len(list))
	for _, e := range list {
		out = append(out, ToResponse(e))
	}
	respond.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var in EmailInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	email, err := h.Svc.Create(c.Request.Context(), companies.IDFromContext(c), in, c.GetString("requestId"))
	if err != nil {
		h.writeError(c, err, "Failed to create email")
		return
	}
	c.Set("emailId", email.ID)
	respond.Created(c, ToResponse(email))
}

func (h *Handler) get(c *gin.Context) {
	id, ok := emailID(c)
	if !ok {
		return
	}
	email, err := h.Svc.Get(c.Request.Context(), companies.IDFromContext(c), id)
	if err != nil {
		h.writeError(c, err, "Failed to fetch email")
		return
	}
	respond.OK(c, ToResponse(email))
}

func (h *Handler) patch(c *gin.Context) {
	id, ok := emailID(c)
	if !ok {
		return
	}
	var in EmailInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	email, err := h.Svc.Patch(c.Request.Context(), companies.IDFromContext(c), id, in)
	if err != nil {
		h.writeError(c, err, "Failed to update email")
		return
	}
	respond.OK(c, ToResponse(email))
}

func (h *Handler) assign(c *gin.Context) {
	id, ok := emailID(c)
	if !ok {
		return
	}
	email, err := h.Svc.Assign(c.Request.Context(), companies.IDFromContext(c), id)
	if err != nil {
		h.writeError(c, err, "Failed to assign email")
		return
	}
	respond.OK(c, ToResponse(email))
}

func emailID(c *gin.Context) (int64, bool) {
	raw := c.Param("id")
	c.Set("emailId", raw)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid email id", nil)
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "from is required and processingStatus must be pending, processing, processed or failed", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Email not found", nil)
	case errors.Is(err, ErrAssignerUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "assign_unavailable", "Assignment is not configured", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
