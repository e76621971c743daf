package teams

import (
	"errors"
	"net/http"

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

// RegisterRoutes attaches team routes to the router group. The group must run the
// company selection middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/teams", h.list)
	rg.POST("/teams", h.create)
	rg.GET("/teams/:name", h.get)
	rg.PATCH("/teams/:name", h.update)
	rg.DELETE("/teams/:name", h.delete)
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), companies.IDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch teams", nil)
		return
	}
	out := make([]TeamResponse, 0, len(list))
	for _, t := range list {
		out = append(out, toResponse(t))
	}
	respond.OK(c, out)
}

func (h *Handler) create(c *gin.Context) {
	var in TeamInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	team, err := h.Svc.Create(c.Request.Context(), companies.IDFromContext(c), in)
	if err != nil {
		h.writeError(c, err, "Failed to create team")
		return
	}
	c.Set("teamName", team.TeamName)
	respond.Created(c, toResponse(team))
}

func (h *Handler) get(c *gin.Context) {
	name := c.Param("name")
	c.Set("teamName", name)
	team, err := h.Svc.Get(c.Request.Context(), companies.IDFromContext(c), name)
	if err != nil {
		h.writeError(c, err, "Failed to fetch team")
		return
	}
	respond.OK(c, toResponse(team))
}

func (h *Handler) update(c *gin.Context) {
	name := c.Param("name")
	c.Set("teamName", name)
	var in TeamInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	team, err := h.Svc.Update(c.Request.Context(), companies.IDFromContext(c), name, in)
	if err != nil {
		h.writeError(c, err, "Failed to update team")
		return
	}
	respond.OK(c, toResponse(team))
}

func (h *Handler) delete(c *gin.Context) {
	name := c.Param("name")
	c.Set("teamName", name)
	if err := h.Svc.Delete(c.Request.Context(), companies.IDFromContext(c), name); err != nil {
		h.writeError(c, err, "Failed to delete team")
		return
	}
	respond.OK(c, gin.H{"success": true})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "team_name is required", nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Team not found", nil)
	case errors.Is(err, ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "A team with this name already exists", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
