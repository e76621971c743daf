package companies

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mailsplit-backend/internal/shared/server/respond"
)

const (
	HeaderCompanyID = "X-Company-Id"
	CookieName      = "selected_company_id"
	contextKey      = "companyId"
)

// Middleware resolves the selected company from the X-Company-Id header, then the
// selection cookie, then the default company, and stores it on the context.
func Middleware(svc *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		requested := c.GetHeader(HeaderCompanyID)
		if requested == "" {
			if cookie, err := c.Cookie(CookieName); err == nil {
				requested = cookie
			}
		}
		id, err := svc.Resolve(c.Request.Context(), requested)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to resolve company", nil)
			return
		}
		c.Set(contextKey, id)
		c.Next()
	}
}

// IDFromContext returns the company id set by Middleware, or 0.
func IDFromContext(c *gin.Context) int64 {
	if v, ok := c.Get(contextKey); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}
