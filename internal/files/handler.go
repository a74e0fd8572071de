package files

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/access"
	"hippo-backend/internal/shared/filecheck"
	"hippo-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/files/view", h.view)
}

func (h *Handler) view(c *gin.Context) {
	if appID := c.Query("applicationId"); appID != "" {
		c.Set("applicationId", appID)
	}
	v, err := h.Svc.Open(c.Request.Context(), access.CallerFromContext(c), c.Query("path"), c.Query("applicationId"))
	if err != nil {
		respond.Err(c, err)
		return
	}
	if v.URL != "" {
		c.Redirect(http.StatusFound, v.URL)
		return
	}
	defer v.Body.Close()

	c.Header("Content-Type", filecheck.MimeOfKey(v.Key))
	c.Header("Cache-Control", "private, no-store")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, v.Body)
}
