package exports

import (
	"github.com/gin-gonic/gin"

	"hippo-backend/internal/access"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterAdminRoutes attaches the export endpoint to an admin-only group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/exports/drive", h.drive)
}

type driveRequest struct {
	RegionID       string   `json:"regionId"`
	ApplicationIDs []string `json:"applicationIds"`
}

func (h *Handler) drive(c *gin.Context) {
	var req driveRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Err(c, apperr.Validation("Bad JSON"))
			return
		}
	}
	res, err := h.Svc.Export(c.Request.Context(), access.CallerFromContext(c), Request(req))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, res)
}
