package access

import (
	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterAdminRoutes attaches grant management to an admin-only group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/roles", h.list)
	rg.POST("/roles", h.grant)
	rg.DELETE("/roles", h.revoke)
}

type grantRequest struct {
	UserID   string `json:"userId"`
	Role     string `json:"role"`
	RegionID string `json:"regionId"`
}

func (r grantRequest) toGrant() Grant {
	return Grant{UserID: r.UserID, Role: Role(r.Role), RegionID: r.RegionID}
}

func (h *Handler) list(c *gin.Context) {
	grants, err := h.Svc.ListGrants(c.Request.Context(), CallerFromContext(c))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"grants": grants})
}

func (h *Handler) grant(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("invalid request body"))
		return
	}
	g, err := h.Svc.Grant(c.Request.Context(), CallerFromContext(c), req.toGrant())
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.Created(c, "", g)
}

func (h *Handler) revoke(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("invalid request body"))
		return
	}
	if err := h.Svc.Revoke(c.Request.Context(), CallerFromContext(c), req.toGrant()); err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"ok": true})
}
