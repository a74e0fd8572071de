package users

import (
	"github.com/gin-gonic/gin"

	"hippo-backend/internal/access"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/server/respond"
	"hippo-backend/internal/shared/util"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
	rg.PUT("/me/profile", h.saveProfile)
}

type profileRequest struct {
	FullName  string `json:"fullName"`
	Birthdate string `json:"birthdate"`
	Phone     string `json:"phone"`
	School    string `json:"school"`
	City      string `json:"city"`
	RegionID  string `json:"regionId"`
}

type meResponse struct {
	User
	Birthdate        string       `json:"birthdate,omitempty"`
	ReadyAsCandidate bool         `json:"readyAsCandidate"`
	Access           access.Scope `json:"access"`
}

func toMeResponse(u User, scope access.Scope) meResponse {
	return meResponse{
		User:             u,
		Birthdate:        util.FormatDate(u.Birthdate),
		ReadyAsCandidate: u.ReadyAsCandidate(),
		Access:           scope,
	}
}

func (h *Handler) me(c *gin.Context) {
	caller := access.CallerFromContext(c)
	user, err := h.Svc.GetByID(c.Request.Context(), caller.UserID)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, toMeResponse(user, caller.Scope))
}

func (h *Handler) saveProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("Bad JSON"))
		return
	}
	caller := access.CallerFromContext(c)
	user, err := h.Svc.SaveProfile(c.Request.Context(), caller.UserID, ProfileInput(req))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, toMeResponse(user, caller.Scope))
}
