package candidates

import (
	"net/http"

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
	rg.GET("/candidates", h.list)
	rg.GET("/candidates/:id", h.get)
	rg.POST("/candidates", h.create)
	rg.PUT("/candidates/:id", h.update)
}

type candidateRequest struct {
	FullName  string `json:"fullName"`
	Birthdate string `json:"birthdate"`
	RegionID  string `json:"regionId"`
	Phone     string `json:"phone"`
	School    string `json:"school"`
	City      string `json:"city"`
}

type candidateResponse struct {
	Candidate
	Birthdate string `json:"birthdate"`
}

func toResponse(c Candidate) candidateResponse {
	return candidateResponse{Candidate: c, Birthdate: util.FormatDate(c.Birthdate)}
}

func (h *Handler) list(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), access.CallerFromContext(c).UserID)
	if err != nil {
		respond.Err(c, err)
		return
	}
	out := make([]candidateResponse, 0, len(list))
	for _, cand := range list {
		out = append(out, toResponse(cand))
	}
	respond.OK(c, gin.H{"candidates": out})
}

func (h *Handler) get(c *gin.Context) {
	cand, err := h.Svc.Get(c.Request.Context(), access.CallerFromContext(c).UserID, c.Param("id"))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, toResponse(cand))
}

func (h *Handler) create(c *gin.Context) {
	h.save(c, "", http.StatusCreated)
}

func (h *Handler) update(c *gin.Context) {
	h.save(c, c.Param("id"), http.StatusOK)
}

func (h *Handler) save(c *gin.Context, id string, status int) {
	var req candidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("Bad JSON"))
		return
	}
	cand, err := h.Svc.Save(c.Request.Context(), access.CallerFromContext(c).UserID, id, Input(req))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.JSON(c, status, toResponse(cand))
}
