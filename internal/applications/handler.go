package applications

import (
	"github.com/gin-gonic/gin"

	"hippo-backend/internal/access"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/filecheck"
	"hippo-backend/internal/shared/server/respond"
	"hippo-backend/internal/shared/server/upload"
	"hippo-backend/internal/verification"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the owner-side application routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/applications", h.create)
	rg.GET("/applications", h.list)
	rg.GET("/applications/:id", h.get)
	rg.DELETE("/applications/:id", h.delete)
	rg.POST("/applications/:id/files", h.upload)
}

// RegisterAdminRoutes attaches review routes to an admin-only group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/applications", h.adminList)
	rg.GET("/applications/:id", h.get)
	rg.POST("/applications/:id/verification", h.updateVerification)
}

type createRequest struct {
	CandidateKind string `json:"candidateKind"`
	CandidateRef  string `json:"candidateRef"`
	ParentDocID   string `json:"parentDocId"`
}

type verificationRequest struct {
	PaymentVerified      bool  `json:"paymentVerified"`
	CandidateDocVerified bool  `json:"candidateDocVerified"`
	ParentDocVerified    *bool `json:"parentDocVerified"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("Bad JSON"))
		return
	}
	created, err := h.Svc.Create(c.Request.Context(), access.CallerFromContext(c), CreateInput(req))
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("applicationId", created.ID)
	respond.Created(c, "/api/v1/applications/"+created.ID, created)
}

func (h *Handler) list(c *gin.Context) {
	views, err := h.Svc.List(c.Request.Context(), access.CallerFromContext(c))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"applications": toListResponse(views)})
}

func (h *Handler) get(c *gin.Context) {
	c.Set("applicationId", c.Param("id"))
	view, err := h.Svc.Get(c.Request.Context(), access.CallerFromContext(c), c.Param("id"))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, toResponse(view))
}

func (h *Handler) delete(c *gin.Context) {
	c.Set("applicationId", c.Param("id"))
	if err := h.Svc.Delete(c.Request.Context(), access.CallerFromContext(c), c.Param("id")); err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"ok": true})
}

func (h *Handler) upload(c *gin.Context) {
	c.Set("applicationId", c.Param("id"))
	data, err := upload.ReadFile(c, "file", filecheck.ApplicationRules.MaxBytes)
	if err != nil {
		respond.Err(c, err)
		return
	}
	f, err := h.Svc.Upload(c.Request.Context(), access.CallerFromContext(c), c.Param("id"), c.PostForm("fileType"), data)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"ok": true, "path": f.StoragePath})
}

func (h *Handler) adminList(c *gin.Context) {
	views, err := h.Svc.AdminList(c.Request.Context(), access.CallerFromContext(c), c.Query("regionId"))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"applications": toListResponse(views)})
}

func (h *Handler) updateVerification(c *gin.Context) {
	id := c.Param("id")
	c.Set("applicationId", id)
	var req verificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("Bad JSON"))
		return
	}
	res, err := h.Svc.UpdateVerification(c.Request.Context(), access.CallerFromContext(c), id, verification.Request{
		Payment:      req.PaymentVerified,
		CandidateDoc: req.CandidateDocVerified,
		Parent:       req.ParentDocVerified,
	})
	if err != nil {
		respond.Err(c, err)
		return
	}
	c.Set("statusTransition", res.Transition())
	respond.OK(c, toVerificationResponse(id, res))
}
