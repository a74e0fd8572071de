package regions

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/access"
	"hippo-backend/internal/shared/apperr"
	"hippo-backend/internal/shared/filecheck"
	"hippo-backend/internal/shared/server/respond"
	"hippo-backend/internal/shared/server/upload"
)

const qrURLTTL = 5 * time.Minute

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the public region endpoints.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/regions", h.listActive)
	rg.GET("/regions/:id/qr", h.qr)
}

// RegisterAdminRoutes attaches region management to an admin-only group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/regions", h.listAll)
	rg.POST("/regions", h.create)
	rg.PUT("/regions/:id", h.update)
	rg.POST("/regions/:id/qr", h.uploadQR)
}

type createRequest struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	IsActive        *bool  `json:"isActive"`
	PaymentReceiver string `json:"paymentReceiver"`
	PaymentNote     string `json:"paymentNote"`
}

type updateRequest struct {
	Name            string `json:"name"`
	IsActive        bool   `json:"isActive"`
	PaymentReceiver string `json:"paymentReceiver"`
	PaymentNote     string `json:"paymentNote"`
}

func (h *Handler) listActive(c *gin.Context) {
	list, err := h.Svc.ListActive(c.Request.Context())
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"regions": list})
}

func (h *Handler) qr(c *gin.Context) {
	qr, err := h.Svc.OpenQR(c.Request.Context(), c.Param("id"), qrURLTTL)
	if err != nil {
		respond.Err(c, err)
		return
	}
	if qr.URL != "" {
		c.Redirect(http.StatusFound, qr.URL)
		return
	}
	defer qr.Body.Close()
	c.Header("Cache-Control", "public, max-age=300")
	c.Status(http.StatusOK)
	c.Header("Content-Type", qr.Mime)
	_, _ = io.Copy(c.Writer, qr.Body)
}

func (h *Handler) listAll(c *gin.Context) {
	list, err := h.Svc.ListAll(c.Request.Context(), access.CallerFromContext(c))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"regions": list})
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("invalid request body"))
		return
	}
	reg, err := h.Svc.Create(c.Request.Context(), access.CallerFromContext(c), CreateInput(req))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.Created(c, "/api/v1/regions", reg)
}

func (h *Handler) update(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Err(c, apperr.Validation("invalid request body"))
		return
	}
	reg, err := h.Svc.Update(c.Request.Context(), access.CallerFromContext(c), c.Param("id"), Update(req))
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, reg)
}

func (h *Handler) uploadQR(c *gin.Context) {
	caller := access.CallerFromContext(c)
	if !caller.Scope.IsSuper {
		respond.Err(c, apperr.Forbidden("Forbidden"))
		return
	}
	data, err := upload.ReadFile(c, "file", filecheck.QRRules.MaxBytes)
	if err != nil {
		respond.Err(c, err)
		return
	}
	reg, err := h.Svc.UploadQR(c.Request.Context(), caller, c.Param("id"), data)
	if err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, reg)
}
