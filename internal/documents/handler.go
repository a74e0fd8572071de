package documents

import (
	"github.com/gin-gonic/gin"

	"hippo-backend/internal/access"
	"hippo-backend/internal/shared/filecheck"
	"hippo-backend/internal/shared/server/respond"
	"hippo-backend/internal/shared/server/upload"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches document routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/profile-candidate", h.uploadKind(KindProfileCandidate))
	rg.POST("/documents/candidates/:id", h.uploadKind(KindCandidate))
	rg.POST("/documents/parent", h.uploadKind(KindParent))
	rg.GET("/documents", h.list)
	rg.DELETE("/documents/parent/:id", h.deleteParent)
}

func (h *Handler) uploadKind(kind Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, err := upload.ReadFile(c, "file", filecheck.LibraryRules.MaxBytes)
		if err != nil {
			respond.Err(c, err)
			return
		}
		userID := access.CallerFromContext(c).UserID
		doc, err := h.Svc.Upload(c.Request.Context(), userID, kind, c.Param("id"), data)
		if err != nil {
			respond.Err(c, err)
			return
		}
		respond.Created(c, "", toResponse(doc))
	}
}

func (h *Handler) list(c *gin.Context) {
	var kind Kind
	if raw := c.Query("kind"); raw != "" {
		k, err := ParseKind(raw)
		if err != nil {
			respond.Err(c, err)
			return
		}
		kind = k
	}

	docs, err := h.Svc.List(c.Request.Context(), access.CallerFromContext(c).UserID, kind)
	if err != nil {
		respond.Err(c, err)
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toResponse(doc))
	}
	respond.OK(c, gin.H{"documents": resp})
}

func (h *Handler) deleteParent(c *gin.Context) {
	if err := h.Svc.DeleteParent(c.Request.Context(), access.CallerFromContext(c).UserID, c.Param("id")); err != nil {
		respond.Err(c, err)
		return
	}
	respond.OK(c, gin.H{"ok": true})
}
