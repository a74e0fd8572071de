package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hippo-backend/internal/shared/server/respond"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB Pinger
}

// NewService constructs a new health service. A nil db reports the
// in-memory backend.
func NewService(db Pinger) *Service {
	return &Service{DB: db}
}

// Status reports liveness and the state of the database connection.
func (s *Service) Status(ctx context.Context) (map[string]any, bool) {
	if s.DB == nil {
		return map[string]any{"ok": true, "db": "memory"}, true
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return map[string]any{"ok": false, "db": "unreachable"}, false
	}
	return map[string]any{"ok": true, "db": "up"}, true
}

func (s *Service) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		body, ok := s.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, body)
	})
}
