package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports backing-store liveness
type Pinger interface {
	Ping() error
}

// HealthHandler reports service health
type HealthHandler struct {
	BaseHandler
	version string
	db      Pinger
}

// NewHealthHandler creates a health handler. db may be nil when the service
// runs without a definition store.
func NewHealthHandler(version string, db Pinger) *HealthHandler {
	return &HealthHandler{version: version, db: db}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(c *gin.Context) {
	status := "ok"
	components := gin.H{}

	if h.db != nil {
		if err := h.db.Ping(); err != nil {
			status = "degraded"
			components["database"] = "unreachable"
		} else {
			components["database"] = "ok"
		}
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":     status,
		"version":    h.version,
		"components": components,
	})
}

// RegisterRoutes registers health routes
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
}
