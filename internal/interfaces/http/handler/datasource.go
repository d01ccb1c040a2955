package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appdatasource "github.com/resolvd/backend/internal/application/datasource"
	"github.com/resolvd/backend/internal/domain/datasource"
	"github.com/resolvd/backend/internal/interfaces/http/dto"
)

// DatasourceHandler manages the datasource registry
type DatasourceHandler struct {
	BaseHandler
	service *appdatasource.Service
	logger  *zap.Logger
}

// NewDatasourceHandler creates a datasource handler
func NewDatasourceHandler(service *appdatasource.Service, logger *zap.Logger) *DatasourceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DatasourceHandler{service: service, logger: logger}
}

// List handles GET /api/v1/datasources
func (h *DatasourceHandler) List(c *gin.Context) {
	profiles := h.service.List()
	responses := make([]dto.DatasourceResponse, 0, len(profiles))
	for _, profile := range profiles {
		responses = append(responses, dto.NewDatasourceResponse(profile))
	}
	h.Success(c, responses)
}

// Get handles GET /api/v1/datasources/:name
func (h *DatasourceHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Param("name"))
	if err != nil {
		var notFound *datasource.NotFoundError
		if errors.As(err, &notFound) {
			h.NotFound(c, err.Error())
			return
		}
		h.InternalError(c, err.Error())
		return
	}
	h.Success(c, dto.NewDatasourceResponse(profile))
}

// Register handles POST /api/v1/datasources
func (h *DatasourceHandler) Register(c *gin.Context) {
	var req dto.RegisterDatasourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, dto.BindingErrorMessage(err))
		return
	}

	if err := h.service.Register(req.ToProfile()); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, dto.NewDatasourceResponse(req.ToProfile()))
}

// Unregister handles DELETE /api/v1/datasources/:name
func (h *DatasourceHandler) Unregister(c *gin.Context) {
	// Removing an absent datasource is idempotent, not an error.
	h.service.Unregister(c.Param("name"))
	h.NoContent(c)
}

// RegisterRoutes registers datasource admin routes
func (h *DatasourceHandler) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/datasources")
	{
		group.GET("", h.List)
		group.GET("/:name", h.Get)
		group.POST("", h.Register)
		group.DELETE("/:name", h.Unregister)
	}
}
