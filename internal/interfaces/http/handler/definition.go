package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appresolver "github.com/resolvd/backend/internal/application/resolver"
	"github.com/resolvd/backend/internal/domain/resolver"
	"github.com/resolvd/backend/internal/interfaces/http/dto"
)

// DefinitionHandler manages stored resolver definitions
type DefinitionHandler struct {
	BaseHandler
	service *appresolver.DefinitionService
	logger  *zap.Logger
}

// NewDefinitionHandler creates a definition handler
func NewDefinitionHandler(service *appresolver.DefinitionService, logger *zap.Logger) *DefinitionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionHandler{service: service, logger: logger}
}

// Create handles POST /api/v1/definitions
func (h *DefinitionHandler) Create(c *gin.Context) {
	var req dto.CreateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, dto.BindingErrorMessage(err))
		return
	}

	var def resolver.Definition
	if err := json.Unmarshal(req.Resolver, &def); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	stored, err := h.service.Create(c.Request.Context(), req.Name, req.Description, def)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp, err := dto.NewDefinitionResponse(stored)
	if err != nil {
		h.InternalError(c, "Could not encode definition")
		return
	}
	h.Created(c, resp)
}

// Update handles PUT /api/v1/definitions/:name
func (h *DefinitionHandler) Update(c *gin.Context) {
	var req dto.UpdateDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, dto.BindingErrorMessage(err))
		return
	}

	var def resolver.Definition
	if err := json.Unmarshal(req.Resolver, &def); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	stored, err := h.service.Update(c.Request.Context(), c.Param("name"), req.Description, def)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp, err := dto.NewDefinitionResponse(stored)
	if err != nil {
		h.InternalError(c, "Could not encode definition")
		return
	}
	h.Success(c, resp)
}

// Get handles GET /api/v1/definitions/:name
func (h *DefinitionHandler) Get(c *gin.Context) {
	stored, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp, err := dto.NewDefinitionResponse(stored)
	if err != nil {
		h.InternalError(c, "Could not encode definition")
		return
	}
	h.Success(c, resp)
}

// List handles GET /api/v1/definitions
func (h *DefinitionHandler) List(c *gin.Context) {
	defs, err := h.service.List(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	responses := make([]dto.DefinitionResponse, 0, len(defs))
	for i := range defs {
		resp, err := dto.NewDefinitionResponse(&defs[i])
		if err != nil {
			h.InternalError(c, "Could not encode definition")
			return
		}
		responses = append(responses, resp)
	}
	h.Success(c, responses)
}

// Delete handles DELETE /api/v1/definitions/:name
func (h *DefinitionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}

// Execute handles POST /api/v1/definitions/:name/execute
func (h *DefinitionHandler) Execute(c *gin.Context) {
	var req dto.ExecuteByNameRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
			return
		}
	}

	result, err := h.service.ExecuteByName(c.Request.Context(), c.Param("name"), req.Input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, result)
}

// RegisterRoutes registers definition routes
func (h *DefinitionHandler) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/definitions")
	{
		group.POST("", h.Create)
		group.GET("", h.List)
		group.GET("/:name", h.Get)
		group.PUT("/:name", h.Update)
		group.DELETE("/:name", h.Delete)
		group.POST("/:name/execute", h.Execute)
	}
}
