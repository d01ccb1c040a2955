package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appresolver "github.com/resolvd/backend/internal/application/resolver"
	"github.com/resolvd/backend/internal/domain/resolver"
	"github.com/resolvd/backend/internal/interfaces/http/dto"
)

// ResolverHandler executes inline resolver definitions
type ResolverHandler struct {
	BaseHandler
	executor *appresolver.Executor
	logger   *zap.Logger
}

// NewResolverHandler creates a resolver handler
func NewResolverHandler(executor *appresolver.Executor, logger *zap.Logger) *ResolverHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResolverHandler{executor: executor, logger: logger}
}

// Execute handles POST /api/v1/resolvers/execute
func (h *ResolverHandler) Execute(c *gin.Context) {
	var req dto.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, "Request body must contain a resolver definition")
		return
	}

	var def resolver.Definition
	if err := json.Unmarshal(req.Resolver, &def); err != nil {
		h.Error(c, 400, dto.ErrCodeInvalidJSON, err.Error())
		return
	}

	result, err := h.executor.Execute(c.Request.Context(), def, req.Input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	if !result.OK {
		h.logger.Info("resolver execution failed",
			zap.String("datasource", result.Datasource),
			zap.String("error", result.Error),
		)
	}
	h.Success(c, result)
}

// RegisterRoutes registers resolver execution routes
func (h *ResolverHandler) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/resolvers")
	{
		group.POST("/execute", h.Execute)
	}
}
