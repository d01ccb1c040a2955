package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resolvd/backend/internal/infrastructure/auth"
	"github.com/resolvd/backend/internal/interfaces/http/dto"
)

// AuthHandler issues and refreshes operator tokens
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
	verifier   *auth.CredentialVerifier
	logger     *zap.Logger
}

// NewAuthHandler creates an auth handler
func NewAuthHandler(jwtService *auth.JWTService, verifier *auth.CredentialVerifier, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		jwtService: jwtService,
		verifier:   verifier,
		logger:     logger,
	}
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "username and password are required")
		return
	}

	if err := h.verifier.Verify(req.Username, req.Password); err != nil {
		h.logger.Warn("login rejected",
			zap.String("username", req.Username),
			zap.String("client_ip", c.ClientIP()),
		)
		h.Unauthorized(c, "Invalid credentials")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(req.Username)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		h.InternalError(c, "Could not issue token")
		return
	}

	h.Success(c, pair)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "refresh_token is required")
		return
	}

	pair, err := h.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		h.Unauthorized(c, "Invalid refresh token")
		return
	}

	h.Success(c, pair)
}

// RegisterRoutes registers auth routes
func (h *AuthHandler) RegisterRoutes(r gin.IRouter) {
	group := r.Group("/auth")
	{
		group.POST("/login", h.Login)
		group.POST("/refresh", h.Refresh)
	}
}
