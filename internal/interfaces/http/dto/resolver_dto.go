package dto

import (
	"encoding/json"
	"time"

	"github.com/resolvd/backend/internal/domain/datasource"
	"github.com/resolvd/backend/internal/domain/resolver"
)

// ExecuteRequest carries an inline resolver definition plus the original
// caller input available to substitution.
type ExecuteRequest struct {
	Resolver json.RawMessage        `json:"resolver" binding:"required"`
	Input    map[string]interface{} `json:"input"`
}

// ExecuteByNameRequest carries the input for a stored definition execution.
type ExecuteByNameRequest struct {
	Input map[string]interface{} `json:"input"`
}

// CreateDefinitionRequest creates a stored definition
type CreateDefinitionRequest struct {
	Name        string          `json:"name" binding:"required,max=128"`
	Description string          `json:"description" binding:"max=512"`
	Resolver    json.RawMessage `json:"resolver" binding:"required"`
}

// UpdateDefinitionRequest replaces a stored definition's content
type UpdateDefinitionRequest struct {
	Description string          `json:"description" binding:"max=512"`
	Resolver    json.RawMessage `json:"resolver" binding:"required"`
}

// DefinitionResponse is the API shape of a stored definition
type DefinitionResponse struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Resolver    json.RawMessage `json:"resolver"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewDefinitionResponse converts a stored definition to its API shape
func NewDefinitionResponse(stored *resolver.StoredDefinition) (DefinitionResponse, error) {
	raw, err := json.Marshal(stored.Definition)
	if err != nil {
		return DefinitionResponse{}, err
	}
	return DefinitionResponse{
		ID:          stored.ID.String(),
		Name:        stored.Name,
		Description: stored.Description,
		Resolver:    raw,
		CreatedAt:   stored.CreatedAt,
		UpdatedAt:   stored.UpdatedAt,
	}, nil
}

// RegisterDatasourceRequest registers or overwrites a datasource profile
type RegisterDatasourceRequest struct {
	Name           string            `json:"name" binding:"required,max=128"`
	Kind           string            `json:"kind" binding:"required"`
	BaseAddress    string            `json:"base_address" binding:"required,url"`
	TimeoutMs      int               `json:"timeout_ms" binding:"required,min=1"`
	RetryBudget    int               `json:"retry_budget" binding:"required,min=1"`
	DefaultHeaders map[string]string `json:"default_headers"`
}

// ToProfile converts the request to a domain profile
func (r *RegisterDatasourceRequest) ToProfile() datasource.Profile {
	return datasource.Profile{
		Name:           r.Name,
		Kind:           r.Kind,
		BaseAddress:    r.BaseAddress,
		TimeoutMs:      r.TimeoutMs,
		RetryBudget:    r.RetryBudget,
		DefaultHeaders: r.DefaultHeaders,
	}
}

// DatasourceResponse is the API shape of a datasource profile. Default
// headers are omitted since they may carry credentials.
type DatasourceResponse struct {
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	BaseAddress string `json:"base_address"`
	TimeoutMs   int    `json:"timeout_ms"`
	RetryBudget int    `json:"retry_budget"`
}

// NewDatasourceResponse converts a profile to its API shape
func NewDatasourceResponse(profile datasource.Profile) DatasourceResponse {
	return DatasourceResponse{
		Name:        profile.Name,
		Kind:        profile.Kind,
		BaseAddress: profile.BaseAddress,
		TimeoutMs:   profile.TimeoutMs,
		RetryBudget: profile.RetryBudget,
	}
}

// LoginRequest carries operator credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
