package resolver

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// StoredDefinition is a named resolver definition persisted by the definition
// store so callers can execute it by name instead of shipping the full
// definition with every request.
type StoredDefinition struct {
	ID          uuid.UUID
	Name        string
	Description string
	Definition  Definition
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewStoredDefinition creates a stored definition after validating it.
func NewStoredDefinition(name, description string, def Definition) (*StoredDefinition, error) {
	if name == "" {
		return nil, NewConfigurationError("definition name is required")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &StoredDefinition{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Definition:  def,
	}, nil
}

// DefinitionRepository persists stored resolver definitions.
type DefinitionRepository interface {
	Create(ctx context.Context, def *StoredDefinition) error
	Update(ctx context.Context, def *StoredDefinition) error
	FindByName(ctx context.Context, name string) (*StoredDefinition, error)
	List(ctx context.Context) ([]StoredDefinition, error)
	Delete(ctx context.Context, name string) error
}
