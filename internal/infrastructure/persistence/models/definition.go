package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/resolvd/backend/internal/domain/resolver"
)

// ResolverDefinitionModel is the persistence shape of a stored resolver
// definition. The definition document is kept as JSON so the schema does not
// change when the definition shape evolves.
type ResolverDefinitionModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"uniqueIndex;not null"`
	Description string
	Document    []byte `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the gorm table name
func (ResolverDefinitionModel) TableName() string {
	return "resolver_definitions"
}

// ResolverDefinitionModelFromDomain converts a domain stored definition to
// its persistence shape
func ResolverDefinitionModelFromDomain(def *resolver.StoredDefinition) (*ResolverDefinitionModel, error) {
	document, err := json.Marshal(def.Definition)
	if err != nil {
		return nil, err
	}
	return &ResolverDefinitionModel{
		ID:          def.ID,
		Name:        def.Name,
		Description: def.Description,
		Document:    document,
		CreatedAt:   def.CreatedAt,
		UpdatedAt:   def.UpdatedAt,
	}, nil
}

// ToDomain converts the persistence shape back to the domain type
func (m *ResolverDefinitionModel) ToDomain() (*resolver.StoredDefinition, error) {
	var definition resolver.Definition
	if err := json.Unmarshal(m.Document, &definition); err != nil {
		return nil, err
	}
	return &resolver.StoredDefinition{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Definition:  definition,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}, nil
}
