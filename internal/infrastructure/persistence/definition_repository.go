package persistence

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/resolvd/backend/internal/domain/resolver"
	"github.com/resolvd/backend/internal/domain/shared"
	"github.com/resolvd/backend/internal/infrastructure/persistence/models"
)

// GormDefinitionRepository implements resolver.DefinitionRepository backed by
// a relational database.
type GormDefinitionRepository struct {
	db *gorm.DB
}

// NewGormDefinitionRepository creates a new definition repository
func NewGormDefinitionRepository(db *gorm.DB) *GormDefinitionRepository {
	return &GormDefinitionRepository{db: db}
}

var _ resolver.DefinitionRepository = (*GormDefinitionRepository)(nil)

// Create persists a new stored definition. Definition names are unique.
func (r *GormDefinitionRepository) Create(ctx context.Context, def *resolver.StoredDefinition) error {
	model, err := models.ResolverDefinitionModelFromDomain(def)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if isUniqueViolation(err) {
			return shared.NewDomainError("ALREADY_EXISTS", "definition with this name already exists")
		}
		return err
	}
	def.CreatedAt = model.CreatedAt
	def.UpdatedAt = model.UpdatedAt
	return nil
}

// Update replaces the description and document of an existing definition.
func (r *GormDefinitionRepository) Update(ctx context.Context, def *resolver.StoredDefinition) error {
	model, err := models.ResolverDefinitionModelFromDomain(def)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&models.ResolverDefinitionModel{}).
		Where("name = ?", def.Name).
		Updates(map[string]interface{}{
			"description": model.Description,
			"document":    model.Document,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByName loads a stored definition by its unique name.
func (r *GormDefinitionRepository) FindByName(ctx context.Context, name string) (*resolver.StoredDefinition, error) {
	var model models.ResolverDefinitionModel
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// List returns all stored definitions ordered by name.
func (r *GormDefinitionRepository) List(ctx context.Context) ([]resolver.StoredDefinition, error) {
	var rows []models.ResolverDefinitionModel
	if err := r.db.WithContext(ctx).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	defs := make([]resolver.StoredDefinition, 0, len(rows))
	for _, row := range rows {
		def, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		defs = append(defs, *def)
	}
	return defs, nil
}

// Delete removes a stored definition by name.
func (r *GormDefinitionRepository) Delete(ctx context.Context, name string) error {
	result := r.db.WithContext(ctx).Where("name = ?", name).Delete(&models.ResolverDefinitionModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint failed")
}
