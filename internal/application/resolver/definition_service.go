package resolver

import (
	"context"

	"go.uber.org/zap"

	"github.com/resolvd/backend/internal/domain/resolver"
)

// DefinitionService manages stored resolver definitions and executes them by
// name.
type DefinitionService struct {
	repo     resolver.DefinitionRepository
	executor *Executor
	logger   *zap.Logger
}

// NewDefinitionService creates a new definition service
func NewDefinitionService(repo resolver.DefinitionRepository, executor *Executor, logger *zap.Logger) *DefinitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionService{
		repo:     repo,
		executor: executor,
		logger:   logger,
	}
}

// Create validates and stores a new named definition.
func (s *DefinitionService) Create(ctx context.Context, name, description string, def resolver.Definition) (*resolver.StoredDefinition, error) {
	stored, err := resolver.NewStoredDefinition(name, description, def)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, stored); err != nil {
		return nil, err
	}
	s.logger.Info("resolver definition created",
		zap.String("name", name),
		zap.String("type", string(def.Kind)),
	)
	return stored, nil
}

// Update replaces the description and definition stored under name.
func (s *DefinitionService) Update(ctx context.Context, name, description string, def resolver.Definition) (*resolver.StoredDefinition, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	stored, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	stored.Description = description
	stored.Definition = def
	if err := s.repo.Update(ctx, stored); err != nil {
		return nil, err
	}
	s.logger.Info("resolver definition updated", zap.String("name", name))
	return stored, nil
}

// Get returns the stored definition under name.
func (s *DefinitionService) Get(ctx context.Context, name string) (*resolver.StoredDefinition, error) {
	return s.repo.FindByName(ctx, name)
}

// List returns all stored definitions.
func (s *DefinitionService) List(ctx context.Context) ([]resolver.StoredDefinition, error) {
	return s.repo.List(ctx)
}

// Delete removes the stored definition under name.
func (s *DefinitionService) Delete(ctx context.Context, name string) error {
	if err := s.repo.Delete(ctx, name); err != nil {
		return err
	}
	s.logger.Info("resolver definition deleted", zap.String("name", name))
	return nil
}

// ExecuteByName loads a stored definition and runs it with the given input.
func (s *DefinitionService) ExecuteByName(ctx context.Context, name string, input map[string]interface{}) (*resolver.Result, error) {
	stored, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.executor.Execute(ctx, stored.Definition, input)
}
