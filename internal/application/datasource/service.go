package datasource

import (
	"go.uber.org/zap"

	"github.com/resolvd/backend/internal/domain/datasource"
)

// Service exposes administrative operations over the datasource registry.
type Service struct {
	registry datasource.Registry
	logger   *zap.Logger
}

// NewService creates a new datasource admin service
func NewService(registry datasource.Registry, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{registry: registry, logger: logger}
}

// List returns all registered datasource profiles.
func (s *Service) List() []datasource.Profile {
	return s.registry.List()
}

// Get resolves one profile by name.
func (s *Service) Get(name string) (datasource.Profile, error) {
	return s.registry.Resolve(name)
}

// Register validates and registers a profile, overwriting any profile under
// the same lower-cased name.
func (s *Service) Register(profile datasource.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	s.registry.Register(profile)
	s.logger.Info("datasource registered",
		zap.String("name", profile.Name),
		zap.String("base_address", profile.BaseAddress),
	)
	return nil
}

// Unregister removes the profile under name and reports whether one existed.
func (s *Service) Unregister(name string) bool {
	removed := s.registry.Unregister(name)
	if removed {
		s.logger.Info("datasource unregistered", zap.String("name", name))
	}
	return removed
}
