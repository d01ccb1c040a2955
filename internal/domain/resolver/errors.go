package resolver

import (
	"fmt"

	"github.com/resolvd/backend/internal/domain/shared"
)

// ErrUnsupportedResolverType is returned when a definition carries an unknown
// type discriminator.
var ErrUnsupportedResolverType = shared.NewDomainError("UNSUPPORTED_RESOLVER_TYPE", "Unsupported resolver type")

// NewConfigurationError creates a configuration error for an invalid resolver
// definition. Configuration errors surface before any network call is made.
func NewConfigurationError(format string, args ...interface{}) *shared.DomainError {
	return shared.NewDomainError("CONFIGURATION_ERROR", fmt.Sprintf(format, args...))
}
