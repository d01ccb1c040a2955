package datasource

import (
	"time"

	"github.com/resolvd/backend/internal/domain/shared"
)

// Profile is a named backend connection profile. Profiles are immutable once
// registered; the registry keys them by lower-cased name while Name preserves
// the original casing.
type Profile struct {
	Name           string            `json:"name"`
	Kind           string            `json:"kind"`
	BaseAddress    string            `json:"base_address"`
	TimeoutMs      int               `json:"timeout_ms"`
	RetryBudget    int               `json:"retry_budget"`
	DefaultHeaders map[string]string `json:"default_headers,omitempty"`
}

// Timeout returns the per-attempt timeout as a duration.
func (p Profile) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if p.Name == "" {
		return shared.NewDomainError("CONFIGURATION_ERROR", "datasource name is required")
	}
	if p.BaseAddress == "" {
		return shared.NewDomainError("CONFIGURATION_ERROR", "datasource base address is required")
	}
	if p.TimeoutMs <= 0 {
		return shared.NewDomainError("CONFIGURATION_ERROR", "datasource timeout must be positive")
	}
	if p.RetryBudget < 1 {
		return shared.NewDomainError("CONFIGURATION_ERROR", "datasource retry budget must be at least 1")
	}
	return nil
}
