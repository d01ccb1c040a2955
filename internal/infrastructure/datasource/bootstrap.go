package datasource

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/resolvd/backend/internal/domain/datasource"
)

// envPrefix marks the process environment entries that declare datasources:
// DATASOURCE_<NAME> = <type>|<baseUrl>|<timeoutMs>|<retryCount>
const envPrefix = "DATASOURCE_"

// LoadFromEnviron parses all DATASOURCE_* entries from the given environment
// (as returned by os.Environ) into profiles. The profile name is the
// environment suffix lower-cased; a malformed entry fails the whole load so
// misconfiguration is caught at startup rather than at first call.
func LoadFromEnviron(environ []string) ([]datasource.Profile, error) {
	var profiles []datasource.Profile
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) {
			continue
		}
		name := strings.ToLower(strings.TrimPrefix(key, envPrefix))
		if name == "" {
			continue
		}

		profile, err := ParseProfile(name, value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// ParseProfile parses one <type>|<baseUrl>|<timeoutMs>|<retryCount> value
func ParseProfile(name, value string) (datasource.Profile, error) {
	parts := strings.Split(value, "|")
	if len(parts) != 4 {
		return datasource.Profile{}, fmt.Errorf("expected <type>|<baseUrl>|<timeoutMs>|<retryCount>, got %d field(s)", len(parts))
	}

	timeoutMs, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return datasource.Profile{}, fmt.Errorf("invalid timeout %q: %w", parts[2], err)
	}
	retryBudget, err := strconv.Atoi(strings.TrimSpace(parts[3]))
	if err != nil {
		return datasource.Profile{}, fmt.Errorf("invalid retry count %q: %w", parts[3], err)
	}

	profile := datasource.Profile{
		Name:        name,
		Kind:        strings.TrimSpace(parts[0]),
		BaseAddress: strings.TrimSpace(parts[1]),
		TimeoutMs:   timeoutMs,
		RetryBudget: retryBudget,
	}
	if err := profile.Validate(); err != nil {
		return datasource.Profile{}, err
	}
	return profile, nil
}

// BootstrapRegistry creates a registry populated from the environment
func BootstrapRegistry(environ []string) (*Registry, error) {
	profiles, err := LoadFromEnviron(environ)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, profile := range profiles {
		registry.Register(profile)
	}
	return registry, nil
}
