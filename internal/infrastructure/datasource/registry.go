package datasource

import (
	"sort"
	"strings"
	"sync"

	"github.com/resolvd/backend/internal/domain/datasource"
)

// Registry is the in-process datasource registry. Reads vastly outnumber
// writes (registration is administrative), so a RWMutex-guarded map is
// sufficient; concurrent overwrites are last-write-wins with no further
// guarantees.
type Registry struct {
	mu       sync.RWMutex
	profiles map[string]datasource.Profile // keyed by lower-cased name
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		profiles: make(map[string]datasource.Profile),
	}
}

// Resolve returns the profile registered under name (case-insensitive)
func (r *Registry) Resolve(name string) (datasource.Profile, error) {
	r.mu.RLock()
	profile, ok := r.profiles[strings.ToLower(name)]
	if ok {
		r.mu.RUnlock()
		return profile, nil
	}

	available := make([]string, 0, len(r.profiles))
	for _, p := range r.profiles {
		available = append(available, p.Name)
	}
	r.mu.RUnlock()

	sort.Strings(available)
	return datasource.Profile{}, &datasource.NotFoundError{Name: name, Available: available}
}

// Register inserts or overwrites the profile under its lower-cased name
func (r *Registry) Register(profile datasource.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[strings.ToLower(profile.Name)] = profile
}

// Unregister removes the profile under name and reports whether one was
// present
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := r.profiles[key]; !ok {
		return false
	}
	delete(r.profiles, key)
	return true
}

// List returns all registered profiles sorted by name
func (r *Registry) List() []datasource.Profile {
	r.mu.RLock()
	profiles := make([]datasource.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		profiles = append(profiles, p)
	}
	r.mu.RUnlock()

	sort.Slice(profiles, func(i, j int) bool {
		return strings.ToLower(profiles[i].Name) < strings.ToLower(profiles[j].Name)
	})
	return profiles
}

// Ensure Registry implements the domain interface
var _ datasource.Registry = (*Registry)(nil)
