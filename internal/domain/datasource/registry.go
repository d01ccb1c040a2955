package datasource

// Registry resolves named datasource profiles. Lookup is case-insensitive;
// registration under a name that only differs in case overwrites the previous
// profile (last registration wins; registration is a rare administrative
// operation, not a contended path).
type Registry interface {
	// Resolve returns the profile registered under name. The lookup is
	// case-insensitive. Returns *NotFoundError if no profile matches.
	Resolve(name string) (Profile, error)

	// Register inserts or overwrites the profile under its lower-cased name.
	Register(profile Profile)

	// Unregister removes the profile under name and reports whether one was
	// present. Removing an absent name is not an error.
	Unregister(name string) bool

	// List returns all registered profiles.
	List() []Profile
}
