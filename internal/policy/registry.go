package policy

import (
	"runtime"
	"sort"
)

// Registry holds the platform policies keyed by GOOS.
type Registry struct {
	policies map[string]PlatformPolicy
	fallback string
}

// NewRegistry creates a registry with the built-in platforms for env.
func NewRegistry(env Env) *Registry {
	return NewRegistryWithPolicies(
		NewLinuxPolicyWithEnv(env),
		NewDarwinPolicyWithEnv(env),
		NewWindowsPolicyWithEnv(env),
	)
}

// NewRegistryWithPolicies creates a registry with custom policies (for testing).
// Unknown platforms fall back to "linux" when registered.
func NewRegistryWithPolicies(policies ...PlatformPolicy) *Registry {
	r := &Registry{
		policies: make(map[string]PlatformPolicy),
		fallback: "linux",
	}
	for _, p := range policies {
		r.Register(p)
	}
	return r
}

// Register adds a policy to the registry.
func (r *Registry) Register(p PlatformPolicy) {
	r.policies[p.ID()] = p
}

// Get returns a policy by ID.
func (r *Registry) Get(id string) (PlatformPolicy, bool) {
	p, ok := r.policies[id]
	return p, ok
}

// ForOS returns the policy for goos, or the Unix fallback for other systems.
func (r *Registry) ForOS(goos string) (PlatformPolicy, bool) {
	if p, ok := r.policies[goos]; ok {
		return p, true
	}
	p, ok := r.policies[r.fallback]
	return p, ok
}

// ForCurrentOS returns the policy for runtime.GOOS.
func (r *Registry) ForCurrentOS() (PlatformPolicy, bool) {
	return r.ForOS(runtime.GOOS)
}

// List returns all policy IDs, sorted.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.policies))
	for id := range r.policies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
