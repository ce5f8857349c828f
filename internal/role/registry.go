package role

import (
	"fmt"
	"sort"
)

// Registry is the validated, read-only role table plus the ownership index
// derived from it. Safe for concurrent use after construction.
type Registry struct {
	roles  []Role
	byID   map[ID]Role
	owners map[string]ID // conflict dimension -> owning role
}

// NewRegistry validates the given role table and builds the ownership index.
// Overlapping ownership of a single conflict dimension is a construction
// error, as is a fallback reference to a missing role or a table with no
// implementation-capable role.
func NewRegistry(roles []Role) (*Registry, error) {
	if len(roles) == 0 {
		return nil, fmt.Errorf("registry: empty role table")
	}

	byID := make(map[ID]Role, len(roles))
	positions := make(map[int]ID, len(roles))
	for _, r := range roles {
		if _, dup := byID[r.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate role id %q", r.ID)
		}
		if prev, dup := positions[r.Position]; dup {
			return nil, fmt.Errorf("registry: roles %q and %q share pipeline position %d", prev, r.ID, r.Position)
		}
		byID[r.ID] = r
		positions[r.Position] = r.ID
	}

	owners := make(map[string]ID)
	hasImpl := false
	for _, r := range roles {
		if r.Fallback == r.ID {
			return nil, fmt.Errorf("registry: role %q lists itself as fallback", r.ID)
		}
		if _, ok := byID[r.Fallback]; !ok {
			return nil, fmt.Errorf("registry: role %q has unknown fallback %q", r.ID, r.Fallback)
		}
		for _, dim := range r.Owns {
			if prev, taken := owners[dim]; taken {
				return nil, fmt.Errorf("registry: dimension %q owned by both %q and %q", dim, prev, r.ID)
			}
			owners[dim] = r.ID
		}
		if r.Implementation {
			hasImpl = true
		}
	}
	if !hasImpl {
		return nil, fmt.Errorf("registry: no implementation-capable role in table")
	}

	sorted := make([]Role, len(roles))
	copy(sorted, roles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	return &Registry{roles: sorted, byID: byID, owners: owners}, nil
}

// MustBuiltin builds a registry from the built-in table, panicking on error.
// The built-in table is covered by tests, so a panic here means a broken build.
func MustBuiltin() *Registry {
	reg, err := NewRegistry(Builtin())
	if err != nil {
		panic(err)
	}
	return reg
}

// Roles returns all roles in pipeline order.
func (reg *Registry) Roles() []Role {
	out := make([]Role, len(reg.roles))
	copy(out, reg.roles)
	return out
}

// Lookup returns the role with the given id.
func (reg *Registry) Lookup(id ID) (Role, bool) {
	r, ok := reg.byID[id]
	return r, ok
}

// Known reports whether id names a registered role.
func (reg *Registry) Known(id ID) bool {
	_, ok := reg.byID[id]
	return ok
}

// Owner returns the role owning the given conflict dimension.
func (reg *Registry) Owner(dimension string) (ID, bool) {
	id, ok := reg.owners[dimension]
	return id, ok
}
