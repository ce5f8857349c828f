package role

import (
	"errors"
	"fmt"
	"sort"
)

// ErrNoImplementationRole is returned when project configuration disables the
// last role capable of implementation-level output. It is fatal: the minimum
// viable pipeline always retains one such role.
var ErrNoImplementationRole = errors.New("no implementation-capable role remains enabled")

// Keyword is a trigger phrase together with the role it originally belonged
// to. Origin differs from the carrying role when the phrase was inherited
// through absorption.
type Keyword struct {
	Phrase string
	Origin ID
}

// ActiveRole is a role as seen by one run: its own definition plus whatever
// it absorbed from disabled roles.
type ActiveRole struct {
	Role
	Triggers []Keyword // own keywords plus inherited ones, with origin
	Absorbed []ID      // disabled roles contracted onto this role
}

// ActiveView is the post-absorption role set for a single configuration.
// Built fresh per request (or cached read-only per project); never mutated.
type ActiveView struct {
	roles    []ActiveRole
	byID     map[ID]*ActiveRole
	owners   map[string]ID // dimension -> active owner (post-transfer)
	absorbed map[ID]ID     // disabled role -> enabled role that absorbed it
}

// Activate contracts the registry onto the enabled subset. Each disabled
// role's keywords, owned dimensions, and pipeline slot transfer to its static
// fallback, following the fallback chain until an enabled role is reached.
// Extra keywords from project configuration are attached to their role (or to
// its absorber when the role is disabled).
func (reg *Registry) Activate(disabled map[ID]bool, extra map[ID][]string) (*ActiveView, error) {
	view := &ActiveView{
		byID:     make(map[ID]*ActiveRole),
		owners:   make(map[string]ID),
		absorbed: make(map[ID]ID),
	}

	hasImpl := false
	for _, r := range reg.roles {
		if disabled[r.ID] {
			continue
		}
		ar := ActiveRole{Role: r}
		for _, kw := range r.Keywords {
			ar.Triggers = append(ar.Triggers, Keyword{Phrase: kw, Origin: r.ID})
		}
		for _, dim := range r.Owns {
			view.owners[dim] = r.ID
		}
		view.roles = append(view.roles, ar)
		if r.Implementation {
			hasImpl = true
		}
	}
	if !hasImpl {
		return nil, fmt.Errorf("activate: %w", ErrNoImplementationRole)
	}

	// Index after the slice is final so pointers stay valid.
	for i := range view.roles {
		view.byID[view.roles[i].ID] = &view.roles[i]
	}

	// Contract each disabled role onto the first enabled role along its
	// fallback chain.
	for _, r := range reg.roles {
		if !disabled[r.ID] {
			continue
		}
		target, err := reg.resolveFallback(r, disabled)
		if err != nil {
			return nil, err
		}
		ar := view.byID[target]
		ar.Absorbed = append(ar.Absorbed, r.ID)
		view.absorbed[r.ID] = target
		for _, kw := range r.Keywords {
			ar.Triggers = append(ar.Triggers, Keyword{Phrase: kw, Origin: r.ID})
		}
		for _, dim := range r.Owns {
			view.owners[dim] = target
		}
	}

	// Project-supplied extra keywords, routed through absorption.
	ids := make([]ID, 0, len(extra))
	for id := range extra {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		target := id
		if t, ok := view.absorbed[id]; ok {
			target = t
		}
		ar, ok := view.byID[target]
		if !ok {
			continue
		}
		for _, kw := range extra[id] {
			ar.Triggers = append(ar.Triggers, Keyword{Phrase: kw, Origin: id})
		}
	}

	return view, nil
}

// resolveFallback walks the fallback chain from r until it reaches an enabled
// role. The chain over the small fixed table always terminates unless every
// role along it is disabled.
func (reg *Registry) resolveFallback(r Role, disabled map[ID]bool) (ID, error) {
	seen := map[ID]bool{r.ID: true}
	cur := r.Fallback
	for {
		if !disabled[cur] {
			return cur, nil
		}
		if seen[cur] {
			return "", fmt.Errorf("activate: fallback chain from %q has no enabled role", r.ID)
		}
		seen[cur] = true
		cur = reg.byID[cur].Fallback
	}
}

// Roles returns the active roles in pipeline order.
func (v *ActiveView) Roles() []ActiveRole {
	out := make([]ActiveRole, len(v.roles))
	copy(out, v.roles)
	return out
}

// Lookup returns the active role with the given id.
func (v *ActiveView) Lookup(id ID) (ActiveRole, bool) {
	ar, ok := v.byID[id]
	if !ok {
		return ActiveRole{}, false
	}
	return *ar, true
}

// Resolve maps id to the active role carrying its responsibilities: the role
// itself when enabled, its absorber when disabled.
func (v *ActiveView) Resolve(id ID) (ActiveRole, bool) {
	if ar, ok := v.byID[id]; ok {
		return *ar, true
	}
	if target, ok := v.absorbed[id]; ok {
		return *v.byID[target], true
	}
	return ActiveRole{}, false
}

// Owner returns the active role owning the given conflict dimension, after
// ownership transfer from any absorbed roles.
func (v *ActiveView) Owner(dimension string) (ID, bool) {
	id, ok := v.owners[dimension]
	return id, ok
}

// Implementation returns the first implementation-capable active role.
func (v *ActiveView) Implementation() ActiveRole {
	for _, ar := range v.roles {
		if ar.Role.Implementation {
			return ar
		}
	}
	// Activate guarantees at least one.
	return ActiveRole{}
}
