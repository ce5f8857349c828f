package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_Builtin(t *testing.T) {
	reg, err := NewRegistry(Builtin())
	require.NoError(t, err)

	roles := reg.Roles()
	require.Len(t, roles, 4)

	// Pipeline order is ascending by position.
	for i := 1; i < len(roles); i++ {
		assert.Greater(t, roles[i].Position, roles[i-1].Position)
	}

	owner, ok := reg.Owner("rollout-risk")
	require.True(t, ok)
	assert.Equal(t, Delivery, owner)
}

func TestNewRegistry_RejectsOverlappingOwnership(t *testing.T) {
	roles := Builtin()
	// Give product a dimension already owned by delivery.
	roles[0].Owns = append(roles[0].Owns, "rollout-risk")

	_, err := NewRegistry(roles)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rollout-risk")
}

func TestNewRegistry_RejectsBadTables(t *testing.T) {
	tests := []struct {
		name   string
		mutate func([]Role) []Role
	}{
		{
			name: "duplicate id",
			mutate: func(rs []Role) []Role {
				rs[1].ID = rs[0].ID
				return rs
			},
		},
		{
			name: "duplicate position",
			mutate: func(rs []Role) []Role {
				rs[1].Position = rs[0].Position
				return rs
			},
		},
		{
			name: "self fallback",
			mutate: func(rs []Role) []Role {
				rs[0].Fallback = rs[0].ID
				return rs
			},
		},
		{
			name: "unknown fallback",
			mutate: func(rs []Role) []Role {
				rs[0].Fallback = "nonexistent"
				return rs
			},
		},
		{
			name: "no implementation role",
			mutate: func(rs []Role) []Role {
				for i := range rs {
					rs[i].Implementation = false
				}
				return rs
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.mutate(Builtin()))
			assert.Error(t, err)
		})
	}
}

func TestActivate_NoDisables(t *testing.T) {
	reg := MustBuiltin()

	view, err := reg.Activate(nil, nil)
	require.NoError(t, err)
	assert.Len(t, view.Roles(), 4)

	ar, ok := view.Resolve(Product)
	require.True(t, ok)
	assert.Equal(t, Product, ar.ID)
	assert.Empty(t, ar.Absorbed)
}

func TestActivate_TransfersOwnershipAndKeywords(t *testing.T) {
	reg := MustBuiltin()

	view, err := reg.Activate(map[ID]bool{Delivery: true}, nil)
	require.NoError(t, err)
	require.Len(t, view.Roles(), 3)

	// Delivery's dimensions now resolve to its fallback (engineer).
	owner, ok := view.Owner("rollout-risk")
	require.True(t, ok)
	assert.Equal(t, Engineer, owner)

	// Delivery's keywords were inherited with origin preserved.
	eng, ok := view.Lookup(Engineer)
	require.True(t, ok)
	var inherited bool
	for _, kw := range eng.Triggers {
		if kw.Phrase == "rollout" {
			inherited = true
			assert.Equal(t, Delivery, kw.Origin)
		}
	}
	assert.True(t, inherited, "engineer should carry delivery's trigger vocabulary")

	// A prefix naming the disabled role resolves to the absorber.
	ar, ok := view.Resolve(Delivery)
	require.True(t, ok)
	assert.Equal(t, Engineer, ar.ID)
	assert.Contains(t, ar.Absorbed, Delivery)
}

func TestActivate_ChainedFallback(t *testing.T) {
	reg := MustBuiltin()

	// Product falls back to architect; with architect also disabled the
	// chain continues to engineer.
	view, err := reg.Activate(map[ID]bool{Product: true, Architect: true}, nil)
	require.NoError(t, err)

	ar, ok := view.Resolve(Product)
	require.True(t, ok)
	assert.Equal(t, Engineer, ar.ID)

	owner, ok := view.Owner("data-model")
	require.True(t, ok)
	assert.Equal(t, Engineer, owner)
}

func TestActivate_DisablingImplementationRoleIsFatal(t *testing.T) {
	reg := MustBuiltin()

	_, err := reg.Activate(map[ID]bool{Engineer: true}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoImplementationRole)
}

func TestActivate_ExtraKeywordsFollowAbsorption(t *testing.T) {
	reg := MustBuiltin()

	extra := map[ID][]string{
		Product:  {"charter"},
		Delivery: {"cutover"},
	}
	view, err := reg.Activate(map[ID]bool{Delivery: true}, extra)
	require.NoError(t, err)

	prod, _ := view.Lookup(Product)
	assert.Contains(t, phrases(prod.Triggers), "charter")

	// Delivery is disabled, so its extra keyword lands on engineer.
	eng, _ := view.Lookup(Engineer)
	assert.Contains(t, phrases(eng.Triggers), "cutover")
}

func phrases(kws []Keyword) []string {
	out := make([]string, len(kws))
	for i, kw := range kws {
		out[i] = kw.Phrase
	}
	return out
}
