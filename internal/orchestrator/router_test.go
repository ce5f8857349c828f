package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dusk-indust/roleflow/internal/role"
)

// fullView returns the post-absorption view with all roles enabled.
func fullView(t *testing.T) *role.ActiveView {
	t.Helper()
	view, err := role.MustBuiltin().Activate(nil, nil)
	require.NoError(t, err)
	return view
}

func activatedIDs(decisions []ActivationDecision) []role.ID {
	var out []role.ID
	for _, d := range decisions {
		if d.Activated {
			out = append(out, d.Role)
		}
	}
	return out
}

func decisionFor(t *testing.T, decisions []ActivationDecision, id role.ID) ActivationDecision {
	t.Helper()
	for _, d := range decisions {
		if d.Role == id {
			return d
		}
	}
	t.Fatalf("no decision for role %q", id)
	return ActivationDecision{}
}

func TestClassify_NarrowTaskActivatesImplementationOnly(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	decisions, err := router.Classify(TaskRequest{Text: "fix the null pointer bug in the login handler"})
	require.NoError(t, err)

	assert.Equal(t, []role.ID{role.Engineer}, activatedIDs(decisions))
	assert.Equal(t, ReasonScored, decisionFor(t, decisions, role.Engineer).Reason)
}

func TestClassify_CrossCuttingTaskActivatesBothRoles(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	decisions, err := router.Classify(TaskRequest{
		Text: "design the event schema for order cancellation and plan the rollout",
	})
	require.NoError(t, err)

	assert.Equal(t, []role.ID{role.Architect, role.Delivery}, activatedIDs(decisions))
}

func TestClassify_ZeroSignalReturnsAmbiguity(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	for _, text := range []string{"hello there", "", "   \t\n"} {
		_, err := router.Classify(TaskRequest{Text: text})
		var ambErr *ActivationAmbiguityError
		require.ErrorAs(t, err, &ambErr, "text %q", text)
		assert.Len(t, ambErr.FocusAreas, 4)
	}
}

func TestClassify_AcceptDefaultsRoutesToImplementationRole(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	decisions, err := router.Classify(TaskRequest{Text: "hello there", AcceptDefaults: true})
	require.NoError(t, err)

	assert.Equal(t, []role.ID{role.Engineer}, activatedIDs(decisions))
	assert.Equal(t, ReasonAcceptedDefaults, decisionFor(t, decisions, role.Engineer).Reason)
}

func TestClassify_ExplicitPrefixBypassesScoring(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	// The body would score engineer highest; the prefix still wins.
	decisions, err := router.Classify(TaskRequest{Text: "@delivery fix the bug in the handler"})
	require.NoError(t, err)

	assert.Equal(t, []role.ID{role.Delivery}, activatedIDs(decisions))
	assert.Equal(t, ReasonExplicitPrefix, decisionFor(t, decisions, role.Delivery).Reason)
}

func TestClassify_MultiplePrefixes(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	decisions, err := router.Classify(TaskRequest{Text: "@architect @delivery plan the rollout"})
	require.NoError(t, err)

	assert.Equal(t, []role.ID{role.Architect, role.Delivery}, activatedIDs(decisions))
}

func TestClassify_UnknownPrefixRole(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	_, err := router.Classify(TaskRequest{Text: "@wizard do something"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wizard")
}

func TestClassify_PrefixOfDisabledRoleResolvesToAbsorber(t *testing.T) {
	view, err := role.MustBuiltin().Activate(map[role.ID]bool{role.Delivery: true}, nil)
	require.NoError(t, err)
	router := NewRouter(view, 0.7, zap.NewNop())

	decisions, err := router.Classify(TaskRequest{Text: "@delivery plan the release"})
	require.NoError(t, err)

	assert.Equal(t, []role.ID{role.Engineer}, activatedIDs(decisions))
	assert.Equal(t, ReasonAbsorbed, decisionFor(t, decisions, role.Engineer).Reason)
}

func TestClassify_InheritedVocabularyMarksAbsorbed(t *testing.T) {
	view, err := role.MustBuiltin().Activate(map[role.ID]bool{role.Delivery: true}, nil)
	require.NoError(t, err)
	router := NewRouter(view, 0.7, zap.NewNop())

	// "rollout" and "milestone" are delivery vocabulary, now carried by
	// engineer through absorption.
	decisions, err := router.Classify(TaskRequest{Text: "rollout milestone review"})
	require.NoError(t, err)

	assert.Equal(t, []role.ID{role.Engineer}, activatedIDs(decisions))
	assert.Equal(t, ReasonAbsorbed, decisionFor(t, decisions, role.Engineer).Reason)
}

func TestClassify_RepetitionIsCapped(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	decisions, err := router.Classify(TaskRequest{Text: "bug bug bug bug bug bug"})
	require.NoError(t, err)

	// Six occurrences count as three: repetition cannot dominate.
	assert.InDelta(t, 3.0, decisionFor(t, decisions, role.Engineer).Score, 1e-9)
}

func TestClassify_TokenBoundaryMatching(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())

	// "debugging" must not count as "bug"; "prefix" must not count as "fix".
	_, err := router.Classify(TaskRequest{Text: "prefixes and debugging"})
	var ambErr *ActivationAmbiguityError
	require.ErrorAs(t, err, &ambErr)
}

func TestClassify_Idempotent(t *testing.T) {
	router := NewRouter(fullView(t), 0.7, zap.NewNop())
	req := TaskRequest{Text: "design the event schema for order cancellation and plan the rollout"}

	first, err := router.Classify(req)
	require.NoError(t, err)
	second, err := router.Classify(req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestClassify_ThresholdIsTunable(t *testing.T) {
	req := TaskRequest{Text: "design the event schema for order cancellation and plan the rollout"}

	// A permissive ratio lets the lower-scoring role in; a strict one
	// narrows activation to the top scorer.
	loose := NewRouter(fullView(t), 0.1, zap.NewNop())
	decisions, err := loose.Classify(req)
	require.NoError(t, err)
	assert.Contains(t, activatedIDs(decisions), role.Delivery)

	strict := NewRouter(fullView(t), 1.0, zap.NewNop())
	decisions, err = strict.Classify(req)
	require.NoError(t, err)
	assert.Equal(t, []role.ID{role.Architect}, activatedIDs(decisions))
}

func TestSplitPrefix(t *testing.T) {
	tests := []struct {
		text string
		ids  []string
		rest string
	}{
		{"fix the bug", nil, "fix the bug"},
		{"@engineer fix the bug", []string{"engineer"}, "fix the bug"},
		{"@architect @delivery plan", []string{"architect", "delivery"}, "plan"},
		{"  @product scope it  ", []string{"product"}, "scope it"},
		{"mail@example.com is broken", nil, "mail@example.com is broken"},
	}

	for _, tt := range tests {
		ids, rest := SplitPrefix(tt.text)
		assert.Equal(t, tt.ids, ids, tt.text)
		assert.Equal(t, tt.rest, rest, tt.text)
	}
}
