package export

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/roleflow/internal/orchestrator"
	"github.com/dusk-indust/roleflow/internal/role"
)

func sampleDocument() *orchestrator.FinalDocument {
	return &orchestrator.FinalDocument{
		RunID: "run-7",
		Sections: []orchestrator.Section{
			{Role: role.Architect, Content: "event schema v2", Handoff: "schema fixed"},
			{Role: role.Delivery, Content: "staged rollout plan"},
		},
		Notes: &orchestrator.CrossAgentNotes{
			Resolved: []orchestrator.Conflict{{
				Dimension: "rollout-risk",
				Resolution: &orchestrator.Resolution{
					Owner:        role.Delivery,
					Decision:     "staged rollout",
					OverrideNote: "accepted risk: engineer position overridden: big bang",
				},
			}},
			Escalations: []orchestrator.Escalation{{
				Dimension: "branding",
				Reason:    "no owner configured for dimension",
				PositionA: "call it v2",
				PositionB: "call it next",
			}},
			LoopBacks: []orchestrator.LoopBackEvent{
				{From: role.Delivery, Target: role.Architect, Reason: "missing contract"},
			},
		},
	}
}

func TestRenderJSON(t *testing.T) {
	out, err := RenderJSON(sampleDocument())
	require.NoError(t, err)

	var exported DocumentExport
	require.NoError(t, json.Unmarshal(out, &exported))

	assert.Equal(t, "run-7", exported.RunID)
	assert.NotEmpty(t, exported.ExportedAt)
	require.Len(t, exported.Sections, 2)
	assert.Equal(t, "architect", exported.Sections[0].Role)
	require.NotNil(t, exported.Notes)
	require.Len(t, exported.Notes.Resolved, 1)
	assert.Equal(t, "delivery", exported.Notes.Resolved[0].Owner)
	require.Len(t, exported.Notes.Escalations, 1)
	assert.Equal(t, "call it v2", exported.Notes.Escalations[0].PositionA)
	require.Len(t, exported.Notes.LoopBacks, 1)
}

func TestRenderJSON_CleanRunOmitsNotes(t *testing.T) {
	doc := &orchestrator.FinalDocument{
		RunID:     "run-1",
		Unwrapped: true,
		Sections:  []orchestrator.Section{{Role: role.Engineer, Content: "done"}},
	}

	out, err := RenderJSON(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "\"notes\"")
}

func TestRenderMarkdown_MultiRole(t *testing.T) {
	md := RenderMarkdown(sampleDocument())

	assert.Contains(t, md, "## architect")
	assert.Contains(t, md, "## delivery")
	assert.Contains(t, md, "> handoff: schema fixed")
	assert.Contains(t, md, "## Cross-agent notes")
	assert.Contains(t, md, "**rollout-risk** resolved by delivery")
	assert.Contains(t, md, "**branding** escalated")
	assert.Contains(t, md, "loop-back delivery -> architect")

	// Sections come in pipeline order.
	assert.Less(t, strings.Index(md, "## architect"), strings.Index(md, "## delivery"))
}

func TestRenderMarkdown_SingleRoleUnwrapped(t *testing.T) {
	doc := &orchestrator.FinalDocument{
		RunID:     "run-1",
		Unwrapped: true,
		Sections:  []orchestrator.Section{{Role: role.Engineer, Content: "patched the handler"}},
	}

	md := RenderMarkdown(doc)
	assert.Equal(t, "patched the handler\n", md)
}
