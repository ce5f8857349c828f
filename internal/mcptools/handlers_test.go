package mcptools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/roleflow/internal/orchestrator"
	"github.com/dusk-indust/roleflow/internal/role"
)

// mockOrchestrator is a test double for orchestrator.Orchestrator.
type mockOrchestrator struct {
	routeResult []orchestrator.ActivationDecision
	routeErr    error
	runResult   *orchestrator.FinalDocument
	runErr      error

	lastRequest orchestrator.TaskRequest
}

func (m *mockOrchestrator) Route(_ context.Context, req orchestrator.TaskRequest) ([]orchestrator.ActivationDecision, error) {
	m.lastRequest = req
	return m.routeResult, m.routeErr
}

func (m *mockOrchestrator) Run(_ context.Context, req orchestrator.TaskRequest) (*orchestrator.FinalDocument, error) {
	m.lastRequest = req
	if m.runErr != nil {
		return nil, m.runErr
	}
	return m.runResult, nil
}

func TestRouteTask(t *testing.T) {
	mock := &mockOrchestrator{
		routeResult: []orchestrator.ActivationDecision{
			{Role: role.Engineer, Score: 6, Activated: true, Reason: orchestrator.ReasonScored},
			{Role: role.Product, Score: 0, Activated: false},
		},
	}
	svc := NewRoleFlowService(mock, role.MustBuiltin())

	_, out, err := svc.RouteTask(context.Background(), nil, RouteTaskInput{
		Task: "fix the null pointer bug in the login handler",
	})
	require.NoError(t, err)

	assert.False(t, out.NeedsClarification)
	require.Len(t, out.Decisions, 2)
	assert.Equal(t, "engineer", out.Decisions[0].Role)
	assert.True(t, out.Decisions[0].Activated)
	assert.Equal(t, "scored", out.Decisions[0].Reason)
	assert.Equal(t, "fix the null pointer bug in the login handler", mock.lastRequest.Text)
}

func TestRouteTask_AmbiguityAsksForClarification(t *testing.T) {
	mock := &mockOrchestrator{
		routeErr: &orchestrator.ActivationAmbiguityError{
			FocusAreas: []string{"product: what to build", "engineer: how to make it work"},
		},
	}
	svc := NewRoleFlowService(mock, role.MustBuiltin())

	_, out, err := svc.RouteTask(context.Background(), nil, RouteTaskInput{Task: "hmm"})

	// Ambiguity is a clarification request, not a tool failure.
	require.NoError(t, err)
	assert.True(t, out.NeedsClarification)
	assert.Len(t, out.FocusAreas, 2)
	assert.Empty(t, out.Decisions)
}

func TestRouteTask_OtherErrorsPropagate(t *testing.T) {
	mock := &mockOrchestrator{routeErr: errors.New("registry broken")}
	svc := NewRoleFlowService(mock, role.MustBuiltin())

	_, _, err := svc.RouteTask(context.Background(), nil, RouteTaskInput{Task: "x"})
	require.Error(t, err)
}

func TestRunTask(t *testing.T) {
	mock := &mockOrchestrator{
		runResult: &orchestrator.FinalDocument{
			RunID: "run-42",
			Sections: []orchestrator.Section{
				{Role: role.Architect, Content: "schema", Handoff: "schema fixed"},
				{Role: role.Delivery, Content: "plan"},
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
				LoopBacks: []orchestrator.LoopBackEvent{
					{From: role.Delivery, Target: role.Architect, Reason: "missing contract"},
				},
			},
		},
	}
	svc := NewRoleFlowService(mock, role.MustBuiltin())

	_, out, err := svc.RunTask(context.Background(), nil, RunTaskInput{
		Task:           "design and plan",
		AcceptDefaults: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "run-42", out.RunID)
	assert.False(t, out.Unwrapped)
	require.Len(t, out.Sections, 2)
	assert.Equal(t, "architect", out.Sections[0].Role)
	assert.Equal(t, "schema fixed", out.Sections[0].Handoff)

	require.NotNil(t, out.Notes)
	require.Len(t, out.Notes.Resolved, 1)
	assert.Contains(t, out.Notes.Resolved[0], "rollout-risk")
	assert.Contains(t, out.Notes.Resolved[0], "staged rollout")
	require.Len(t, out.Notes.LoopBacks, 1)
	assert.Contains(t, out.Notes.LoopBacks[0], "re-entered at architect")

	assert.True(t, mock.lastRequest.AcceptDefaults)
}

func TestRunTask_CleanRunHasNoNotes(t *testing.T) {
	mock := &mockOrchestrator{
		runResult: &orchestrator.FinalDocument{
			RunID:     "run-1",
			Unwrapped: true,
			Sections:  []orchestrator.Section{{Role: role.Engineer, Content: "done"}},
		},
	}
	svc := NewRoleFlowService(mock, role.MustBuiltin())

	_, out, err := svc.RunTask(context.Background(), nil, RunTaskInput{Task: "fix it"})
	require.NoError(t, err)

	assert.True(t, out.Unwrapped)
	assert.Nil(t, out.Notes)
}

func TestRunTask_ErrorPropagates(t *testing.T) {
	mock := &mockOrchestrator{runErr: errors.New("loop-back budget exceeded")}
	svc := NewRoleFlowService(mock, role.MustBuiltin())

	_, _, err := svc.RunTask(context.Background(), nil, RunTaskInput{Task: "x"})
	require.Error(t, err)
}

func TestListRoles(t *testing.T) {
	svc := NewRoleFlowService(&mockOrchestrator{}, role.MustBuiltin())

	_, out, err := svc.ListRoles(context.Background(), nil, ListRolesInput{})
	require.NoError(t, err)

	require.Len(t, out.Roles, 4)
	// Pipeline order, not alphabetical.
	assert.Equal(t, "product", out.Roles[0].Role)
	assert.Equal(t, "delivery", out.Roles[3].Role)
	assert.Equal(t, 1, out.Roles[0].Position)
	assert.True(t, out.Roles[2].Implementation)
	assert.Contains(t, out.Roles[3].Owns, "rollout-risk")
	assert.Equal(t, "engineer", out.Roles[3].Fallback)
}

func TestNewRoleFlowMCPServer(t *testing.T) {
	server := NewRoleFlowMCPServer(&mockOrchestrator{}, role.MustBuiltin())
	require.NotNil(t, server)
}
