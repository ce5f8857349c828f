package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/roleflow/internal/orchestrator"
	"github.com/dusk-indust/roleflow/internal/role"
)

// RoleFlowService handles MCP tool calls for the roleflow server mode.
// It wraps an Orchestrator for routing and execution and a Registry for
// role introspection.
type RoleFlowService struct {
	orch orchestrator.Orchestrator
	reg  *role.Registry
}

// NewRoleFlowService creates a RoleFlowService.
func NewRoleFlowService(orch orchestrator.Orchestrator, reg *role.Registry) *RoleFlowService {
	return &RoleFlowService{orch: orch, reg: reg}
}

// RouteTask classifies a task without executing it. An ambiguous task is not
// an error at the tool boundary: the output asks for clarification and lists
// the role focus areas.
func (s *RoleFlowService) RouteTask(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RouteTaskInput,
) (*mcp.CallToolResult, RouteTaskOutput, error) {
	decisions, err := s.orch.Route(ctx, orchestrator.TaskRequest{
		Text:           input.Task,
		AcceptDefaults: input.AcceptDefaults,
	})
	if err != nil {
		var ambErr *orchestrator.ActivationAmbiguityError
		if errors.As(err, &ambErr) {
			return nil, RouteTaskOutput{
				NeedsClarification: true,
				FocusAreas:         ambErr.FocusAreas,
			}, nil
		}
		return nil, RouteTaskOutput{}, err
	}

	out := RouteTaskOutput{}
	for _, d := range decisions {
		out.Decisions = append(out.Decisions, RoleDecision{
			Role:      string(d.Role),
			Score:     d.Score,
			Activated: d.Activated,
			Reason:    string(d.Reason),
		})
	}
	return nil, out, nil
}

// RunTask routes and executes a task, returning the assembled document.
func (s *RoleFlowService) RunTask(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RunTaskInput,
) (*mcp.CallToolResult, RunTaskOutput, error) {
	doc, err := s.orch.Run(ctx, orchestrator.TaskRequest{
		Text:           input.Task,
		AcceptDefaults: input.AcceptDefaults,
	})
	if err != nil {
		return nil, RunTaskOutput{}, err
	}

	out := RunTaskOutput{
		RunID:     doc.RunID,
		Unwrapped: doc.Unwrapped,
	}
	for _, sec := range doc.Sections {
		out.Sections = append(out.Sections, DocumentSection{
			Role:    string(sec.Role),
			Content: sec.Content,
			Handoff: sec.Handoff,
		})
	}
	out.Notes = summarizeNotes(doc.Notes)
	return nil, out, nil
}

// ListRoles reports every registered role in pipeline order.
func (s *RoleFlowService) ListRoles(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListRolesInput,
) (*mcp.CallToolResult, ListRolesOutput, error) {
	out := ListRolesOutput{}
	for _, r := range s.reg.Roles() {
		out.Roles = append(out.Roles, RoleSummary{
			Role:           string(r.ID),
			Focus:          r.Focus,
			Position:       r.Position,
			Implementation: r.Implementation,
			Owns:           r.Owns,
			Fallback:       string(r.Fallback),
		})
	}
	return nil, out, nil
}

func summarizeNotes(notes *orchestrator.CrossAgentNotes) *NotesSummary {
	if notes == nil {
		return nil
	}
	sum := &NotesSummary{}
	for _, c := range notes.Resolved {
		sum.Resolved = append(sum.Resolved, fmt.Sprintf("%s: %s decided %q (%s)",
			c.Dimension, c.Resolution.Owner, c.Resolution.Decision, c.Resolution.OverrideNote))
	}
	for _, e := range notes.Escalations {
		sum.Escalations = append(sum.Escalations, fmt.Sprintf("%s: %s (positions: %q vs %q)",
			e.Dimension, e.Reason, e.PositionA, e.PositionB))
	}
	for _, lb := range notes.LoopBacks {
		sum.LoopBacks = append(sum.LoopBacks, fmt.Sprintf("%s re-entered at %s: %s",
			lb.From, lb.Target, lb.Reason))
	}
	for _, tn := range notes.Timeouts {
		sum.Timeouts = append(sum.Timeouts, fmt.Sprintf("%s: %s", tn.Role, tn.Reason))
	}
	return sum
}
