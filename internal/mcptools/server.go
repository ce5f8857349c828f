package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/roleflow/internal/orchestrator"
	"github.com/dusk-indust/roleflow/internal/role"
)

// version is set by the linker at build time.
var version = "dev"

// NewRoleFlowMCPServer creates an MCP server with the 3 roleflow tools
// registered: route_task, run_task, and list_roles.
func NewRoleFlowMCPServer(orch orchestrator.Orchestrator, reg *role.Registry) *mcp.Server {
	svc := NewRoleFlowService(orch, reg)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "roleflow",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "route_task",
		Description: "Classify a task against the role table without executing it. Returns per-role scores and activation decisions, or a clarification request for ambiguous tasks.",
	}, svc.RouteTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "run_task",
		Description: "Route a task and execute the activated roles in pipeline order. Returns the assembled document with any cross-agent notes.",
	}, svc.RunTask)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_roles",
		Description: "List the registered roles in pipeline order, with focus, owned conflict dimensions, and fallback.",
	}, svc.ListRoles)

	return server
}

// RunRoleFlowMCPServerStdio runs the MCP server on stdio transport, blocking
// until stdin is closed or the context is cancelled.
func RunRoleFlowMCPServerStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
