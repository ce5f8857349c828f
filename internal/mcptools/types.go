package mcptools

// --- MCP Tool Types for the roleflow server mode (serve-mcp) ---
// These tools are exposed when the binary runs as an MCP server, so a
// coding-assistant client can route and run tasks through structured tools
// instead of shelling out.

// RouteTaskInput is the input for the route_task MCP tool.
type RouteTaskInput struct {
	Task           string `json:"task" jsonschema:"the task text to classify"`
	AcceptDefaults bool   `json:"acceptDefaults,omitempty" jsonschema:"fall back to the implementation role when no role signals clear"`
}

// RoleDecision is one role's activation verdict inside RouteTaskOutput.
type RoleDecision struct {
	Role      string  `json:"role"`
	Score     float64 `json:"score"`
	Activated bool    `json:"activated"`
	Reason    string  `json:"reason,omitempty"`
}

// RouteTaskOutput is the result of the route_task MCP tool.
type RouteTaskOutput struct {
	Decisions []RoleDecision `json:"decisions,omitempty"`

	// NeedsClarification is set when no role signals clearly; FocusAreas
	// lists the focus of each role so the caller can ask the user.
	NeedsClarification bool     `json:"needsClarification,omitempty"`
	FocusAreas         []string `json:"focusAreas,omitempty"`
}

// RunTaskInput is the input for the run_task MCP tool.
type RunTaskInput struct {
	Task           string `json:"task" jsonschema:"the task text to route and execute"`
	AcceptDefaults bool   `json:"acceptDefaults,omitempty" jsonschema:"fall back to the implementation role when no role signals clear"`
}

// DocumentSection is one role's slice of the assembled document.
type DocumentSection struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Handoff string `json:"handoff,omitempty"`
}

// NotesSummary is the cross-agent disagreement record of a run, flattened
// for tool consumers.
type NotesSummary struct {
	Resolved    []string `json:"resolved,omitempty"`
	Escalations []string `json:"escalations,omitempty"`
	LoopBacks   []string `json:"loopBacks,omitempty"`
	Timeouts    []string `json:"timeouts,omitempty"`
}

// RunTaskOutput is the result of the run_task MCP tool.
type RunTaskOutput struct {
	RunID     string            `json:"runId"`
	Unwrapped bool              `json:"unwrapped"`
	Sections  []DocumentSection `json:"sections"`
	Notes     *NotesSummary     `json:"notes,omitempty"`
}

// ListRolesInput is the input for the list_roles MCP tool.
type ListRolesInput struct{}

// RoleSummary is a brief overview of one registered role.
type RoleSummary struct {
	Role           string   `json:"role"`
	Focus          string   `json:"focus"`
	Position       int      `json:"position"`
	Implementation bool     `json:"implementation"`
	Owns           []string `json:"owns,omitempty"`
	Fallback       string   `json:"fallback,omitempty"`
}

// ListRolesOutput is the result of the list_roles MCP tool.
type ListRolesOutput struct {
	Roles []RoleSummary `json:"roles"`
}
