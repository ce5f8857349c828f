// Package orchestrator contains the task-routing core: the classifier/router
// that picks which roles contribute to a task, the sequential pipeline
// executor with bounded loop-back, the conflict resolver, and the output
// assembler.
package orchestrator

import (
	"context"
	"time"

	"github.com/dusk-indust/roleflow/internal/role"
)

// TaskRequest is one incoming task.
type TaskRequest struct {
	// Text is the raw task text. It may start with one or more explicit
	// @role-id prefix tokens, which bypass scoring.
	Text string

	// AcceptDefaults acknowledges a previous activation-ambiguity outcome:
	// instead of halting again, route the task to the implementation role.
	AcceptDefaults bool
}

// ActivationReason explains why a role was (or was not) activated.
type ActivationReason string

const (
	ReasonExplicitPrefix   ActivationReason = "explicit-prefix"
	ReasonScored           ActivationReason = "scored"
	ReasonAbsorbed         ActivationReason = "absorbed"
	ReasonAcceptedDefaults ActivationReason = "accepted-defaults"
)

// ActivationDecision is the router's verdict for one active role.
type ActivationDecision struct {
	Role      role.ID
	Score     float64
	Activated bool
	Reason    ActivationReason
}

// EmptyReason distinguishes the ways a role output can carry no content.
type EmptyReason string

const (
	// EmptySkip means the role ran and deliberately had nothing to add.
	EmptySkip EmptyReason = "skip"

	// EmptyTimeout means the step hit its deadline; treated as an
	// empty-marker but surfaced in CrossAgentNotes.
	EmptyTimeout EmptyReason = "timeout"

	// EmptyFailure means the step failed; treated like a timeout.
	EmptyFailure EmptyReason = "failure"
)

// RoleOutput is one activated role's contribution for a completed run.
type RoleOutput struct {
	Role    role.ID
	Content string

	// Handoff is the one-line note threaded to later roles.
	Handoff string

	// Empty marks "ran, nothing to contribute"; EmptyReason says why.
	Empty       bool
	EmptyReason EmptyReason

	// Detail carries the degradation message for timeout/failure markers.
	Detail string

	// Conflicts are contradictions this role declared against earlier
	// outputs. Filled in by the resolver after the pipeline completes.
	Conflicts []Conflict
}

// Conflict is a self-declared contradiction between two role positions on
// one dimension. Exactly one of Resolution or Escalation is set after the
// resolver has run; never neither.
type Conflict struct {
	Dimension      string
	Declarer       role.ID // later role that raised the conflict
	With           role.ID // earlier role whose position is disputed
	PositionA      string  // the earlier role's stance
	PositionB      string  // the declarer's stance
	Impact         string
	Recommendation string

	Resolution *Resolution
	Escalation *Escalation
}

// Resolution records an ownership-based decision.
type Resolution struct {
	Owner    role.ID
	Decision string // the winning position

	// OverrideNote records the losing position as an accepted risk; it is
	// never silently dropped.
	OverrideNote string
}

// Escalation is a conflict the resolver could not decide: no owner is
// configured for the dimension, or the owner was not activated this run.
type Escalation struct {
	Dimension      string
	Reason         string
	PositionA      string
	PositionB      string
	Impact         string
	Recommendation string
}

// LoopBackEvent is one backward re-entry during a run.
type LoopBackEvent struct {
	From   role.ID
	Target role.ID
	Reason string
}

// TimeoutNote records a step that degraded to an empty-marker.
type TimeoutNote struct {
	Role   role.ID
	Reason EmptyReason // timeout or failure
	Detail string
}

// PipelineContext is the state threaded through one run. Outputs is the
// ordered list of contributions produced so far; loop-backs replace the
// affected entries rather than appending duplicates.
type PipelineContext struct {
	RunID     string
	Outputs   []RoleOutput
	LoopBacks []LoopBackEvent
	Timeouts  []TimeoutNote
}

// CrossAgentNotes is the disagreement record attached to a final document.
// It is present only when a conflict, loop-back, or timeout occurred.
type CrossAgentNotes struct {
	Resolved    []Conflict
	Escalations []Escalation
	LoopBacks   []LoopBackEvent
	Timeouts    []TimeoutNote
}

// Empty reports whether the notes carry anything worth surfacing.
func (n *CrossAgentNotes) Empty() bool {
	return len(n.Resolved) == 0 && len(n.Escalations) == 0 &&
		len(n.LoopBacks) == 0 && len(n.Timeouts) == 0
}

// Section is one role's slice of the final document.
type Section struct {
	Role    role.ID
	Content string
	Handoff string
}

// FinalDocument is the structured output handed to the presentation layer.
type FinalDocument struct {
	RunID string

	// Sections holds non-empty contributions in pipeline order.
	Sections []Section

	// Unwrapped is set for single-role runs: the sole section's content
	// stands alone, without section framing.
	Unwrapped bool

	// Notes is nil unless a conflict, loop-back, or timeout occurred.
	Notes *CrossAgentNotes
}

// ProgressStatus is the state of a role within a run.
type ProgressStatus string

const (
	ProgressPending    ProgressStatus = "pending"
	ProgressWorking    ProgressStatus = "working"
	ProgressComplete   ProgressStatus = "complete"
	ProgressLoopedBack ProgressStatus = "looped-back"
	ProgressTimedOut   ProgressStatus = "timed-out"
	ProgressFailed     ProgressStatus = "failed"
)

// ProgressEvent is emitted while a run executes.
type ProgressEvent struct {
	RunID   string
	Role    role.ID
	Status  ProgressStatus
	Message string
}

// Orchestrator routes a task through classification, pipeline execution,
// conflict resolution, and assembly.
type Orchestrator interface {
	// Route classifies the task without executing it.
	Route(ctx context.Context, req TaskRequest) ([]ActivationDecision, error)

	// Run executes the full flow and returns the assembled document.
	Run(ctx context.Context, req TaskRequest) (*FinalDocument, error)
}

// Options bundles the tunables the core takes from configuration.
type Options struct {
	// Threshold is the activation ratio relative to the maximum score.
	Threshold float64

	// LoopBackBudget caps backward re-entries per run.
	LoopBackBudget int

	// StepTimeout bounds each role's output-production step.
	StepTimeout time.Duration
}

// DefaultOptions mirrors the configuration defaults.
func DefaultOptions() Options {
	return Options{
		Threshold:      0.7,
		LoopBackBudget: 3,
		StepTimeout:    2 * time.Minute,
	}
}
