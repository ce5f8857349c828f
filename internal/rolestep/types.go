// Package rolestep defines the boundary to the external role output-production
// step: the request/result contract, an HTTP JSON-RPC binding for remote step
// producers, and a deterministic in-process producer for tests and demos.
//
// The core treats a step as an opaque, possibly long-running call. How content
// is produced is entirely the producer's business.
package rolestep

import "context"

// StepRequest is the input to one role's output-production step.
type StepRequest struct {
	// RunID identifies the pipeline run this step belongs to.
	RunID string `json:"runId"`

	// RequestID identifies this individual step call (re-runs after a
	// loop-back get fresh ids).
	RequestID string `json:"requestId"`

	// Role is the id of the role producing output.
	Role string `json:"role"`

	// Task is the raw task text, prefix stripped.
	Task string `json:"task"`

	// RefModules names the reference modules the role declared needing. The
	// core passes these through untouched.
	RefModules []string `json:"refModules,omitempty"`

	// Prior carries the outputs accumulated so far, in pipeline order.
	Prior []PriorOutput `json:"prior,omitempty"`
}

// PriorOutput is an earlier role's contribution as seen by later steps.
type PriorOutput struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Handoff string `json:"handoff,omitempty"`
}

// ConflictClaim is a contradiction the producing role declares between its
// own position and an earlier role's.
type ConflictClaim struct {
	Dimension      string `json:"dimension"`
	With           string `json:"with"` // earlier role id
	Theirs         string `json:"theirs"`
	Ours           string `json:"ours"`
	Impact         string `json:"impact,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// GapClaim is a declared dependency gap that only another role can fill.
type GapClaim struct {
	Target string `json:"target"` // role id the gap points at
	Reason string `json:"reason"`
}

// StepResult is a step producer's output.
type StepResult struct {
	// Content is the role's contribution. Present even when Empty is false
	// only by convention; assemblers skip empty-marker results.
	Content string `json:"content,omitempty"`

	// Handoff is the one-line note for the next role in the pipeline.
	Handoff string `json:"handoff,omitempty"`

	// Empty marks "ran, nothing to contribute" (distinct from "never ran").
	Empty bool `json:"empty,omitempty"`

	// Conflicts are self-declared contradictions with earlier outputs.
	Conflicts []ConflictClaim `json:"conflicts,omitempty"`

	// LoopBack, when set, declares a dependency gap. The executor decides
	// whether it is a valid backward re-entry.
	LoopBack *GapClaim `json:"loopBack,omitempty"`
}

// RoleCard is the self-describing manifest a step producer serves at its
// well-known URI.
type RoleCard struct {
	Name        string `json:"name"`
	Role        string `json:"role"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// Producer is the external collaborator that turns a StepRequest into a
// StepResult. Implementations may block on network calls; they must honor
// ctx cancellation and deadlines.
type Producer interface {
	Produce(ctx context.Context, req StepRequest) (*StepResult, error)
}

// ProducerFunc adapts a function to the Producer interface.
type ProducerFunc func(ctx context.Context, req StepRequest) (*StepResult, error)

// Produce implements Producer.
func (f ProducerFunc) Produce(ctx context.Context, req StepRequest) (*StepResult, error) {
	return f(ctx, req)
}
