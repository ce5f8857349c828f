package rolestep

import (
	"context"
	"fmt"
	"strings"

	"github.com/dusk-indust/roleflow/internal/roledata"
)

// Compile-time interface check.
var _ Producer = (*StaticProducer)(nil)

// StaticProducer is a deterministic in-process Producer. It does no content
// generation of its own; each role gets a fixed skeleton built from the task
// text, the accumulated handoffs, and the role's embedded playbook. Used by
// the CLI demo mode and tests.
type StaticProducer struct{}

// NewStaticProducer creates a StaticProducer.
func NewStaticProducer() *StaticProducer {
	return &StaticProducer{}
}

// Produce builds a skeleton contribution for the requested role.
func (p *StaticProducer) Produce(_ context.Context, req StepRequest) (*StepResult, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s perspective\n\n", req.Role)
	fmt.Fprintf(&b, "Task: %s\n", req.Task)

	if len(req.Prior) > 0 {
		b.WriteString("\nBuilding on:\n")
		for _, prior := range req.Prior {
			if prior.Handoff == "" {
				continue
			}
			fmt.Fprintf(&b, "- %s: %s\n", prior.Role, prior.Handoff)
		}
	}
	if len(req.RefModules) > 0 {
		fmt.Fprintf(&b, "\nConsulted reference modules: %s\n", strings.Join(req.RefModules, ", "))
	}
	if playbook, ok := roledata.Playbook(req.Role); ok {
		b.WriteString("\n")
		b.WriteString(playbook)
	}

	return &StepResult{
		Content: b.String(),
		Handoff: fmt.Sprintf("%s notes recorded for downstream roles", req.Role),
	}, nil
}
