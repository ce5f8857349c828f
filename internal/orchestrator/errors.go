package orchestrator

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/roleflow/internal/role"
)

// ActivationAmbiguityError reports a task that scored zero against every
// active role. The router never guesses; the requester either rephrases or
// resubmits with AcceptDefaults set.
type ActivationAmbiguityError struct {
	// FocusAreas names the plausible perspectives, in pipeline order.
	FocusAreas []string
}

func (e *ActivationAmbiguityError) Error() string {
	return fmt.Sprintf("task matched no role; plausible focus areas: %s",
		strings.Join(e.FocusAreas, ", "))
}

// LoopBackBudgetError terminates a run that exceeded the loop-back budget.
// Fatal to the run, not the process.
type LoopBackBudgetError struct {
	Budget  int
	History []LoopBackEvent
}

func (e *LoopBackBudgetError) Error() string {
	parts := make([]string, len(e.History))
	for i, ev := range e.History {
		parts[i] = fmt.Sprintf("%s->%s (%s)", ev.From, ev.Target, ev.Reason)
	}
	return fmt.Sprintf("loop-back budget of %d exceeded: %s",
		e.Budget, strings.Join(parts, "; "))
}

// GapDefectError reports a declared dependency gap that is not a valid
// backward re-entry: it points forward in pipeline order, at the declaring
// role itself, or at a role that is not part of this run.
type GapDefectError struct {
	From   role.ID
	Target role.ID
	Reason string
}

func (e *GapDefectError) Error() string {
	return fmt.Sprintf("role %q declared an invalid dependency gap toward %q: %s",
		e.From, e.Target, e.Reason)
}
