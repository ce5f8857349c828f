package orchestrator

import (
	"go.uber.org/zap"

	"github.com/dusk-indust/roleflow/internal/role"
)

// Resolver adjudicates self-declared conflicts using the static
// dimension-ownership table. Resolution is deterministic: identical outputs
// and ownership always yield identical outcomes, with no recency tie-break.
type Resolver struct {
	view   *role.ActiveView
	logger *zap.Logger
}

// NewResolver creates a Resolver over the run's post-absorption view.
func NewResolver(view *role.ActiveView, logger *zap.Logger) *Resolver {
	return &Resolver{view: view, logger: logger}
}

// Resolve walks the completed context in pipeline order, attaches a
// Resolution or Escalation to every declared conflict, and returns the
// CrossAgentNotes for the run. No conflict is ever silently dropped.
func (r *Resolver) Resolve(pctx *PipelineContext) *CrossAgentNotes {
	notes := &CrossAgentNotes{
		LoopBacks: pctx.LoopBacks,
		Timeouts:  pctx.Timeouts,
	}

	activated := make(map[role.ID]bool, len(pctx.Outputs))
	for _, out := range pctx.Outputs {
		activated[out.Role] = true
	}

	for i := range pctx.Outputs {
		out := &pctx.Outputs[i]
		for j := range out.Conflicts {
			c := &out.Conflicts[j]
			r.adjudicate(c, activated)
			if c.Resolution != nil {
				notes.Resolved = append(notes.Resolved, *c)
			} else {
				notes.Escalations = append(notes.Escalations, *c.Escalation)
			}
		}
	}

	return notes
}

// adjudicate fills exactly one of c.Resolution or c.Escalation.
func (r *Resolver) adjudicate(c *Conflict, activated map[role.ID]bool) {
	owner, ok := r.view.Owner(c.Dimension)
	if !ok {
		c.Escalation = r.escalate(c, "no owner configured for dimension")
		return
	}
	if !activated[owner] {
		c.Escalation = r.escalate(c, "owning role was not activated this run")
		return
	}

	switch owner {
	case c.Declarer:
		c.Resolution = &Resolution{
			Owner:        owner,
			Decision:     c.PositionB,
			OverrideNote: acceptedRisk(c.With, c.PositionA),
		}
	case c.With:
		c.Resolution = &Resolution{
			Owner:        owner,
			Decision:     c.PositionA,
			OverrideNote: acceptedRisk(c.Declarer, c.PositionB),
		}
	default:
		// The owner was activated but holds neither stated position, so
		// there is nothing it can decide between on the record.
		c.Escalation = r.escalate(c, "owning role was not a party to the conflict")
		return
	}

	r.logger.Debug("conflict resolved",
		zap.String("dimension", c.Dimension),
		zap.String("owner", string(owner)))
}

func (r *Resolver) escalate(c *Conflict, reason string) *Escalation {
	r.logger.Info("conflict escalated",
		zap.String("dimension", c.Dimension),
		zap.String("reason", reason))
	return &Escalation{
		Dimension:      c.Dimension,
		Reason:         reason,
		PositionA:      c.PositionA,
		PositionB:      c.PositionB,
		Impact:         c.Impact,
		Recommendation: c.Recommendation,
	}
}

// acceptedRisk phrases the losing position so it stays on the record.
func acceptedRisk(loser role.ID, position string) string {
	return "accepted risk: " + string(loser) + " position overridden: " + position
}
