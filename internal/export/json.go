package export

import (
	"encoding/json"
	"time"

	"github.com/dusk-indust/roleflow/internal/orchestrator"
)

// DocumentExport is the top-level JSON export structure for a completed run.
type DocumentExport struct {
	RunID      string          `json:"runId"`
	ExportedAt string          `json:"exportedAt"`
	Unwrapped  bool            `json:"unwrapped"`
	Sections   []SectionExport `json:"sections"`
	Notes      *NotesExport    `json:"notes,omitempty"`
}

// SectionExport describes one role's contribution.
type SectionExport struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Handoff string `json:"handoff,omitempty"`
}

// NotesExport carries the run's disagreement record.
type NotesExport struct {
	Resolved    []ResolvedExport  `json:"resolved,omitempty"`
	Escalations []EscalatedExport `json:"escalations,omitempty"`
	LoopBacks   []LoopBackExport  `json:"loopBacks,omitempty"`
	Timeouts    []TimeoutExport   `json:"timeouts,omitempty"`
}

// ResolvedExport is one adjudicated conflict.
type ResolvedExport struct {
	Dimension    string `json:"dimension"`
	Owner        string `json:"owner"`
	Decision     string `json:"decision"`
	OverrideNote string `json:"overrideNote"`
}

// EscalatedExport is one conflict handed to the human with both positions.
type EscalatedExport struct {
	Dimension      string `json:"dimension"`
	Reason         string `json:"reason"`
	PositionA      string `json:"positionA"`
	PositionB      string `json:"positionB"`
	Impact         string `json:"impact,omitempty"`
	Recommendation string `json:"recommendation,omitempty"`
}

// LoopBackExport is one controlled pipeline re-entry.
type LoopBackExport struct {
	From   string `json:"from"`
	Target string `json:"target"`
	Reason string `json:"reason"`
}

// TimeoutExport is one degraded step.
type TimeoutExport struct {
	Role   string `json:"role"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// BuildExport converts an assembled document into its export form.
func BuildExport(doc *orchestrator.FinalDocument) *DocumentExport {
	out := &DocumentExport{
		RunID:      doc.RunID,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Unwrapped:  doc.Unwrapped,
	}
	for _, sec := range doc.Sections {
		out.Sections = append(out.Sections, SectionExport{
			Role:    string(sec.Role),
			Content: sec.Content,
			Handoff: sec.Handoff,
		})
	}
	out.Notes = exportNotes(doc.Notes)
	return out
}

// RenderJSON marshals the document export with indentation for tooling.
func RenderJSON(doc *orchestrator.FinalDocument) ([]byte, error) {
	out, err := json.MarshalIndent(BuildExport(doc), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func exportNotes(notes *orchestrator.CrossAgentNotes) *NotesExport {
	if notes == nil {
		return nil
	}
	out := &NotesExport{}
	for _, c := range notes.Resolved {
		out.Resolved = append(out.Resolved, ResolvedExport{
			Dimension:    c.Dimension,
			Owner:        string(c.Resolution.Owner),
			Decision:     c.Resolution.Decision,
			OverrideNote: c.Resolution.OverrideNote,
		})
	}
	for _, e := range notes.Escalations {
		out.Escalations = append(out.Escalations, EscalatedExport{
			Dimension:      e.Dimension,
			Reason:         e.Reason,
			PositionA:      e.PositionA,
			PositionB:      e.PositionB,
			Impact:         e.Impact,
			Recommendation: e.Recommendation,
		})
	}
	for _, lb := range notes.LoopBacks {
		out.LoopBacks = append(out.LoopBacks, LoopBackExport{
			From:   string(lb.From),
			Target: string(lb.Target),
			Reason: lb.Reason,
		})
	}
	for _, tn := range notes.Timeouts {
		out.Timeouts = append(out.Timeouts, TimeoutExport{
			Role:   string(tn.Role),
			Reason: string(tn.Reason),
			Detail: tn.Detail,
		})
	}
	return out
}
