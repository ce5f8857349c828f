package export

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/roleflow/internal/orchestrator"
)

// RenderMarkdown produces the final document as markdown. A single-role run
// emits the contribution unwrapped; multi-role runs get one heading per role
// in pipeline order, with the cross-agent notes as a trailing section when
// present.
func RenderMarkdown(doc *orchestrator.FinalDocument) string {
	var sb strings.Builder

	if doc.Unwrapped && len(doc.Sections) == 1 {
		sb.WriteString(doc.Sections[0].Content)
		ensureNewline(&sb)
	} else {
		for i, sec := range doc.Sections {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(fmt.Sprintf("## %s\n\n", sec.Role))
			sb.WriteString(sec.Content)
			ensureNewline(&sb)
			if sec.Handoff != "" {
				sb.WriteString(fmt.Sprintf("\n> handoff: %s\n", sec.Handoff))
			}
		}
	}

	if doc.Notes == nil {
		return sb.String()
	}

	sb.WriteString("\n## Cross-agent notes\n")
	for _, c := range doc.Notes.Resolved {
		sb.WriteString(fmt.Sprintf("\n- **%s** resolved by %s: %s\n", c.Dimension, c.Resolution.Owner, c.Resolution.Decision))
		sb.WriteString(fmt.Sprintf("  - %s\n", c.Resolution.OverrideNote))
	}
	for _, e := range doc.Notes.Escalations {
		sb.WriteString(fmt.Sprintf("\n- **%s** escalated: %s\n", e.Dimension, e.Reason))
		sb.WriteString(fmt.Sprintf("  - position A: %s\n", e.PositionA))
		sb.WriteString(fmt.Sprintf("  - position B: %s\n", e.PositionB))
		if e.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("  - recommendation: %s\n", e.Recommendation))
		}
	}
	for _, lb := range doc.Notes.LoopBacks {
		sb.WriteString(fmt.Sprintf("\n- loop-back %s -> %s: %s\n", lb.From, lb.Target, lb.Reason))
	}
	for _, tn := range doc.Notes.Timeouts {
		sb.WriteString(fmt.Sprintf("\n- degraded %s: %s\n", tn.Role, tn.Reason))
	}
	return sb.String()
}

func ensureNewline(sb *strings.Builder) {
	if s := sb.String(); s != "" && !strings.HasSuffix(s, "\n") {
		sb.WriteString("\n")
	}
}
