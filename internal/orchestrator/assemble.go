package orchestrator

// Assemble merges a completed run into the final document. Single-role runs
// emit the sole contribution unwrapped; multi-role runs get one section per
// role in pipeline order, skipping empty markers. CrossAgentNotes is attached
// only when a conflict, loop-back, or timeout occurred.
func Assemble(pctx *PipelineContext, notes *CrossAgentNotes) *FinalDocument {
	doc := &FinalDocument{
		RunID:     pctx.RunID,
		Unwrapped: len(pctx.Outputs) == 1,
	}

	for _, out := range pctx.Outputs {
		if out.Empty {
			continue
		}
		doc.Sections = append(doc.Sections, Section{
			Role:    out.Role,
			Content: out.Content,
			Handoff: out.Handoff,
		})
	}

	if notes != nil && !notes.Empty() {
		doc.Notes = notes
	}

	return doc
}
