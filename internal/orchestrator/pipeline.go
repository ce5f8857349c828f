package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dusk-indust/roleflow/internal/role"
	"github.com/dusk-indust/roleflow/internal/rolestep"
)

// StepState is the executor-visible state of one activated role.
type StepState string

const (
	StatePending    StepState = "pending"
	StateRunning    StepState = "running"
	StateCompleted  StepState = "completed"
	StateLoopedBack StepState = "looped-back"
)

// Executor runs activated roles strictly in pipeline order, threading prior
// outputs forward. Loop-backs are controlled re-entry: execution rewinds to
// the target role and every role from there through the declarer re-runs,
// with their earlier outputs discarded rather than duplicated.
//
// Execution within one run is single-threaded; later roles consume earlier
// roles' decisions, so ordering is a correctness requirement.
type Executor struct {
	producer   rolestep.Producer
	opts       Options
	onProgress func(ProgressEvent) // may be nil
	logger     *zap.Logger
}

// NewExecutor creates an Executor. onProgress is called synchronously from
// the run loop; it may be nil.
func NewExecutor(producer rolestep.Producer, opts Options, onProgress func(ProgressEvent), logger *zap.Logger) *Executor {
	if opts.LoopBackBudget <= 0 {
		opts.LoopBackBudget = DefaultOptions().LoopBackBudget
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = DefaultOptions().StepTimeout
	}
	return &Executor{
		producer:   producer,
		opts:       opts,
		onProgress: onProgress,
		logger:     logger,
	}
}

// Run executes the activated roles against the stripped task text and
// returns the completed PipelineContext.
//
// Cancellation between steps aborts the run; cancellation while a step is in
// flight lets that step finish or time out first, so no partial role output
// is ever admitted.
func (e *Executor) Run(ctx context.Context, runID, task string, activated []role.ActiveRole) (*PipelineContext, error) {
	if len(activated) == 0 {
		return nil, fmt.Errorf("executor: empty activation set")
	}

	pctx := &PipelineContext{RunID: runID}
	states := make([]StepState, len(activated))
	for i, ar := range activated {
		states[i] = StatePending
		e.emit(ProgressEvent{RunID: runID, Role: ar.ID, Status: ProgressPending})
	}

	idx := 0
	for idx < len(activated) {
		if err := ctx.Err(); err != nil {
			return pctx, err
		}

		ar := activated[idx]
		states[idx] = StateRunning
		e.emit(ProgressEvent{RunID: runID, Role: ar.ID, Status: ProgressWorking})

		result, err := e.runStep(ctx, runID, task, ar, pctx.Outputs)

		switch {
		case ctx.Err() != nil:
			// The caller canceled while the step was in flight; the step has
			// resolved, so abandoning the run admits nothing partial.
			return pctx, ctx.Err()

		case errors.Is(err, context.DeadlineExceeded):
			note := TimeoutNote{Role: ar.ID, Reason: EmptyTimeout, Detail: err.Error()}
			pctx.Timeouts = append(pctx.Timeouts, note)
			pctx.Outputs = append(pctx.Outputs, RoleOutput{
				Role:        ar.ID,
				Empty:       true,
				EmptyReason: EmptyTimeout,
				Detail:      err.Error(),
			})
			states[idx] = StateCompleted
			e.emit(ProgressEvent{RunID: runID, Role: ar.ID, Status: ProgressTimedOut, Message: err.Error()})
			e.logger.Warn("role step timed out, degrading to empty-marker",
				zap.String("run", runID), zap.String("role", string(ar.ID)))
			idx++

		case err != nil:
			note := TimeoutNote{Role: ar.ID, Reason: EmptyFailure, Detail: err.Error()}
			pctx.Timeouts = append(pctx.Timeouts, note)
			pctx.Outputs = append(pctx.Outputs, RoleOutput{
				Role:        ar.ID,
				Empty:       true,
				EmptyReason: EmptyFailure,
				Detail:      err.Error(),
			})
			states[idx] = StateCompleted
			e.emit(ProgressEvent{RunID: runID, Role: ar.ID, Status: ProgressFailed, Message: err.Error()})
			e.logger.Warn("role step failed, degrading to empty-marker",
				zap.String("run", runID), zap.String("role", string(ar.ID)), zap.Error(err))
			idx++

		case result.LoopBack != nil:
			target := role.ID(result.LoopBack.Target)
			targetIdx, err := e.validateLoopBack(activated, idx, target)
			if err != nil {
				return pctx, err
			}

			pctx.LoopBacks = append(pctx.LoopBacks, LoopBackEvent{
				From:   ar.ID,
				Target: target,
				Reason: result.LoopBack.Reason,
			})
			if len(pctx.LoopBacks) > e.opts.LoopBackBudget {
				return pctx, &LoopBackBudgetError{
					Budget:  e.opts.LoopBackBudget,
					History: pctx.LoopBacks,
				}
			}

			// Discard the outputs of every role from the target through the
			// declarer; they re-run and their re-runs replace these entries.
			pctx.Outputs = pctx.Outputs[:targetIdx]
			states[idx] = StateLoopedBack
			for i := targetIdx; i < idx; i++ {
				states[i] = StatePending
			}
			e.emit(ProgressEvent{
				RunID:   runID,
				Role:    ar.ID,
				Status:  ProgressLoopedBack,
				Message: fmt.Sprintf("re-entering at %s: %s", target, result.LoopBack.Reason),
			})
			e.logger.Info("loop-back",
				zap.String("run", runID),
				zap.String("from", string(ar.ID)),
				zap.String("target", string(target)),
				zap.Int("count", len(pctx.LoopBacks)))
			idx = targetIdx

		default:
			pctx.Outputs = append(pctx.Outputs, outputFromResult(ar.ID, result))
			states[idx] = StateCompleted
			e.emit(ProgressEvent{RunID: runID, Role: ar.ID, Status: ProgressComplete})
			idx++
		}
	}

	return pctx, nil
}

// runStep invokes the producer for one role under the per-step timeout.
func (e *Executor) runStep(ctx context.Context, runID, task string, ar role.ActiveRole, prior []RoleOutput) (*rolestep.StepResult, error) {
	stepCtx, cancel := context.WithTimeout(ctx, e.opts.StepTimeout)
	defer cancel()

	req := rolestep.StepRequest{
		RunID:      runID,
		RequestID:  uuid.NewString(),
		Role:       string(ar.ID),
		Task:       task,
		RefModules: ar.RefModules,
		Prior:      priorOutputs(prior),
	}
	return e.producer.Produce(stepCtx, req)
}

// validateLoopBack checks that the declared gap is a strictly backward
// re-entry into this run's activation set.
func (e *Executor) validateLoopBack(activated []role.ActiveRole, fromIdx int, target role.ID) (int, error) {
	from := activated[fromIdx].ID
	for i, ar := range activated {
		if ar.ID != target {
			continue
		}
		if i >= fromIdx {
			return 0, &GapDefectError{
				From:   from,
				Target: target,
				Reason: "gap points forward in pipeline order",
			}
		}
		return i, nil
	}
	return 0, &GapDefectError{
		From:   from,
		Target: target,
		Reason: "target role is not part of this run",
	}
}

// priorOutputs converts accumulated outputs to the step-boundary form,
// skipping empty markers: a role with nothing to say hands nothing forward.
func priorOutputs(outputs []RoleOutput) []rolestep.PriorOutput {
	var out []rolestep.PriorOutput
	for _, o := range outputs {
		if o.Empty {
			continue
		}
		out = append(out, rolestep.PriorOutput{
			Role:    string(o.Role),
			Content: o.Content,
			Handoff: o.Handoff,
		})
	}
	return out
}

// outputFromResult converts a producer result into the run's RoleOutput.
func outputFromResult(id role.ID, result *rolestep.StepResult) RoleOutput {
	out := RoleOutput{
		Role:    id,
		Content: result.Content,
		Handoff: result.Handoff,
		Empty:   result.Empty,
	}
	if result.Empty {
		out.EmptyReason = EmptySkip
	}
	for _, c := range result.Conflicts {
		out.Conflicts = append(out.Conflicts, Conflict{
			Dimension:      c.Dimension,
			Declarer:       id,
			With:           role.ID(c.With),
			PositionA:      c.Theirs,
			PositionB:      c.Ours,
			Impact:         c.Impact,
			Recommendation: c.Recommendation,
		})
	}
	return out
}

func (e *Executor) emit(ev ProgressEvent) {
	if e.onProgress != nil {
		e.onProgress(ev)
	}
}
