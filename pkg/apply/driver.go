package apply

import (
	"context"
	"fmt"

	"github.com/cuemby/foundry/pkg/elog"
	"github.com/cuemby/foundry/pkg/graph"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/metrics"
	"github.com/cuemby/foundry/pkg/requirement"
)

// Phase names which half of a Sequence a failure or revert position
// belongs to.
type Phase int

const (
	PhaseUndo Phase = iota
	PhaseTodo
)

func (p Phase) String() string {
	if p == PhaseUndo {
		return "undo"
	}
	return "todo"
}

// AskOverwrite is consulted when a todo entry's target already exists on
// the host, no node of the previous Applied graph describes it, and its
// kind does not allow pre-existing targets. Returning false aborts the
// apply and triggers a revert.
type AskOverwrite func(req requirement.Requirement) bool

// AlwaysRefuse is the default overwrite policy: any pre-existence conflict
// is a hard failure.
func AlwaysRefuse(requirement.Requirement) bool { return false }

// Result is the outcome of a successful Sequence.Run: the source indices
// (in the target graph) of todo entries whose target existed on the host
// but was not created by a previous run of this engine.
type Result struct {
	PreExisting []int
}

// RevertInfo captures exactly what Revert needs to unwind a failed run:
// which phase and position it failed at, and which todo entries had
// already been found pre-existing by that point.
type RevertInfo struct {
	Phase            Phase
	Position         int
	PreExistingSoFar []int
}

// RunError wraps a failure from Run with the RevertInfo needed to call
// Revert.
type RunError struct {
	Info RevertInfo
	Err  error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("apply failed in %s phase at position %d: %v", e.Info.Phase, e.Info.Position, e.Err)
}

func (e *RunError) Unwrap() error { return e.Err }

// Run executes seq's undo entries, then its todo entries, against h. On
// any host-operation failure it returns a *RunError carrying the
// RevertInfo the caller must pass to Revert.
func Run(ctx context.Context, h host.Host, seq *Sequence, ask AskOverwrite) (Result, error) {
	if ask == nil {
		ask = AlwaysRefuse
	}
	log := elog.WithComponent("apply")
	timer := metrics.NewTimer()

	var result Result
	var preExistingSoFar []int

	for i, entry := range seq.Undo {
		klog := elog.WithKind(entry.Requirement.Kind())
		var err error
		if entry.PreExisting {
			err = entry.Requirement.DeletePreExisting(ctx, h)
		} else {
			err = entry.Requirement.Delete(ctx, h)
		}
		if err != nil {
			klog.Error().Err(err).Int("undo_position", i).Msg("undo entry failed")
			timer.ObserveDuration(metrics.ApplyDuration)
			metrics.ApplyOutcomesTotal.WithLabelValues("undo_failed").Inc()
			return Result{}, &RunError{
				Info: RevertInfo{Phase: PhaseUndo, Position: i, PreExistingSoFar: preExistingSoFar},
				Err:  fmt.Errorf("undo %s: %w", entry.Requirement.Kind(), err),
			}
		}
		metrics.ApplyNodesTotal.WithLabelValues(entry.Requirement.Kind(), "undo").Inc()
	}

	for i, entry := range seq.Todo {
		klog := elog.WithKind(entry.Requirement.Kind())

		existed, err := entry.Requirement.HasBeenCreated(ctx, h)
		if err != nil {
			timer.ObserveDuration(metrics.ApplyDuration)
			metrics.ApplyOutcomesTotal.WithLabelValues("check_failed").Inc()
			return Result{}, &RunError{
				Info: RevertInfo{Phase: PhaseTodo, Position: i, PreExistingSoFar: preExistingSoFar},
				Err:  fmt.Errorf("check %s: %w", entry.Requirement.Kind(), err),
			}
		}

		if existed && !entry.ShouldExist && !entry.Requirement.MayPreExist() {
			if !ask(entry.Requirement) {
				log.Warn().Str("kind", entry.Requirement.Kind()).Msg("pre-existing target refused by overwrite policy")
				timer.ObserveDuration(metrics.ApplyDuration)
				metrics.ApplyOutcomesTotal.WithLabelValues("pre_existing_refused").Inc()
				return Result{}, &RunError{
					Info: RevertInfo{Phase: PhaseTodo, Position: i, PreExistingSoFar: preExistingSoFar},
					Err:  fmt.Errorf("%s: %w", entry.Requirement.Kind(), requirement.ErrPreExisting),
				}
			}
		}

		if existed && !entry.CreatedByUs {
			result.PreExisting = append(result.PreExisting, entry.Source)
			preExistingSoFar = append(preExistingSoFar, entry.Source)
		}

		if existed {
			if entry.Requirement.SupportsModifications() {
				err = entry.Requirement.Modify(ctx, h)
			}
		} else {
			err = entry.Requirement.Create(ctx, h)
		}
		if err != nil {
			action := "create"
			if existed {
				action = "modify"
			}
			klog.Error().Err(err).Str("action", action).Int("todo_position", i).Msg("todo entry failed")
			timer.ObserveDuration(metrics.ApplyDuration)
			metrics.ApplyOutcomesTotal.WithLabelValues(action + "_failed").Inc()
			return Result{}, &RunError{
				Info: RevertInfo{Phase: PhaseTodo, Position: i, PreExistingSoFar: preExistingSoFar},
				Err:  fmt.Errorf("%s %s: %w", action, entry.Requirement.Kind(), err),
			}
		}
		action := "create"
		if existed {
			action = "modify"
		}
		metrics.ApplyNodesTotal.WithLabelValues(entry.Requirement.Kind(), action).Inc()
	}

	timer.ObserveDuration(metrics.ApplyDuration)
	metrics.ApplyOutcomesTotal.WithLabelValues("success").Inc()
	return result, nil
}

// Revert restores the host to the state described by prev after a failed
// Run. It first unwinds the todo prefix that Run managed to execute
// (in reverse, skipping entries whose target is affected by some node in
// prev — those will be re-established by the second step, and skipping
// entries whose kind cannot be undone), routing each teardown to
// DeletePreExisting when its source was already recorded pre-existing, or
// Delete otherwise. It then re-runs a fix sequence derived from prev to
// put every one of its nodes back in the state it describes.
func Revert[S graph.State](ctx context.Context, h host.Host, seq *Sequence, info RevertInfo, prev *graph.Graph[S]) error {
	log := elog.WithComponent("apply")

	if info.Phase == PhaseTodo {
		preExisting := make(map[int]bool, len(info.PreExistingSoFar))
		for _, src := range info.PreExistingSoFar {
			preExisting[src] = true
		}

		affectsPrev := func(req requirement.Requirement) bool {
			for _, n := range prev.Nodes() {
				if n.Requirement.Kind() == req.Kind() && n.Requirement.Affects(req) {
					return true
				}
			}
			return false
		}

		for i := info.Position - 1; i >= 0; i-- {
			entry := seq.Todo[i]
			if !entry.Requirement.CanUndo() {
				continue
			}
			if affectsPrev(entry.Requirement) {
				continue
			}
			var err error
			if preExisting[entry.Source] {
				err = entry.Requirement.DeletePreExisting(ctx, h)
			} else {
				err = entry.Requirement.Delete(ctx, h)
			}
			if err != nil {
				return fmt.Errorf("revert: tear down %s at todo position %d: %w", entry.Requirement.Kind(), i, err)
			}
		}
	}

	fix, err := GenerateFixSequence(prev)
	if err != nil {
		return fmt.Errorf("revert: derive fix sequence from previous graph: %w", err)
	}
	if _, err := Run(ctx, h, fix, AlwaysRefuse); err != nil {
		log.Error().Err(err).Msg("revert: restoring previous graph failed; host may be inconsistent")
		return fmt.Errorf("revert: restore previous graph: %w", err)
	}
	return nil
}
