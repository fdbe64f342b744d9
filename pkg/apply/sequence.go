// Package apply implements the application driver: it executes a Sequence
// (an undo list followed by a todo list, the output of pkg/differ) against
// a Host, tracking which targets were found pre-existing, and reverting
// the host back to the prior state on any failure.
package apply

import (
	"github.com/cuemby/foundry/pkg/graph"
	"github.com/cuemby/foundry/pkg/requirement"
)

// UndoEntry is one teardown step: remove the resource described by
// Requirement, routing to DeletePreExisting instead of Delete when
// PreExisting is set.
type UndoEntry struct {
	Source      int
	Requirement requirement.Requirement
	PreExisting bool
}

// TodoEntry is one apply step. ShouldExist is true when some node in the
// previous Applied graph already affects this target; CreatedByUs is true
// when such a node exists and was not itself pre-existing. Source carries
// the originating node's index in the target graph for result attribution
// and for Revert's choice between DeletePreExisting and Delete.
type TodoEntry struct {
	Source      int
	Requirement requirement.Requirement
	ShouldExist bool
	CreatedByUs bool
}

// Sequence is the full plan an apply run executes: every undo entry before
// every todo entry.
type Sequence struct {
	Undo []UndoEntry
	Todo []TodoEntry
}

// GenerateFixSequence derives an apply-only sequence (empty undo) from an
// existing Applied graph: every node, in dependency order, marked as
// already expected to exist. Used by verify --fix to re-create or
// reconcile anything drifted, and by Revert to restore the previous
// Applied graph's invariants after an in-flight rollback.
func GenerateFixSequence[S graph.State](g *graph.Graph[S]) (*Sequence, error) {
	seq := &Sequence{}
	err := g.Walk(func(i int, n graph.Node) error {
		seq.Todo = append(seq.Todo, TodoEntry{
			Source:      i,
			Requirement: n.Requirement,
			ShouldExist: true,
			CreatedByUs: !n.PreExisting,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}
