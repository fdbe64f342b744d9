// Package differ produces an apply.Sequence from a previous Applied graph
// and a next Pending graph: the undo half tears down whatever prev holds
// that next no longer needs, the todo half brings next's nodes up to date,
// aware of which targets prev already established.
package differ

import (
	"github.com/cuemby/foundry/pkg/apply"
	"github.com/cuemby/foundry/pkg/graph"
)

// Comparison is the result of comparing a previous Applied graph against a
// next Pending graph: the retained-and-inverted undo graph, ready to be
// turned into an apply.Sequence.
type Comparison struct {
	prev *graph.Graph[graph.Applied]
	undo *graph.Graph[graph.Applied]
	next *graph.Graph[graph.Pending]
}

// Compare builds the undo graph for (prev, next): prev inverted, then
// retained to keep only nodes that next does not affect and whose kind
// can be undone. Walking the result visits dependents before
// dependencies, which is the correct teardown order.
func Compare(prev *graph.Graph[graph.Applied], next *graph.Graph[graph.Pending]) *Comparison {
	inverted := prev.Invert()
	undo := inverted.Retain(func(_ int, n graph.Node) bool {
		if !n.Requirement.CanUndo() {
			return false
		}
		for _, nn := range next.Nodes() {
			if nn.Requirement.Kind() == n.Requirement.Kind() && nn.Requirement.Affects(n.Requirement) {
				return false
			}
		}
		return true
	})
	return &Comparison{prev: prev, undo: undo, next: next}
}

// GenerateApplicationSequence renders the comparison as an apply.Sequence:
// the undo graph walked in its own (dependents-first) order, followed by
// next walked in dependency order with ShouldExist/CreatedByUs computed
// against prev.
func (c *Comparison) GenerateApplicationSequence() (*apply.Sequence, error) {
	seq := &apply.Sequence{}

	err := c.undo.Walk(func(i int, n graph.Node) error {
		seq.Undo = append(seq.Undo, apply.UndoEntry{
			Source:      i,
			Requirement: n.Requirement,
			PreExisting: n.PreExisting,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = c.next.Walk(func(i int, n graph.Node) error {
		var matched *graph.Node
		for _, pn := range c.prev.Nodes() {
			if pn.Requirement.Kind() == n.Requirement.Kind() && pn.Requirement.Affects(n.Requirement) {
				m := pn
				matched = &m
				break
			}
		}
		entry := apply.TodoEntry{Source: i, Requirement: n.Requirement}
		if matched != nil {
			entry.ShouldExist = true
			entry.CreatedByUs = !matched.PreExisting
		}
		seq.Todo = append(seq.Todo, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// UndoGraph exposes the computed undo graph, e.g. for logging or tests.
func (c *Comparison) UndoGraph() *graph.Graph[graph.Applied] { return c.undo }
