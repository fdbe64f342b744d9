// Package graph implements the requirement graph: an ordered, insertion-DAG
// of nodes with a phantom state tag distinguishing a graph still being
// built (Pending) from one that has been successfully driven through the
// apply driver (Applied). The zero-sized State types stand in for the
// phantom-type trick other languages get from a richer type system; Go
// gets the same compile-time separation via a generic type parameter.
package graph

import (
	"fmt"

	"github.com/cuemby/foundry/pkg/requirement"
)

// State marks whether a Graph describes a set of requirements not yet
// reconciled against the host (Pending) or the host's last known-good
// configuration (Applied). Only Pending and Applied implement it.
type State interface {
	stateName() string
}

// Pending marks a graph built by a builder, not yet applied.
type Pending struct{}

func (Pending) stateName() string { return "Pending" }

// Applied marks a graph that has been successfully driven onto the host
// and persisted to the registry.
type Applied struct{}

func (Applied) stateName() string { return "Applied" }

// Node is one requirement plus the indices of the nodes it depends on and
// whether its target was already present on the host the first time it
// was applied.
type Node struct {
	Requirement   requirement.Requirement
	Preconditions []int
	PreExisting   bool
}

// Graph is an ordered, insertion-topological DAG of Nodes. Node indices
// are stable for the lifetime of a Graph value; every precondition index
// is strictly less than the index of the node that names it (I1), which
// graphs built only through Add always satisfy.
type Graph[S State] struct {
	nodes []Node
}

// New returns an empty graph.
func New[S State]() *Graph[S] {
	return &Graph[S]{}
}

// Len returns the number of nodes.
func (g *Graph[S]) Len() int { return len(g.nodes) }

// Node returns the node at index i.
func (g *Graph[S]) Node(i int) Node { return g.nodes[i] }

// Nodes returns the graph's nodes in insertion order. The returned slice
// must not be mutated by the caller.
func (g *Graph[S]) Nodes() []Node { return g.nodes }

// Add appends a node depending on deps, enforcing I1, and returns its
// stable index.
func (g *Graph[S]) Add(req requirement.Requirement, deps []int) (int, error) {
	idx := len(g.nodes)
	for _, d := range deps {
		if d < 0 || d >= idx {
			return 0, fmt.Errorf("graph: precondition %d out of range for node %d", d, idx)
		}
	}
	cp := make([]int, len(deps))
	copy(cp, deps)
	g.nodes = append(g.nodes, Node{Requirement: req, Preconditions: cp})
	return idx, nil
}

// MarkPreExisting sets the PreExisting flag on node i. The apply driver
// does not call it: it reports pre-existing sources in apply.Result, and
// ToApplied sets the flag from that list.
func (g *Graph[S]) MarkPreExisting(i int) {
	g.nodes[i].PreExisting = true
}

// Invert reverses every edge and reverses node order, so that a Walk of
// the result enumerates nodes in the opposite dependency order from a
// Walk of g. Used both to build the teardown sequence for a whole graph
// and, after Retain, the undo graph for a diff.
func (g *Graph[S]) Invert() *Graph[S] {
	n := len(g.nodes)
	dependents := make([][]int, n)
	for j, node := range g.nodes {
		for _, p := range node.Preconditions {
			dependents[p] = append(dependents[p], j)
		}
	}

	out := &Graph[S]{nodes: make([]Node, n)}
	for i, node := range g.nodes {
		newIndex := n - 1 - i
		deps := dependents[i]
		newPre := make([]int, len(deps))
		for k, j := range deps {
			newPre[k] = n - 1 - j
		}
		out.nodes[newIndex] = Node{
			Requirement:   node.Requirement,
			Preconditions: newPre,
			PreExisting:   node.PreExisting,
		}
	}
	return out
}

// Retain keeps only the nodes for which keep(index, node) holds. Each
// removed node's preconditions are inherited by whatever kept node (direct
// or, transitively, through a chain of removed nodes) depended on it, with
// duplicates removed, so reachability between any pair of kept nodes is
// preserved exactly. Inherited edges are kept even when another path
// already implies them (END(B,C) with A and B dropped keeps both ROOT and
// C as preconditions).
func (g *Graph[S]) Retain(keep func(index int, node Node) bool) *Graph[S] {
	n := len(g.nodes)
	keepFlag := make([]bool, n)
	for i, node := range g.nodes {
		keepFlag[i] = keep(i, node)
	}

	// effective[i]: the set of *kept* ancestor indices that i's removal
	// chain would hand to i's dependents, computed bottom-up since
	// preconditions always have a smaller index (I1).
	effective := make([][]int, n)
	for i, node := range g.nodes {
		seen := make(map[int]bool)
		var set []int
		add := func(idx int) {
			if !seen[idx] {
				seen[idx] = true
				set = append(set, idx)
			}
		}
		for _, p := range node.Preconditions {
			if keepFlag[p] {
				add(p)
			} else {
				for _, q := range effective[p] {
					add(q)
				}
			}
		}
		effective[i] = set
	}

	out := &Graph[S]{}
	newIndex := make([]int, n)
	for i, node := range g.nodes {
		if !keepFlag[i] {
			continue
		}
		pre := make([]int, len(effective[i]))
		for k, p := range effective[i] {
			pre[k] = newIndex[p]
		}
		idx := len(out.nodes)
		newIndex[i] = idx
		out.nodes = append(out.nodes, Node{
			Requirement:   node.Requirement,
			Preconditions: pre,
			PreExisting:   node.PreExisting,
		})
	}
	return out
}

// ToApplied freezes a Pending graph into an Applied one after a successful
// apply run, marking PreExisting on every node index named in
// preExisting (the source indices apply.Result.PreExisting reports).
func ToApplied(g *Graph[Pending], preExisting []int) *Graph[Applied] {
	preSet := make(map[int]bool, len(preExisting))
	for _, i := range preExisting {
		preSet[i] = true
	}
	out := &Graph[Applied]{nodes: make([]Node, len(g.nodes))}
	for i, n := range g.nodes {
		out.nodes[i] = Node{Requirement: n.Requirement, Preconditions: n.Preconditions, PreExisting: preSet[i]}
	}
	return out
}

// NewFromApplied re-casts an Applied graph as Pending: used when the
// target of an apply <version> command is itself a previously-Applied
// install, which the differ treats exactly like a builder's freshly
// constructed Pending graph.
func NewFromApplied(g *Graph[Applied]) *Graph[Pending] {
	out := &Graph[Pending]{nodes: make([]Node, len(g.nodes))}
	copy(out.nodes, g.nodes)
	return out
}

// Walk visits every node exactly once, in reverse insertion order subject
// to each node being released only once all of its preconditions have
// been released: it repeatedly scans from the highest remaining index
// downward and releases the first node whose preconditions are already
// satisfied. This is the one walking rule used throughout the engine —
// apply uses it directly on the target graph (dependencies first); undo
// uses it on an already-inverted, retained graph (dependents first).
func (g *Graph[S]) Walk(visit func(index int, node Node) error) error {
	n := len(g.nodes)
	released := make([]bool, n)
	remaining := n
	for remaining > 0 {
		found := -1
		for i := n - 1; i >= 0; i-- {
			if released[i] {
				continue
			}
			ok := true
			for _, p := range g.nodes[i].Preconditions {
				if !released[p] {
					ok = false
					break
				}
			}
			if ok {
				found = i
				break
			}
		}
		if found == -1 {
			return fmt.Errorf("graph: walk could not make progress (cycle or corrupt preconditions)")
		}
		if err := visit(found, g.nodes[found]); err != nil {
			return err
		}
		released[found] = true
		remaining--
	}
	return nil
}
