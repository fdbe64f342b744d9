package graph

import (
	"encoding/json"
	"fmt"

	"github.com/cuemby/foundry/pkg/catalog"
)

type wireNode struct {
	Requirement   json.RawMessage `json:"requirement"`
	Preconditions []int           `json:"preconditions"`
	PreExisting   bool            `json:"pre_existing"`
}

type wireGraph struct {
	Nodes []wireNode `json:"nodes"`
	State string     `json:"state"`
}

// Encode renders g as the on-disk graph format: an ordered node list with
// tagged-map requirement payloads and a state marker, decodable regardless
// of the field order any individual requirement payload used.
func Encode[S State](g *Graph[S], reg *catalog.Registry) ([]byte, error) {
	var zero S
	w := wireGraph{
		Nodes: make([]wireNode, len(g.nodes)),
		State: zero.stateName(),
	}
	for i, node := range g.nodes {
		payload, err := reg.Encode(node.Requirement)
		if err != nil {
			return nil, fmt.Errorf("encode node %d: %w", i, err)
		}
		pre := node.Preconditions
		if pre == nil {
			pre = []int{}
		}
		w.Nodes[i] = wireNode{Requirement: payload, Preconditions: pre, PreExisting: node.PreExisting}
	}
	out, err := json.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("encode graph: %w", err)
	}
	return out, nil
}

// Decode parses the on-disk graph format into a Graph[S], verifying the
// embedded state marker matches S and that every node's preconditions
// satisfy I1 (defending against a hand-edited or corrupted registry file).
func Decode[S State](data []byte, reg *catalog.Registry) (*Graph[S], error) {
	var w wireGraph
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode graph: %w", err)
	}
	var zero S
	if w.State != zero.stateName() {
		return nil, fmt.Errorf("decode graph: expected state %q, got %q", zero.stateName(), w.State)
	}

	g := &Graph[S]{nodes: make([]Node, len(w.Nodes))}
	for i, wn := range w.Nodes {
		req, err := reg.Decode(wn.Requirement)
		if err != nil {
			return nil, fmt.Errorf("decode node %d: %w", i, err)
		}
		for _, p := range wn.Preconditions {
			if p < 0 || p >= i {
				return nil, fmt.Errorf("decode graph: node %d names out-of-range precondition %d", i, p)
			}
		}
		g.nodes[i] = Node{Requirement: req, Preconditions: wn.Preconditions, PreExisting: wn.PreExisting}
	}
	return g, nil
}
