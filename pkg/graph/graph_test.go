package graph

import (
	"context"
	"testing"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/requirement"
)

// fakeReq is a minimal test double standing in for a real requirement kind,
// named the way the fixtures in this engine's graph tests are: just enough
// behavior to drive Add/Invert/Retain/Walk without any host interaction.
type fakeReq struct {
	name    string
	canUndo bool
}

func (f *fakeReq) Kind() string { return "fake" }
func (f *fakeReq) Create(ctx context.Context, h host.Host) error { return nil }
func (f *fakeReq) Modify(ctx context.Context, h host.Host) error { return nil }
func (f *fakeReq) Delete(ctx context.Context, h host.Host) error             { return nil }
func (f *fakeReq) DeletePreExisting(ctx context.Context, h host.Host) error  { return nil }
func (f *fakeReq) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	return false, nil
}
func (f *fakeReq) Verify(ctx context.Context, h host.Host) error { return nil }
func (f *fakeReq) Affects(other requirement.Requirement) bool {
	o, ok := other.(*fakeReq)
	return ok && o.name == f.name
}
func (f *fakeReq) SupportsModifications() bool { return false }
func (f *fakeReq) CanUndo() bool               { return f.canUndo }
func (f *fakeReq) MayPreExist() bool           { return false }

func node(name string) *fakeReq { return &fakeReq{name: name, canUndo: true} }
func nodeNoUndo(name string) *fakeReq { return &fakeReq{name: name, canUndo: false} }

func names(g *Graph[Pending], order []int) []string {
	out := make([]string, len(order))
	for i, idx := range order {
		out[i] = g.Node(idx).Requirement.(*fakeReq).name
	}
	return out
}

func walkOrder[S State](t *testing.T, g *Graph[S]) []string {
	t.Helper()
	var out []string
	err := g.Walk(func(i int, n Node) error {
		out = append(out, n.Requirement.(*fakeReq).name)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return out
}

func TestWalkTotalityChain(t *testing.T) {
	g := New[Pending]()
	root, _ := g.Add(node("ROOT"), nil)
	a, _ := g.Add(node("A"), []int{root})
	_, _ = g.Add(node("B"), []int{a})

	got := walkOrder(t, g)
	want := []string{"ROOT", "A", "B"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestInvertInvolution(t *testing.T) {
	g := New[Pending]()
	root, _ := g.Add(node("ROOT"), nil)
	a, _ := g.Add(node("A"), []int{root})
	b, _ := g.Add(node("B"), []int{a})
	_, _ = g.Add(node("C"), []int{a, root})
	_ = b

	inverted := g.Invert()
	back := inverted.Invert()

	if back.Len() != g.Len() {
		t.Fatalf("invert(invert(g)) changed node count: %d vs %d", back.Len(), g.Len())
	}
	for i := 0; i < g.Len(); i++ {
		want := g.Node(i)
		got := back.Node(i)
		if want.Requirement.(*fakeReq).name != got.Requirement.(*fakeReq).name {
			t.Fatalf("node %d: got %s want %s", i, got.Requirement.(*fakeReq).name, want.Requirement.(*fakeReq).name)
		}
		if len(want.Preconditions) != len(got.Preconditions) {
			t.Fatalf("node %d: precondition count got %v want %v", i, got.Preconditions, want.Preconditions)
		}
	}
}

func TestRetainWithInheritance(t *testing.T) {
	// ROOT, A(ROOT), B(A), C(A,ROOT), END(B,C); retain all but {A,B}.
	g := New[Pending]()
	root, _ := g.Add(node("ROOT"), nil)
	a, _ := g.Add(node("A"), []int{root})
	b, _ := g.Add(node("B"), []int{a})
	c, _ := g.Add(node("C"), []int{a, root})
	_, _ = g.Add(node("END"), []int{b, c})

	result := g.Retain(func(i int, n Node) bool {
		return i != a && i != b
	})

	if result.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", result.Len())
	}
	order := walkOrder(t, result)
	want := []string{"ROOT", "C", "END"}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
}

func TestTrivialTeardown(t *testing.T) {
	// Prev = {ROOT, A_noUndo(ROOT), B_noUndo(ROOT), C(A,ROOT), END(B,C)}
	// Expected undo order: END, C, ROOT.
	g := New[Applied]()
	root, _ := g.Add(node("ROOT"), nil)
	a, _ := g.Add(nodeNoUndo("A"), []int{root})
	b, _ := g.Add(nodeNoUndo("B"), []int{root})
	c, _ := g.Add(node("C"), []int{a, root})
	_, _ = g.Add(node("END"), []int{b, c})

	inverted := g.Invert()
	undo := inverted.Retain(func(i int, n Node) bool {
		return n.Requirement.(*fakeReq).canUndo
	})

	var order []string
	err := undo.Walk(func(i int, n Node) error {
		order = append(order, n.Requirement.(*fakeReq).name)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want := []string{"END", "C", "ROOT"}
	if len(order) != len(want) {
		t.Fatalf("got %v want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("got %v want %v", order, want)
		}
	}
}
