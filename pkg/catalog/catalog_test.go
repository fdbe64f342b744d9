package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/requirement"
)

type widget struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (w *widget) Kind() string                                              { return "widget" }
func (w *widget) Create(ctx context.Context, h host.Host) error             { return nil }
func (w *widget) Modify(ctx context.Context, h host.Host) error             { return nil }
func (w *widget) Delete(ctx context.Context, h host.Host) error             { return nil }
func (w *widget) DeletePreExisting(ctx context.Context, h host.Host) error  { return nil }
func (w *widget) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	return false, nil
}
func (w *widget) Verify(ctx context.Context, h host.Host) error { return nil }
func (w *widget) Affects(other requirement.Requirement) bool {
	o, ok := other.(*widget)
	return ok && o.Name == w.Name
}
func (w *widget) SupportsModifications() bool { return true }
func (w *widget) CanUndo() bool               { return true }
func (w *widget) MayPreExist() bool           { return false }

func newTestRegistry() *Registry {
	reg := NewRegistry()
	reg.Register("widget", func() requirement.Requirement { return &widget{} })
	return reg
}

func TestRoundTripEncodeDecode(t *testing.T) {
	reg := newTestRegistry()
	w := &widget{Name: "gizmo", Count: 3}

	data, err := reg.Encode(w)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := reg.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded.(*widget)
	if got.Name != w.Name || got.Count != w.Count {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, w)
	}
}

func TestRoundTripToleratesFieldOrder(t *testing.T) {
	reg := newTestRegistry()
	// Field order reversed relative to the struct's declaration.
	data := []byte(`{"widget": {"count": 7, "name": "reordered"}}`)

	decoded, err := reg.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded.(*widget)
	if got.Name != "reordered" || got.Count != 7 {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeUnknownKind(t *testing.T) {
	reg := newTestRegistry()
	_, err := reg.Decode([]byte(`{"gadget": {}}`))
	if err == nil {
		t.Fatal("expected error decoding unknown kind")
	}
	var unknown *ErrUnknownKind
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestSupports(t *testing.T) {
	reg := newTestRegistry()
	if !reg.Supports("widget") {
		t.Fatal("expected widget to be supported")
	}
	if reg.Supports("gadget") {
		t.Fatal("expected gadget to be unsupported")
	}
}
