package kinds_test

import (
	"context"
	"testing"

	"github.com/cuemby/foundry/pkg/catalog"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/kinds"
)

func newRegistryForTest() *catalog.Registry {
	reg := catalog.NewRegistry()
	kinds.Register(reg)
	return reg
}

func TestDirectoryCreateAndVerify(t *testing.T) {
	ctx := context.Background()
	h := host.NewMemory()
	d := &kinds.Directory{Path: "/config/demo", Mode: 0755}

	if err := d.Create(ctx, h); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := d.Verify(ctx, h); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestDirectoryVerifyFailsWhenMissing(t *testing.T) {
	ctx := context.Background()
	h := host.NewMemory()
	d := &kinds.Directory{Path: "/config/missing", Mode: 0755}

	if err := d.Verify(ctx, h); err == nil {
		t.Fatal("expected verify to fail for a missing directory")
	}
}

func TestFileWithContentsDetectsDrift(t *testing.T) {
	ctx := context.Background()
	h := host.NewMemory()
	f := &kinds.FileWithContents{Path: "/config/demo/a.txt", Contents: []byte("expected"), Mode: 0644}

	if err := f.Create(ctx, h); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := f.Verify(ctx, h); err != nil {
		t.Fatalf("verify after create: %v", err)
	}

	if err := h.WriteFile(ctx, f.Path, []byte("drifted"), 0644); err != nil {
		t.Fatalf("simulate drift: %v", err)
	}
	if err := f.Verify(ctx, h); err == nil {
		t.Fatal("expected verify to detect content drift")
	}
}

func TestFileWithContentsAffectsMatchesOnPathOnly(t *testing.T) {
	a := &kinds.FileWithContents{Path: "/config/demo/a.txt", Contents: []byte("one"), Mode: 0644}
	b := &kinds.FileWithContents{Path: "/config/demo/a.txt", Contents: []byte("two"), Mode: 0600}
	c := &kinds.FileWithContents{Path: "/config/demo/b.txt", Contents: []byte("one"), Mode: 0644}

	if !a.Affects(b) {
		t.Fatal("expected same-path files to affect each other regardless of contents")
	}
	if a.Affects(c) {
		t.Fatal("expected different-path files not to affect each other")
	}
}

func TestCommandSkipsCreateWhenCheckAlreadySucceeds(t *testing.T) {
	ctx := context.Background()
	h := host.NewMemory()
	h.Commands["test -f /flag"] = host.CommandResult{ExitCode: 0}
	h.Commands["touch /flag"] = host.CommandResult{ExitCode: 1}

	c := &kinds.Command{
		Name:       "flag",
		CheckArgv:  []string{"test", "-f", "/flag"},
		CreateArgv: []string{"touch", "/flag"},
		Undoable:   false,
	}

	created, err := c.HasBeenCreated(ctx, h)
	if err != nil {
		t.Fatalf("has been created: %v", err)
	}
	if !created {
		t.Fatal("expected check command to report already created")
	}
}

func TestCommandCanUndoReflectsUndoableFlag(t *testing.T) {
	c := &kinds.Command{Name: "irreversible", Undoable: false}
	if c.CanUndo() {
		t.Fatal("expected CanUndo false when Undoable is false")
	}
	c.Undoable = true
	if !c.CanUndo() {
		t.Fatal("expected CanUndo true when Undoable is true")
	}
}

func TestRegisterAddsEveryKind(t *testing.T) {
	reg := newRegistryForTest()
	for _, k := range []string{
		kinds.DirectoryKind,
		kinds.FileKind,
		kinds.CommandKind,
		kinds.SystemGroupKind,
		kinds.SystemUserKind,
		kinds.SystemdUnitKind,
	} {
		if !reg.Supports(k) {
			t.Fatalf("expected registry to support kind %q after Register", k)
		}
	}
}
