// Package kinds ships a small, real set of requirement kinds so the engine
// has something concrete to drive end to end: a directory, a
// content-hashed file, a managed command, system users/groups, and a
// systemd unit. The core (pkg/requirement, pkg/catalog, pkg/graph,
// pkg/differ, pkg/apply, pkg/verify, pkg/registry) never imports this
// package; a real deployment registers whichever of these — or its own —
// kinds it needs with a pkg/catalog.Registry.
package kinds

import (
	"context"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/requirement"
)

// DirectoryKind is the catalog tag for Directory.
const DirectoryKind = "directory"

// Directory requires a directory to exist at Path with the given Mode.
// It tolerates pre-existing directories (a system rarely owns every
// ancestor of every path it manages) and never modifies an existing one
// in place. Mode drift is neither fixed nor reported: Verify checks only
// that the directory exists.
type Directory struct {
	requirement.NoPreExistingDelete
	Path string `json:"path"`
	Mode uint32 `json:"mode"`
}

func (d *Directory) Kind() string { return DirectoryKind }

func (d *Directory) Create(ctx context.Context, h host.Host) error {
	return h.Mkdir(ctx, d.Path, d.Mode)
}

func (d *Directory) Modify(ctx context.Context, h host.Host) error {
	return nil
}

func (d *Directory) Delete(ctx context.Context, h host.Host) error {
	return h.RemoveDir(ctx, d.Path)
}

func (d *Directory) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	return h.PathExists(ctx, d.Path)
}

func (d *Directory) Verify(ctx context.Context, h host.Host) error {
	exists, err := h.PathExists(ctx, d.Path)
	if err != nil {
		return err
	}
	if !exists {
		return &requirement.VerifyError{Reason: "directory does not exist"}
	}
	return nil
}

func (d *Directory) Affects(other requirement.Requirement) bool {
	o, ok := other.(*Directory)
	return ok && o.Path == d.Path
}

func (d *Directory) SupportsModifications() bool { return false }
func (d *Directory) CanUndo() bool               { return true }
func (d *Directory) MayPreExist() bool           { return true }
