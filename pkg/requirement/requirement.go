// Package requirement defines the contract every configuration requirement
// kind implements. A requirement describes one piece of host state (a file,
// a user, a package, ...) and how to bring it into existence, tear it down,
// and check it.
package requirement

import (
	"context"
	"errors"

	"github.com/cuemby/foundry/pkg/host"
)

// VerifyError is returned by Verify when a requirement's target exists
// but does not match its payload (wrong content, wrong mode, wrong
// enabled-state, ...).
type VerifyError struct{ Reason string }

func (e *VerifyError) Error() string { return "verify: " + e.Reason }

// ErrPreExisting is returned (wrapped) by the apply driver when the target
// of a requirement that does not allow pre-existing state
// (MayPreExist() == false) is found to already exist on the host and the
// overwrite policy refuses to take it over.
var ErrPreExisting = errors.New("requirement: target pre-exists on host")

// Requirement is the contract a concrete kind (file, directory, package,
// user, systemd unit, ...) must satisfy. Implementations live outside this
// package; pkg/kinds ships a small real set.
type Requirement interface {
	// Kind returns the tag this requirement encodes as in the catalog,
	// e.g. "file", "directory", "systemd_unit".
	Kind() string

	// Create brings the requirement's target into existence on h.
	Create(ctx context.Context, h host.Host) error

	// Modify reconciles an already-existing target with this
	// requirement's own payload. Only called when HasBeenCreated found
	// the target present and SupportsModifications() is true.
	Modify(ctx context.Context, h host.Host) error

	// Delete removes a target this engine created.
	Delete(ctx context.Context, h host.Host) error

	// DeletePreExisting removes a target this engine did not create but
	// took ownership of (MayPreExist() == true, detected pre-existing at
	// apply time). The default is a no-op: see NoPreExistingDelete.
	DeletePreExisting(ctx context.Context, h host.Host) error

	// HasBeenCreated reports whether this requirement's target currently
	// exists on h, regardless of who created it.
	HasBeenCreated(ctx context.Context, h host.Host) (bool, error)

	// Verify checks that the target matches this requirement's payload
	// exactly (content, mode, membership, ...), beyond mere existence.
	Verify(ctx context.Context, h host.Host) error

	// Affects reports whether other targets the same resource as this
	// requirement. Only ever called between two requirements of the same
	// Kind(); the differ and the apply driver compare Kind() first.
	Affects(other Requirement) bool

	// SupportsModifications reports whether Modify is meaningful for this
	// kind. If false, the apply driver leaves an existing target as it is
	// and never calls Modify; a changed payload is not delete-then-created.
	SupportsModifications() bool

	// CanUndo reports whether Delete is safe to call during a revert or
	// teardown. If false, the node survives removal passes once created.
	CanUndo() bool

	// MayPreExist reports whether finding the target already present on
	// the host before Create runs is acceptable (ownership is taken) or
	// an error (ErrPreExisting).
	MayPreExist() bool
}

// NoPreExistingDelete is embedded by kinds that leave DeletePreExisting as
// a no-op, the default behavior described for requirements that can take
// ownership of pre-existing state but were never asked to tear it down.
type NoPreExistingDelete struct{}

func (NoPreExistingDelete) DeletePreExisting(ctx context.Context, h host.Host) error {
	return nil
}
