package kinds

import (
	"context"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/requirement"
)

// SystemdUnitKind is the catalog tag for SystemdUnit.
const SystemdUnitKind = "systemd_unit"

// SystemdUnit requires a systemd unit to be enabled (and, if Started, also
// running). DeletePreExisting overrides the default no-op: disabling a
// service this engine took ownership of but never itself created is still
// the right teardown, unlike e.g. a pre-existing file this engine should
// leave alone.
type SystemdUnit struct {
	Name    string `json:"name"`
	Started bool   `json:"started"`
}

func (s *SystemdUnit) Kind() string { return SystemdUnitKind }

func (s *SystemdUnit) enableArgs() []string {
	args := []string{"systemctl", "enable", s.Name}
	if s.Started {
		args = append(args, "--now")
	}
	return args
}

func (s *SystemdUnit) Create(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, s.enableArgs())
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (s *SystemdUnit) Modify(ctx context.Context, h host.Host) error {
	return s.Create(ctx, h)
}

func (s *SystemdUnit) Delete(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, []string{"systemctl", "disable", "--now", s.Name})
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (s *SystemdUnit) DeletePreExisting(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, []string{"systemctl", "disable", s.Name})
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (s *SystemdUnit) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	res, err := h.ExecuteCommand(ctx, []string{"systemctl", "is-enabled", "--quiet", s.Name})
	if err != nil {
		return false, err
	}
	return res.IsSuccess(), nil
}

func (s *SystemdUnit) Verify(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, []string{"systemctl", "is-enabled", s.Name})
	if err != nil {
		return err
	}
	if !res.IsSuccess() {
		return &requirement.VerifyError{Reason: "unit is not enabled"}
	}
	if s.Started {
		active, err := h.ExecuteCommand(ctx, []string{"systemctl", "is-active", "--quiet", s.Name})
		if err != nil {
			return err
		}
		if !active.IsSuccess() {
			return &requirement.VerifyError{Reason: "unit is enabled but not active"}
		}
	}
	return nil
}

func (s *SystemdUnit) Affects(other requirement.Requirement) bool {
	o, ok := other.(*SystemdUnit)
	return ok && o.Name == s.Name
}

func (s *SystemdUnit) SupportsModifications() bool { return true }
func (s *SystemdUnit) CanUndo() bool               { return true }
func (s *SystemdUnit) MayPreExist() bool           { return true }
