package kinds

import (
	"context"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/requirement"
)

// SystemGroupKind and SystemUserKind are the catalog tags for the
// group/user pair below, grounded on the user-and-group allocation shape
// the builder front end this engine's contract was distilled from uses
// (a user node carrying a dependency on its primary group's node).
const (
	SystemGroupKind = "system_group"
	SystemUserKind  = "system_user"
)

// SystemGroup requires a POSIX group named Name to exist.
type SystemGroup struct {
	requirement.NoPreExistingDelete
	Name string `json:"name"`
}

func (g *SystemGroup) Kind() string { return SystemGroupKind }

func (g *SystemGroup) Create(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, []string{"groupadd", g.Name})
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (g *SystemGroup) Modify(ctx context.Context, h host.Host) error { return nil }

func (g *SystemGroup) Delete(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, []string{"groupdel", g.Name})
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (g *SystemGroup) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	res, err := h.ExecuteCommand(ctx, []string{"getent", "group", g.Name})
	if err != nil {
		return false, err
	}
	return res.IsSuccess(), nil
}

func (g *SystemGroup) Verify(ctx context.Context, h host.Host) error {
	ok, err := g.HasBeenCreated(ctx, h)
	if err != nil {
		return err
	}
	if !ok {
		return &requirement.VerifyError{Reason: "group does not exist"}
	}
	return nil
}

func (g *SystemGroup) Affects(other requirement.Requirement) bool {
	o, ok := other.(*SystemGroup)
	return ok && o.Name == g.Name
}

func (g *SystemGroup) SupportsModifications() bool { return false }
func (g *SystemGroup) CanUndo() bool               { return true }
func (g *SystemGroup) MayPreExist() bool           { return true }

// SystemUser requires a POSIX user named Name, with primary group Group
// and home directory Home, to exist.
type SystemUser struct {
	requirement.NoPreExistingDelete
	Name  string `json:"name"`
	Group string `json:"group"`
	Home  string `json:"home"`
}

func (u *SystemUser) Kind() string { return SystemUserKind }

func (u *SystemUser) Create(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, []string{"useradd", "-g", u.Group, "-d", u.Home, "-m", u.Name})
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (u *SystemUser) Modify(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, []string{"usermod", "-g", u.Group, "-d", u.Home, u.Name})
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (u *SystemUser) Delete(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, []string{"userdel", "-r", u.Name})
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (u *SystemUser) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	res, err := h.ExecuteCommand(ctx, []string{"getent", "passwd", u.Name})
	if err != nil {
		return false, err
	}
	return res.IsSuccess(), nil
}

func (u *SystemUser) Verify(ctx context.Context, h host.Host) error {
	ok, err := u.HasBeenCreated(ctx, h)
	if err != nil {
		return err
	}
	if !ok {
		return &requirement.VerifyError{Reason: "user does not exist"}
	}
	return nil
}

func (u *SystemUser) Affects(other requirement.Requirement) bool {
	o, ok := other.(*SystemUser)
	return ok && o.Name == u.Name
}

func (u *SystemUser) SupportsModifications() bool { return true }
func (u *SystemUser) CanUndo() bool               { return true }
func (u *SystemUser) MayPreExist() bool           { return true }
