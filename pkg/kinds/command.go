package kinds

import (
	"context"

	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/requirement"
)

// CommandKind is the catalog tag for Command.
const CommandKind = "command"

// Command requires an idempotent condition enforced by running CreateArgv
// when CheckArgv does not already exit zero, and (if Undoable) reversed by
// DeleteArgv. This is the managed-exec kind for anything without a richer
// native representation — grounded on the exec-based health probe pattern
// this engine's teacher uses for liveness checks, repurposed here from a
// periodic probe into a one-shot existence probe.
type Command struct {
	requirement.NoPreExistingDelete
	Name       string   `json:"name"`
	CheckArgv  []string `json:"check_argv"`
	CreateArgv []string `json:"create_argv"`
	DeleteArgv []string `json:"delete_argv,omitempty"`
	Undoable   bool     `json:"undoable"`
}

func (c *Command) Kind() string { return CommandKind }

func (c *Command) Create(ctx context.Context, h host.Host) error {
	res, err := h.ExecuteCommand(ctx, c.CreateArgv)
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (c *Command) Modify(ctx context.Context, h host.Host) error {
	return c.Create(ctx, h)
}

func (c *Command) Delete(ctx context.Context, h host.Host) error {
	if len(c.DeleteArgv) == 0 {
		return nil
	}
	res, err := h.ExecuteCommand(ctx, c.DeleteArgv)
	if err != nil {
		return err
	}
	_, _, err = res.Successful()
	return err
}

func (c *Command) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	res, err := h.ExecuteCommand(ctx, c.CheckArgv)
	if err != nil {
		return false, err
	}
	return res.IsSuccess(), nil
}

func (c *Command) Verify(ctx context.Context, h host.Host) error {
	ok, err := c.HasBeenCreated(ctx, h)
	if err != nil {
		return err
	}
	if !ok {
		return &requirement.VerifyError{Reason: "check command did not succeed"}
	}
	return nil
}

func (c *Command) Affects(other requirement.Requirement) bool {
	o, ok := other.(*Command)
	return ok && o.Name == c.Name
}

func (c *Command) SupportsModifications() bool { return false }
func (c *Command) CanUndo() bool               { return c.Undoable }
func (c *Command) MayPreExist() bool           { return true }
