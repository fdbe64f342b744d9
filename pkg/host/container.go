package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

// launchMu serializes container launches the way the original test harness
// serializes `lxc launch` invocations: concurrent launches of the same base
// image have been observed to race inside lxd itself.
var launchMu sync.Mutex

// Container is a Host backed by a disposable LXC container, for test
// suites that exercise apply/verify/revert against a real, isolated
// filesystem and process namespace instead of the developer's own machine.
// No test in this module launches one.
type Container struct {
	name string
}

// NewContainer launches a fresh container from image and returns a Host
// bound to it. Stop must be called to tear it down.
func NewContainer(ctx context.Context, image string) (*Container, error) {
	name, err := randomName("foundry-test")
	if err != nil {
		return nil, err
	}

	launchMu.Lock()
	cmd := exec.CommandContext(ctx, "lxc", "launch", image, name)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err = cmd.Run()
	launchMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("lxc launch %s %s: %w: %s", image, name, err, stderr.String())
	}

	c := &Container{name: name}
	if err := c.waitReady(ctx); err != nil {
		_ = c.Stop(context.Background())
		return nil, err
	}
	return c, nil
}

func (c *Container) waitReady(ctx context.Context) error {
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		res, err := c.ExecuteCommand(ctx, []string{"true"})
		if err == nil && res.IsSuccess() {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("container %s never became ready", c.name)
}

// Stop stops and deletes the container.
func (c *Container) Stop(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, "lxc", "delete", "--force", c.name)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("lxc delete %s: %w: %s", c.name, err, stderr.String())
	}
	return nil
}

func (c *Container) exec(ctx context.Context, argv []string, stdin []byte) (CommandResult, error) {
	full := append([]string{"exec", c.name, "--"}, argv...)
	cmd := exec.CommandContext(ctx, "lxc", full...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.ExitCode = 0
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return result, fmt.Errorf("lxc exec %s %v: %w", c.name, argv, err)
	}
	return result, nil
}

func (c *Container) ExecuteCommand(ctx context.Context, argv []string) (CommandResult, error) {
	return c.exec(ctx, argv, nil)
}

func (c *Container) ExecuteCommandWithInput(ctx context.Context, argv []string, stdin []byte) (CommandResult, error) {
	return c.exec(ctx, argv, stdin)
}

func (c *Container) PathExists(ctx context.Context, path string) (bool, error) {
	res, err := c.exec(ctx, []string{"test", "-e", path}, nil)
	if err != nil {
		return false, err
	}
	return res.IsSuccess(), nil
}

func (c *Container) ReadFile(ctx context.Context, path string) ([]byte, error) {
	res, err := c.exec(ctx, []string{"cat", path}, nil)
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("cat %s: %s", path, res.Stderr)
	}
	return []byte(res.Stdout), nil
}

func (c *Container) WriteFile(ctx context.Context, path string, data []byte, mode uint32) error {
	if _, err := c.exec(ctx, []string{"mkdir", "-p", dirOf(path)}, nil); err != nil {
		return err
	}
	res, err := c.exec(ctx, []string{"tee", path}, data)
	if err != nil {
		return err
	}
	if !res.IsSuccess() {
		return fmt.Errorf("write %s: %s", path, res.Stderr)
	}
	_, err = c.exec(ctx, []string{"chmod", strconv.FormatUint(uint64(mode), 8), path}, nil)
	return err
}

func (c *Container) RemoveFile(ctx context.Context, path string) error {
	_, err := c.exec(ctx, []string{"rm", "-f", path}, nil)
	return err
}

func (c *Container) Rename(ctx context.Context, oldPath, newPath string) error {
	res, err := c.exec(ctx, []string{"mv", "-f", oldPath, newPath}, nil)
	if err != nil {
		return err
	}
	if !res.IsSuccess() {
		return fmt.Errorf("rename %s to %s: %s", oldPath, newPath, res.Stderr)
	}
	return nil
}

func (c *Container) Mkdir(ctx context.Context, dir string, mode uint32) error {
	if _, err := c.exec(ctx, []string{"mkdir", "-p", dir}, nil); err != nil {
		return err
	}
	_, err := c.exec(ctx, []string{"chmod", strconv.FormatUint(uint64(mode), 8), dir}, nil)
	return err
}

func (c *Container) RemoveDir(ctx context.Context, dir string) error {
	_, err := c.exec(ctx, []string{"rm", "-rf", dir}, nil)
	return err
}

func (c *Container) ReadDir(ctx context.Context, dir string) ([]string, error) {
	res, err := c.exec(ctx, []string{"ls", "-1", "-A", dir}, nil)
	if err != nil {
		return nil, err
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("ls %s: %s", dir, res.Stderr)
	}
	return splitLines(res.Stdout), nil
}

func (c *Container) Chmod(ctx context.Context, path string, mode uint32) error {
	_, err := c.exec(ctx, []string{"chmod", strconv.FormatUint(uint64(mode), 8), path}, nil)
	return err
}

func randomName(prefix string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate container name: %w", err)
	}
	return prefix + "-" + id.String()[:8], nil
}

func dirOf(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[:i]
		}
	}
	return "."
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
