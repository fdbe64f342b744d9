package host_test

import (
	"context"
	"testing"

	"github.com/cuemby/foundry/pkg/host"
)

func TestMemoryWriteFileCreatesParentDirs(t *testing.T) {
	ctx := context.Background()
	m := host.NewMemory()

	if err := m.WriteFile(ctx, "/a/b/c/file.txt", []byte("data"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	exists, err := m.PathExists(ctx, "/a/b/c")
	if err != nil {
		t.Fatalf("path exists: %v", err)
	}
	if !exists {
		t.Fatal("expected intermediate directories to be created")
	}
}

func TestMemoryRemoveDirRemovesContents(t *testing.T) {
	ctx := context.Background()
	m := host.NewMemory()
	if err := m.WriteFile(ctx, "/a/b/file.txt", []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := m.RemoveDir(ctx, "/a"); err != nil {
		t.Fatalf("remove dir: %v", err)
	}

	exists, err := m.PathExists(ctx, "/a/b/file.txt")
	if err != nil {
		t.Fatalf("path exists: %v", err)
	}
	if exists {
		t.Fatal("expected file under removed directory to be gone")
	}
}

func TestMemoryReadDirListsDirectChildrenOnly(t *testing.T) {
	ctx := context.Background()
	m := host.NewMemory()
	if err := m.WriteFile(ctx, "/a/one.txt", []byte("1"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := m.WriteFile(ctx, "/a/nested/two.txt", []byte("2"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	names, err := m.ReadDir(ctx, "/a")
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("expected 2 direct children (one.txt, nested), got %v", names)
	}
}

func TestMemoryRenameMovesFile(t *testing.T) {
	ctx := context.Background()
	m := host.NewMemory()
	if err := m.WriteFile(ctx, "/current.tmp", []byte("1"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := m.Rename(ctx, "/current.tmp", "/current"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if exists, _ := m.PathExists(ctx, "/current.tmp"); exists {
		t.Fatal("expected source path to be gone after rename")
	}
	data, err := m.ReadFile(ctx, "/current")
	if err != nil {
		t.Fatalf("read renamed file: %v", err)
	}
	if string(data) != "1" {
		t.Fatalf("unexpected contents after rename: %q", data)
	}
}

func TestMemoryExecuteCommandDefaultsToSuccess(t *testing.T) {
	ctx := context.Background()
	m := host.NewMemory()

	res, err := m.ExecuteCommand(ctx, []string{"anything"})
	if err != nil {
		t.Fatalf("execute command: %v", err)
	}
	if !res.IsSuccess() {
		t.Fatal("expected an unconfigured command to default to success")
	}
}

func TestMemoryExecuteCommandUsesConfiguredResult(t *testing.T) {
	ctx := context.Background()
	m := host.NewMemory()
	m.Commands["systemctl is-enabled demo"] = host.CommandResult{ExitCode: 1, Stderr: "not found"}

	res, err := m.ExecuteCommand(ctx, []string{"systemctl", "is-enabled", "demo"})
	if err != nil {
		t.Fatalf("execute command: %v", err)
	}
	if res.IsSuccess() {
		t.Fatal("expected configured failure result to be returned")
	}
}
