// Package registry implements the persistent, versioned install store: a
// directory tree rooted at an operator-chosen base directory holding every
// Applied graph ever installed, a pointer to the current one, and the
// sibling trees (generated files, chroots, exposed/config/deleted files,
// per-package userdata and backups, secrets) that a build's side-artifacts
// live under.
package registry

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/cuemby/foundry/pkg/catalog"
	"github.com/cuemby/foundry/pkg/elog"
	"github.com/cuemby/foundry/pkg/graph"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/metrics"
)

// Dirs is the on-disk registry rooted at Base.
type Dirs struct {
	Base string
	reg  *catalog.Registry
}

// New returns a Dirs rooted at base, decoding graphs with reg.
func New(base string, reg *catalog.Registry) *Dirs {
	return &Dirs{Base: strings.TrimRight(base, "/"), reg: reg}
}

func (d *Dirs) join(elems ...string) string {
	return path.Join(append([]string{d.Base}, elems...)...)
}

func (d *Dirs) installedDir(version int) string {
	return d.join("installed", strconv.Itoa(version))
}

// InstallDB returns the path to version N's serialized Applied graph.
func (d *Dirs) InstallDB(version int) string { return path.Join(d.installedDir(version), "db") }

// CurrentPath returns the path to the ASCII decimal "current" pointer.
func (d *Dirs) CurrentPath() string { return d.join("installed", "current") }

// GeneratedPath returns where a package's generated artifacts for a given
// version live.
func (d *Dirs) GeneratedPath(version int, pkg string) string {
	return path.Join(d.installedDir(version), "generated", pkg)
}

// ChrootPath returns a version's chroot tree.
func (d *Dirs) ChrootPath(version int) string { return d.join("chroots", strconv.Itoa(version)) }

// ExposedPath, ConfigPath, DeletedPath expose the shared files/ subtrees.
func (d *Dirs) ExposedPath() string { return d.join("files", "exposed") }
func (d *Dirs) ConfigPath() string  { return d.join("files", "config") }
func (d *Dirs) DeletedPath() string { return d.join("files", "deleted") }

// UserdataPath returns a package's persistent userdata directory.
func (d *Dirs) UserdataPath(pkg string) string { return d.join("data", pkg, "userdata") }

// BackupPath returns a package's backup directory.
func (d *Dirs) BackupPath(pkg string) string { return d.join("backups", pkg) }

// DeletedFileBackupPath returns where a deleted file's prior contents are
// preserved, named after its original path.
func (d *Dirs) DeletedFileBackupPath(original string) string {
	return path.Join(d.DeletedPath(), strings.TrimPrefix(original, "/"))
}

// SecretPath returns the path to one secret's material: mode 0600 file
// under a mode 0700 package/kind directory.
func (d *Dirs) SecretPath(pkg, kind, name string) string {
	return d.join("secrets", pkg, kind, name)
}

// PackagesPath returns the shared package-metadata tree.
func (d *Dirs) PackagesPath() string { return d.join("packages") }

// Initialize sets up a fresh registry: refuses a non-empty base directory,
// builds the full tree, and writes version 0 with an empty Applied graph
// as current. The base directory and every secrets directory are created
// owner-only.
func (d *Dirs) Initialize(ctx context.Context, h host.Host) error {
	exists, err := h.PathExists(ctx, d.Base)
	if err != nil {
		return fmt.Errorf("registry init: check base dir: %w", err)
	}
	if exists {
		entries, err := h.ReadDir(ctx, d.Base)
		if err != nil {
			return fmt.Errorf("registry init: read base dir: %w", err)
		}
		if len(entries) > 0 {
			return fmt.Errorf("registry init: base directory %q is not empty", d.Base)
		}
	}

	dirs := []string{
		d.Base,
		d.join("installed"),
		d.PackagesPath(),
		d.join("chroots"),
		d.ExposedPath(),
		d.ConfigPath(),
		d.DeletedPath(),
		d.join("data"),
		d.join("backups"),
		d.join("secrets"),
	}
	for _, dir := range dirs {
		if err := h.Mkdir(ctx, dir, 0700); err != nil {
			return fmt.Errorf("registry init: create %s: %w", dir, err)
		}
	}

	empty := graph.New[graph.Applied]()
	if err := d.WriteInstall(ctx, h, 0, empty); err != nil {
		return fmt.Errorf("registry init: write version 0: %w", err)
	}
	if err := d.SetCurrent(ctx, h, 0); err != nil {
		return fmt.Errorf("registry init: set current: %w", err)
	}

	elog.WithComponent("registry").Info().Str("base", d.Base).Msg("registry initialized")
	return nil
}

// WriteInstall persists g as version's Applied graph.
func (d *Dirs) WriteInstall(ctx context.Context, h host.Host, version int, g *graph.Graph[graph.Applied]) error {
	if err := h.Mkdir(ctx, d.installedDir(version), 0700); err != nil {
		return fmt.Errorf("create install dir for version %d: %w", version, err)
	}
	data, err := graph.Encode(g, d.reg)
	if err != nil {
		return fmt.Errorf("encode version %d: %w", version, err)
	}
	if err := h.WriteFile(ctx, d.InstallDB(version), data, 0600); err != nil {
		return fmt.Errorf("write version %d db: %w", version, err)
	}
	return nil
}

// GetInstall loads version's Applied graph.
func (d *Dirs) GetInstall(ctx context.Context, h host.Host, version int) (*graph.Graph[graph.Applied], error) {
	data, err := h.ReadFile(ctx, d.InstallDB(version))
	if err != nil {
		return nil, fmt.Errorf("read version %d db: %w", version, err)
	}
	g, err := graph.Decode[graph.Applied](data, d.reg)
	if err != nil {
		return nil, fmt.Errorf("decode version %d db: %w", version, err)
	}
	return g, nil
}

// CurrentInstall returns the version number the current pointer names.
func (d *Dirs) CurrentInstall(ctx context.Context, h host.Host) (int, error) {
	data, err := h.ReadFile(ctx, d.CurrentPath())
	if err != nil {
		return 0, fmt.Errorf("read current pointer: %w", err)
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("parse current pointer %q: %w", string(data), err)
	}
	return version, nil
}

// SetCurrent points current at version. The write goes to a temp file
// then is renamed into place, so the pointer update is atomic on a single
// filesystem — a resolved version of the registry-atomicity open question.
func (d *Dirs) SetCurrent(ctx context.Context, h host.Host, version int) error {
	tmp := d.CurrentPath() + ".tmp"
	if err := h.WriteFile(ctx, tmp, []byte(strconv.Itoa(version)), 0600); err != nil {
		return fmt.Errorf("write temp current pointer: %w", err)
	}
	if err := h.Rename(ctx, tmp, d.CurrentPath()); err != nil {
		return fmt.Errorf("rename current pointer into place: %w", err)
	}
	metrics.RegistryCurrentVersion.Set(float64(version))
	metrics.RegistryAdvancesTotal.Inc()
	return nil
}

// FreshInstall returns the next unused version number: one greater than
// the largest integer-named entry under installed/.
func (d *Dirs) FreshInstall(ctx context.Context, h host.Host) (int, error) {
	entries, err := h.ReadDir(ctx, d.join("installed"))
	if err != nil {
		return 0, fmt.Errorf("fresh install: list installed versions: %w", err)
	}
	versions := make([]int, 0, len(entries))
	for _, name := range entries {
		if name == "current" || name == "current.tmp" {
			continue
		}
		v, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}
	if len(versions) == 0 {
		return 0, nil
	}
	sort.Ints(versions)
	return versions[len(versions)-1] + 1, nil
}
