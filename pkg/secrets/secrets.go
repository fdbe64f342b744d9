// Package secrets manages on-disk secret material under a registry's
// secrets/<package>/<kind>/<name> tree: passwords and keys generated once
// on first request and persisted for every subsequent build to reuse,
// adapted from this engine's teacher's AES-256-GCM secrets manager and
// tmpfs secrets handler into the registry's nested directory layout.
package secrets

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/cuemby/foundry/pkg/host"
)

// Kind names the flavor of material a secret holds.
type Kind string

const (
	// Password is a random URL-safe string suitable for passing to
	// tools that expect a textual password.
	Password Kind = "password"
	// Key is 32 raw random bytes, suitable for use as an AES-256 key or
	// similar symmetric key material.
	Key Kind = "key"
)

// Store loads and generates secret material rooted at base (normally
// "<base>/secrets", the root of the tree registry.Dirs.SecretPath names).
type Store struct {
	base string
}

// New returns a Store rooted at base.
func New(base string) *Store {
	return &Store{base: base}
}

func (s *Store) path(pkg string, kind Kind, name string) string {
	return s.base + "/" + pkg + "/" + string(kind) + "/" + name
}

func (s *Store) dir(pkg string, kind Kind) string {
	return s.base + "/" + pkg + "/" + string(kind)
}

// Get returns the material for (pkg, kind, name), generating and
// persisting it on first request. The package and kind directories are
// created mode 0700; the secret file itself is mode 0600.
func (s *Store) Get(ctx context.Context, h host.Host, pkg string, kind Kind, name string) ([]byte, error) {
	p := s.path(pkg, kind, name)
	exists, err := h.PathExists(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("secrets: check %s: %w", p, err)
	}
	if exists {
		data, err := h.ReadFile(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("secrets: read %s: %w", p, err)
		}
		return data, nil
	}

	material, err := generate(kind)
	if err != nil {
		return nil, fmt.Errorf("secrets: generate %s/%s/%s: %w", pkg, kind, name, err)
	}

	if err := h.Mkdir(ctx, s.dir(pkg, kind), 0700); err != nil {
		return nil, fmt.Errorf("secrets: create dir for %s: %w", p, err)
	}
	if err := h.WriteFile(ctx, p, material, 0600); err != nil {
		return nil, fmt.Errorf("secrets: write %s: %w", p, err)
	}
	return material, nil
}

func generate(kind Kind) ([]byte, error) {
	switch kind {
	case Password:
		buf := make([]byte, 24)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		return []byte(base64.RawURLEncoding.EncodeToString(buf)), nil
	case Key:
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("unknown secret kind %q", kind)
	}
}
