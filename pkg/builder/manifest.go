package builder

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/foundry/pkg/kinds"
)

// Manifest is a small YAML declarative format for describing a package's
// nodes without writing Go: each entry names itself so later entries can
// depend on it by name. This is not the path-typed, sandboxed builder DSL
// the core's contract leaves external — it is one convenient, concrete
// front end a deployment can use instead of writing its own builder.Context
// calls directly.
type Manifest struct {
	Package string         `yaml:"package"`
	Nodes   []ManifestNode `yaml:"nodes"`
}

// ManifestNode is one entry: exactly one of Directory/File should be set.
// The other kinds in pkg/kinds have no manifest form.
type ManifestNode struct {
	Name      string   `yaml:"name"`
	DependsOn []string `yaml:"depends_on,omitempty"`

	Directory *ManifestDirectory `yaml:"directory,omitempty"`
	File      *ManifestFile      `yaml:"file,omitempty"`
}

type ManifestDirectory struct {
	Path string `yaml:"path"`
	Mode uint32 `yaml:"mode"`
}

type ManifestFile struct {
	Path     string `yaml:"path"`
	Contents string `yaml:"contents"`
	Mode     uint32 `yaml:"mode"`
}

// ParseManifest decodes YAML manifest data.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}

// Apply adds every node in m to ctx (scoped to m.Package), resolving
// depends_on by name, and returns the NodeRef for every named entry in
// case a caller wants to depend on this package's nodes from another one.
func (m *Manifest) Apply(ctx *Context) (map[string]NodeRef, error) {
	pctx := ctx.WithPackage(m.Package)
	refs := make(map[string]NodeRef, len(m.Nodes))

	for _, n := range m.Nodes {
		deps := make([]NodeRef, 0, len(n.DependsOn))
		for _, depName := range n.DependsOn {
			ref, ok := refs[depName]
			if !ok {
				return nil, fmt.Errorf("manifest: node %q depends on unknown node %q", n.Name, depName)
			}
			deps = append(deps, ref)
		}

		var ref NodeRef
		var err error
		switch {
		case n.Directory != nil:
			ref, err = pctx.AddNode(&kinds.Directory{Path: n.Directory.Path, Mode: n.Directory.Mode}, deps)
		case n.File != nil:
			ref, err = pctx.AddNode(&kinds.FileWithContents{Path: n.File.Path, Contents: []byte(n.File.Contents), Mode: n.File.Mode}, deps)
		default:
			err = fmt.Errorf("manifest: node %q has no kind set", n.Name)
		}
		if err != nil {
			return nil, err
		}
		if n.Name != "" {
			refs[n.Name] = ref
		}
	}
	return refs, nil
}
