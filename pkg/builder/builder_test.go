package builder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/foundry/pkg/builder"
	"github.com/cuemby/foundry/pkg/catalog"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/kinds"
	"github.com/cuemby/foundry/pkg/registry"
	"github.com/cuemby/foundry/pkg/requirement"
)

func newContext(t *testing.T) (*builder.Context, host.Host) {
	t.Helper()
	reg := catalog.NewRegistry()
	kinds.Register(reg)
	dirs := registry.New("/srv/foundry", reg)
	h := host.NewMemory()
	ctx := builder.New(context.Background(), h, reg, dirs, 1).WithPackage("demo")
	return ctx, h
}

func TestAddNodeRejectsUnsupportedKind(t *testing.T) {
	bctx, _ := newContext(t)
	_, err := bctx.AddNode(&unregisteredKind{}, nil)
	require.Error(t, err)
	var unsupported *catalog.ErrUnsupportedKind
	require.ErrorAs(t, err, &unsupported)
}

func TestAddNodeAppendsToSharedGraph(t *testing.T) {
	bctx, _ := newContext(t)
	root, err := bctx.AddNode(&kinds.Directory{Path: "/config/demo", Mode: 0755}, nil)
	require.NoError(t, err)
	_, err = bctx.AddNode(&kinds.FileWithContents{Path: "/config/demo/a.txt", Contents: []byte("a"), Mode: 0644}, []int{root})
	require.NoError(t, err)

	assert.Equal(t, 2, bctx.Graph().Len())
}

func TestSecretIsScopedToPackage(t *testing.T) {
	bctx, h := newContext(t)
	material, err := bctx.Secret("password", "db")
	require.NoError(t, err)
	assert.NotEmpty(t, material)

	exists, err := h.PathExists(context.Background(), "/srv/foundry/secrets/demo/password/db")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestParseManifestResolvesDependsOnByName(t *testing.T) {
	data := []byte(`
package: demo
nodes:
  - name: root
    directory:
      path: /config/demo
      mode: 493
  - name: message
    depends_on: [root]
    file:
      path: /config/demo/message.txt
      contents: "Hello, world!"
      mode: 420
`)
	manifest, err := builder.ParseManifest(data)
	require.NoError(t, err)
	assert.Equal(t, "demo", manifest.Package)
	require.Len(t, manifest.Nodes, 2)

	bctx, _ := newContext(t)
	refs, err := manifest.Apply(bctx)
	require.NoError(t, err)
	assert.Equal(t, 2, bctx.Graph().Len())

	messageIdx := refs["message"]
	node := bctx.Graph().Node(messageIdx)
	assert.Equal(t, []int{refs["root"]}, node.Preconditions)
}

func TestParseManifestRejectsUnknownDependency(t *testing.T) {
	data := []byte(`
package: demo
nodes:
  - name: orphan
    depends_on: [nowhere]
    directory:
      path: /config/demo
      mode: 493
`)
	manifest, err := builder.ParseManifest(data)
	require.NoError(t, err)

	bctx, _ := newContext(t)
	_, err = manifest.Apply(bctx)
	assert.Error(t, err)
}

type unregisteredKind struct{}

func (unregisteredKind) Kind() string                                           { return "unregistered" }
func (unregisteredKind) Create(ctx context.Context, h host.Host) error          { return nil }
func (unregisteredKind) Modify(ctx context.Context, h host.Host) error          { return nil }
func (unregisteredKind) Delete(ctx context.Context, h host.Host) error          { return nil }
func (unregisteredKind) DeletePreExisting(ctx context.Context, h host.Host) error {
	return nil
}
func (unregisteredKind) HasBeenCreated(ctx context.Context, h host.Host) (bool, error) {
	return false, nil
}
func (unregisteredKind) Verify(ctx context.Context, h host.Host) error          { return nil }
func (unregisteredKind) Affects(other requirement.Requirement) bool            { return false }
func (unregisteredKind) SupportsModifications() bool                           { return false }
func (unregisteredKind) CanUndo() bool                                         { return false }
func (unregisteredKind) MayPreExist() bool                                     { return false }
