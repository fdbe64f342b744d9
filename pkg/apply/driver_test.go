package apply_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/foundry/pkg/apply"
	"github.com/cuemby/foundry/pkg/graph"
	"github.com/cuemby/foundry/pkg/host"
	"github.com/cuemby/foundry/pkg/kinds"
	"github.com/cuemby/foundry/pkg/requirement"
)

func graphOf(t *testing.T, reqs ...requirement.Requirement) *graph.Graph[graph.Applied] {
	t.Helper()
	g := graph.New[graph.Applied]()
	for _, r := range reqs {
		if _, err := g.Add(r, nil); err != nil {
			t.Fatalf("build test graph: %v", err)
		}
	}
	return g
}

func TestRunCreatesInDependencyOrder(t *testing.T) {
	h := host.NewMemory()
	ctx := context.Background()

	seq := &apply.Sequence{
		Todo: []apply.TodoEntry{
			{Source: 0, Requirement: &kinds.Directory{Path: "/config/test", Mode: 0755}},
			{Source: 1, Requirement: &kinds.FileWithContents{Path: "/config/test/message.txt", Contents: []byte("Hello, world!"), Mode: 0644}},
		},
	}

	result, err := apply.Run(ctx, h, seq, apply.AlwaysRefuse)
	require.NoError(t, err)
	assert.Empty(t, result.PreExisting)

	exists, err := h.PathExists(ctx, "/config/test/message.txt")
	require.NoError(t, err)
	assert.True(t, exists)

	data, err := h.ReadFile(ctx, "/config/test/message.txt")
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!", string(data))
}

func TestRunRefusesUnexpectedPreExistingTarget(t *testing.T) {
	h := host.NewMemory()
	ctx := context.Background()
	require.NoError(t, h.WriteFile(ctx, "/config/test/message.txt", []byte("already here"), 0644))

	seq := &apply.Sequence{
		Todo: []apply.TodoEntry{
			{Source: 0, Requirement: &kinds.FileWithContents{Path: "/config/test/message.txt", Contents: []byte("mine now"), Mode: 0644}},
		},
	}

	_, err := apply.Run(ctx, h, seq, apply.AlwaysRefuse)
	require.Error(t, err)

	var runErr *apply.RunError
	require.ErrorAs(t, err, &runErr)
	assert.Equal(t, apply.PhaseTodo, runErr.Info.Phase)
}

func TestRunRecordsPreExistingWhenKindAllowsIt(t *testing.T) {
	h := host.NewMemory()
	ctx := context.Background()
	require.NoError(t, h.Mkdir(ctx, "/config/test", 0755))

	seq := &apply.Sequence{
		Todo: []apply.TodoEntry{
			{Source: 0, Requirement: &kinds.Directory{Path: "/config/test", Mode: 0755}},
		},
	}

	result, err := apply.Run(ctx, h, seq, apply.AlwaysRefuse)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, result.PreExisting)
}

func TestRevertUndoesTodoPrefixAndRestoresPrev(t *testing.T) {
	h := host.NewMemory()
	ctx := context.Background()

	prev := graphOf(t, &kinds.Directory{Path: "/config/keep", Mode: 0755})

	seq := &apply.Sequence{
		Todo: []apply.TodoEntry{
			{Source: 0, Requirement: &kinds.Directory{Path: "/config/new", Mode: 0755}},
			{Source: 1, Requirement: &kinds.Command{Name: "boom", CheckArgv: []string{"false"}, CreateArgv: []string{"false"}, Undoable: true}},
		},
	}
	h.Commands["false"] = host.CommandResult{ExitCode: 1}

	_, err := apply.Run(ctx, h, seq, apply.AlwaysRefuse)
	require.Error(t, err)
	var runErr *apply.RunError
	require.ErrorAs(t, err, &runErr)

	require.NoError(t, apply.Revert(ctx, h, seq, runErr.Info, prev))

	newExists, err := h.PathExists(ctx, "/config/new")
	require.NoError(t, err)
	assert.False(t, newExists, "directory created before the failure should have been torn down")

	keepExists, err := h.PathExists(ctx, "/config/keep")
	require.NoError(t, err)
	assert.True(t, keepExists, "prev's directory should have been restored")
}
