package engine_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r-Techsupport/turingbot/internal/engine"
)

// stubConfig is a ConfigProvider over a plain map.
type stubConfig map[string]*engine.ModuleConfig

func (s stubConfig) Module(name string) (*engine.ModuleConfig, bool) {
	cfg, ok := s[name]
	return cfg, ok
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func enabledConfig(names ...string) stubConfig {
	cfg := stubConfig{}
	for _, n := range names {
		cfg[n] = &engine.ModuleConfig{Enabled: true}
	}
	return cfg
}

func TestRegisterMissingConfigDisablesRoot(t *testing.T) {
	tree := engine.NewTree(stubConfig{}, quietLogger())
	root := engine.NewNode(engine.NodeSpec{Name: "ghost"})

	err := tree.Register(root)
	require.ErrorIs(t, err, engine.ErrConfigurationMissing)
	assert.False(t, root.Enabled())

	// The root is still registered, just permanently disabled.
	res, ok := tree.Resolve([]string{"ghost"})
	require.True(t, ok)
	assert.Equal(t, root, res.Node)
}

func TestRegisterReadsEnabledFlagAndPolicy(t *testing.T) {
	policy := &engine.Policy{Capabilities: []string{"kick"}}
	tree := engine.NewTree(stubConfig{
		"mod": {Enabled: true, Permissions: policy},
		"off": {Enabled: false},
	}, quietLogger())

	mod := engine.NewNode(engine.NodeSpec{Name: "mod"})
	require.NoError(t, tree.Register(mod))
	assert.True(t, mod.Enabled())
	assert.Equal(t, policy, mod.Policy())

	off := engine.NewNode(engine.NodeSpec{Name: "off"})
	require.NoError(t, tree.Register(off))
	assert.False(t, off.Enabled())
}

func TestRegisterChildInheritsByReplacement(t *testing.T) {
	dep := engine.NewDependency("store", func(ctx context.Context) (any, error) { return nil, nil })
	tree := engine.NewTree(enabledConfig("mod"), quietLogger())

	root := engine.NewNode(engine.NodeSpec{Name: "mod", Deps: []*engine.Dependency{dep}})
	require.NoError(t, tree.Register(root))

	ownDep := engine.NewDependency("own", func(ctx context.Context) (any, error) { return nil, nil })
	child := engine.NewNode(engine.NodeSpec{Name: "kick", Deps: []*engine.Dependency{ownDep}})
	require.NoError(t, tree.RegisterChild(root, child))

	// Replacement, not union: the child's own dependency list is gone.
	require.Len(t, child.Dependencies(), 1)
	assert.Equal(t, dep, child.Dependencies()[0])
	assert.Equal(t, root.Config(), child.Config())
	assert.Equal(t, "mod", child.Root())
	assert.True(t, child.Enabled())
}

func TestDuplicateSiblingRejected(t *testing.T) {
	tree := engine.NewTree(enabledConfig("mod"), quietLogger())
	root := engine.NewNode(engine.NodeSpec{Name: "mod"})
	require.NoError(t, tree.Register(root))

	require.NoError(t, tree.RegisterChild(root, engine.NewNode(engine.NodeSpec{Name: "kick"})))
	err := tree.RegisterChild(root, engine.NewNode(engine.NodeSpec{Name: "KICK"}))
	require.ErrorIs(t, err, engine.ErrDuplicateCommand)

	dup := engine.NewNode(engine.NodeSpec{Name: "MOD"})
	require.ErrorIs(t, tree.Register(dup), engine.ErrDuplicateCommand)
}

func TestResolveWalksCaseInsensitive(t *testing.T) {
	tree := engine.NewTree(enabledConfig("mod"), quietLogger())
	root := engine.NewNode(engine.NodeSpec{Name: "mod"})
	require.NoError(t, tree.Register(root))
	kick := engine.NewNode(engine.NodeSpec{Name: "kick"})
	require.NoError(t, tree.RegisterChild(root, kick))

	res, ok := tree.Resolve([]string{"MoD", "Kick", "123", "spam"})
	require.True(t, ok)
	assert.Equal(t, kick, res.Node)
	assert.Equal(t, []string{"mod", "kick"}, res.Path)
	assert.Equal(t, []string{"123", "spam"}, res.Args)
}

func TestResolveStopsAtUnknownChild(t *testing.T) {
	tree := engine.NewTree(enabledConfig("mod"), quietLogger())
	root := engine.NewNode(engine.NodeSpec{Name: "mod"})
	require.NoError(t, tree.Register(root))
	require.NoError(t, tree.RegisterChild(root, engine.NewNode(engine.NodeSpec{Name: "kick"})))

	res, ok := tree.Resolve([]string{"mod", "nope", "x"})
	require.True(t, ok)
	assert.Equal(t, root, res.Node)
	assert.Equal(t, []string{"nope", "x"}, res.Args)
}

func TestResolveMissReturnsNone(t *testing.T) {
	tree := engine.NewTree(enabledConfig("ping"), quietLogger())
	require.NoError(t, tree.Register(engine.NewNode(engine.NodeSpec{Name: "ping"})))

	_, ok := tree.Resolve([]string{"png"})
	assert.False(t, ok)
	_, ok = tree.Resolve(nil)
	assert.False(t, ok)
}

func TestResolveIsIdempotent(t *testing.T) {
	tree := engine.NewTree(enabledConfig("mod"), quietLogger())
	root := engine.NewNode(engine.NodeSpec{Name: "mod"})
	require.NoError(t, tree.Register(root))
	require.NoError(t, tree.RegisterChild(root, engine.NewNode(engine.NodeSpec{Name: "kick"})))

	tokens := []string{"mod", "kick", "123"}
	first, ok1 := tree.Resolve(tokens)
	second, ok2 := tree.Resolve(tokens)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first, second)
}
