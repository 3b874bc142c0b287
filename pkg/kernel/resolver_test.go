package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentoven/kernel/pkg/agent"
)

type stubPlugin struct {
	agent.BasePlugin
	name         string
	description  string
	dependencies []string
	testDeps     []string
	priority     int
}

func (p stubPlugin) Name() string             { return p.name }
func (p stubPlugin) Description() string      { return p.description }
func (p stubPlugin) Dependencies() []string    { return p.dependencies }
func (p stubPlugin) TestDependencies() []string { return p.testDeps }
func (p stubPlugin) Priority() int             { return p.priority }

func newStub(name string, deps ...string) stubPlugin {
	return stubPlugin{name: name, description: name + " plugin", dependencies: deps}
}

func namesOf(plugins []agent.Plugin) []string {
	out := make([]string, len(plugins))
	for i, p := range plugins {
		out[i] = p.Name()
	}
	return out
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

func TestResolvePluginDependencies_LinearChain(t *testing.T) {
	plugins := map[string]agent.Plugin{
		"a": newStub("a"),
		"b": newStub("b", "a"),
		"c": newStub("c", "b"),
	}
	resolved, err := ResolvePluginDependencies(plugins, false)
	require.NoError(t, err)
	names := namesOf(resolved)
	require.Len(t, names, 3)
	assert.Less(t, indexOf(names, "a"), indexOf(names, "b"))
	assert.Less(t, indexOf(names, "b"), indexOf(names, "c"))
}

func TestResolvePluginDependencies_Diamond(t *testing.T) {
	plugins := map[string]agent.Plugin{
		"base":  newStub("base"),
		"left":  newStub("left", "base"),
		"right": newStub("right", "base"),
		"top":   newStub("top", "left", "right"),
	}
	resolved, err := ResolvePluginDependencies(plugins, false)
	require.NoError(t, err)
	names := namesOf(resolved)
	require.Len(t, names, 4)
	assert.Less(t, indexOf(names, "base"), indexOf(names, "left"))
	assert.Less(t, indexOf(names, "base"), indexOf(names, "right"))
	assert.Less(t, indexOf(names, "left"), indexOf(names, "top"))
	assert.Less(t, indexOf(names, "right"), indexOf(names, "top"))
}

func TestResolvePluginDependencies_Cycle(t *testing.T) {
	plugins := map[string]agent.Plugin{
		"a": newStub("a", "b"),
		"b": newStub("b", "a"),
	}
	_, err := ResolvePluginDependencies(plugins, false)
	require.Error(t, err)
}

func TestResolvePluginDependencies_MissingDependency(t *testing.T) {
	plugins := map[string]agent.Plugin{
		"a": newStub("a", "missing"),
	}
	_, err := ResolvePluginDependencies(plugins, false)
	require.Error(t, err)
}

func TestResolvePluginDependencies_TestDepsHonoredOnlyWhenRequested(t *testing.T) {
	a := newStub("a")
	a.testDeps = []string{"testonly"}
	plugins := map[string]agent.Plugin{
		"a":        a,
		"testonly": newStub("testonly"),
	}

	// Both plugins are in the input map, so both are always returned; the
	// test-dependency edge only constrains their order when requested.
	resolved, err := ResolvePluginDependencies(plugins, false)
	require.NoError(t, err)
	names := namesOf(resolved)
	require.Len(t, names, 2)
	assert.Less(t, indexOf(names, "a"), indexOf(names, "testonly")) // edge ignored: plain sorted-root order

	resolved, err = ResolvePluginDependencies(plugins, true)
	require.NoError(t, err)
	names = namesOf(resolved)
	assert.Len(t, names, 2)
	assert.Less(t, indexOf(names, "testonly"), indexOf(names, "a"))
}

func TestResolvePluginDependencies_PriorityTieBreakRespectsEdges(t *testing.T) {
	// b depends on a; b has lower priority than a, but the resolver must
	// never reorder b before a despite the priority tie-break pass.
	a := newStub("a")
	a.priority = 10
	b := newStub("b", "a")
	b.priority = 0

	plugins := map[string]agent.Plugin{"a": a, "b": b}
	resolved, err := ResolvePluginDependencies(plugins, false)
	require.NoError(t, err)
	names := namesOf(resolved)
	assert.Less(t, indexOf(names, "a"), indexOf(names, "b"))
}

func TestResolvePluginDependencies_PriorityTieBreakAmongIndependents(t *testing.T) {
	low := newStub("low")
	low.priority = -5
	high := newStub("high")
	high.priority = 5

	plugins := map[string]agent.Plugin{"high": high, "low": low}
	resolved, err := ResolvePluginDependencies(plugins, false)
	require.NoError(t, err)
	names := namesOf(resolved)
	assert.Less(t, indexOf(names, "low"), indexOf(names, "high"))
}

func TestValidatePlugin_RequiresNameAndDescription(t *testing.T) {
	err := ValidatePlugin(stubPlugin{})
	require.Error(t, err)

	err = ValidatePlugin(newStub("named"))
	require.NoError(t, err)
}

func TestLoadPlugins_EmptyList(t *testing.T) {
	resolved, err := LoadPlugins(nil, false)
	require.NoError(t, err)
	assert.Empty(t, resolved)
}
