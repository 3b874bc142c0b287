package kernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentoven/kernel/internal/storage/memstore"
	"github.com/agentoven/kernel/pkg/agent"
)

type countingProvider struct {
	name    string
	dynamic bool
	calls   *int
}

func (p countingProvider) Name() string        { return p.name }
func (p countingProvider) Description() string { return p.name }
func (p countingProvider) Position() int       { return 0 }
func (p countingProvider) Dynamic() bool       { return p.dynamic }
func (p countingProvider) Get(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State) (agent.ProviderResult, error) {
	*p.calls++
	text := p.name
	return agent.ProviderResult{Text: &text}, nil
}

type providerOnlyPlugin struct {
	agent.BasePlugin
	providers []agent.Provider
}

func (p providerOnlyPlugin) Name() string               { return "test-providers" }
func (p providerOnlyPlugin) Description() string        { return "test providers" }
func (p providerOnlyPlugin) Providers() []agent.Provider { return p.providers }

func newTestRuntime(t *testing.T, providers ...agent.Provider) *AgentRuntime {
	t.Helper()
	rt, err := New(context.Background(), RuntimeOpts{
		Character: agent.Character{Name: "Tester"},
		Adapter:   memstore.New(""),
		Plugins:   []agent.Plugin{providerOnlyPlugin{providers: providers}},
	})
	require.NoError(t, err)
	return rt
}

func TestComposeState_CachesStaticProviders(t *testing.T) {
	calls := 0
	rt := newTestRuntime(t, countingProvider{name: "static", dynamic: false, calls: &calls})

	msg := &agent.Memory{ID: agent.NewID(), RoomID: agent.NewID()}

	_, err := rt.ComposeState(context.Background(), msg, nil, false, false)
	require.NoError(t, err)
	_, err = rt.ComposeState(context.Background(), msg, nil, false, false)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second call for the same message must be served from cache")
}

func TestComposeState_DynamicProviderBypassesCache(t *testing.T) {
	calls := 0
	rt := newTestRuntime(t, countingProvider{name: "dyn", dynamic: true, calls: &calls})

	msg := &agent.Memory{ID: agent.NewID(), RoomID: agent.NewID()}

	_, err := rt.ComposeState(context.Background(), msg, nil, false, false)
	require.NoError(t, err)
	_, err = rt.ComposeState(context.Background(), msg, nil, false, false)
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "a dynamic provider must re-run on every call")
}

func TestComposeState_SkipCacheForcesRecompute(t *testing.T) {
	calls := 0
	rt := newTestRuntime(t, countingProvider{name: "static", dynamic: false, calls: &calls})

	msg := &agent.Memory{ID: agent.NewID(), RoomID: agent.NewID()}

	_, err := rt.ComposeState(context.Background(), msg, nil, false, false)
	require.NoError(t, err)
	_, err = rt.ComposeState(context.Background(), msg, nil, false, true)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestComposeState_ExcludeList(t *testing.T) {
	calls := 0
	rt := newTestRuntime(t, countingProvider{name: "excluded", dynamic: false, calls: &calls})

	msg := &agent.Memory{ID: agent.NewID(), RoomID: agent.NewID()}
	state, err := rt.ComposeState(context.Background(), msg, []string{"!EXCLUDED"}, false, true)
	require.NoError(t, err)

	assert.Equal(t, 0, calls)
	_, ok := state.Values["EXCLUDED"]
	assert.False(t, ok)
}

func TestComposeState_OnlyIncludeList(t *testing.T) {
	included := 0
	skipped := 0
	rt := newTestRuntime(t,
		countingProvider{name: "wanted", dynamic: false, calls: &included},
		countingProvider{name: "unwanted", dynamic: false, calls: &skipped},
	)

	msg := &agent.Memory{ID: agent.NewID(), RoomID: agent.NewID()}
	state, err := rt.ComposeState(context.Background(), msg, []string{"WANTED"}, true, true)
	require.NoError(t, err)

	assert.Equal(t, 1, included)
	assert.Equal(t, 0, skipped)
	assert.Equal(t, "wanted", state.Values["WANTED"])
}
