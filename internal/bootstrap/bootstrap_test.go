package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentoven/kernel/internal/storage/memstore"
	"github.com/agentoven/kernel/pkg/agent"
)

// fakeHandle is a minimal agent.RuntimeHandle/agent.Runtime double for
// exercising provider and action code without constructing a full kernel
// runtime.
type fakeHandle struct {
	agentID  agent.ID
	name     string
	settings map[string]string
	adapter  agent.StorageAdapter
	closed   bool
}

func newFakeHandle(t *testing.T) *fakeHandle {
	t.Helper()
	return &fakeHandle{
		agentID:  agent.NewID(),
		name:     "TestAgent",
		settings: map[string]string{},
		adapter:  memstore.New(""),
	}
}

func (h *fakeHandle) AgentID() agent.ID   { return h.agentID }
func (h *fakeHandle) AgentName() string   { return h.name }
func (h *fakeHandle) TryUpgrade() (agent.Runtime, bool) {
	if h.closed {
		return nil, false
	}
	return h, true
}

func (h *fakeHandle) GetSetting(key string) (any, bool) {
	v, ok := h.settings[key]
	return v, ok
}
func (h *fakeHandle) SetSetting(key string, value any) {
	if s, ok := value.(string); ok {
		h.settings[key] = s
	}
}
func (h *fakeHandle) GetSettingsWithPrefix(prefix string) map[string]string {
	out := map[string]string{}
	for k, v := range h.settings {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			out[k] = v
		}
	}
	return out
}
func (h *fakeHandle) GetService(string) (agent.Service, bool) { return nil, false }
func (h *fakeHandle) ComposeState(ctx context.Context, message *agent.Memory, includeList []string, onlyInclude, skipCache bool) (*agent.State, error) {
	return agent.NewState(), nil
}
func (h *fakeHandle) InvokeModel(ctx context.Context, capability agent.ModelType, params agent.GenerateTextParams) (string, error) {
	return "", nil
}
func (h *fakeHandle) Adapter() (agent.StorageAdapter, bool) { return h.adapter, true }

func TestTimeProvider(t *testing.T) {
	p := timeProvider{}
	result, err := p.Get(context.Background(), newFakeHandle(t), &agent.Memory{}, agent.NewState())
	require.NoError(t, err)
	require.NotNil(t, result.Text)
	assert.Contains(t, *result.Text, "UTC")
}

func TestCharacterProvider(t *testing.T) {
	h := newFakeHandle(t)
	h.settings["character.bio"] = "a friendly test agent"
	h.settings["character.lore"] = "created for tests"
	h.settings["character.style"] = "concise"
	h.settings["character.adjectives"] = "helpful"
	h.settings["character.topics"] = "testing"

	p := characterProvider{}
	result, err := p.Get(context.Background(), h, &agent.Memory{}, agent.NewState())
	require.NoError(t, err)
	assert.Contains(t, *result.Text, "a friendly test agent")
	assert.Equal(t, "TestAgent", result.Values["AGENT_NAME"])
}

func TestCharacterProvider_HandleNotUpgradable(t *testing.T) {
	h := newFakeHandle(t)
	h.closed = true

	p := characterProvider{}
	result, err := p.Get(context.Background(), h, &agent.Memory{}, agent.NewState())
	require.NoError(t, err)
	assert.Contains(t, *result.Text, "unavailable")
}

func TestRecentMessagesProvider_EmptyHistory(t *testing.T) {
	h := newFakeHandle(t)
	p := newRecentMessagesProvider(5)

	msg := &agent.Memory{RoomID: agent.NewID(), Content: agent.Content{Text: "hello"}}
	result, err := p.Get(context.Background(), h, msg, agent.NewState())
	require.NoError(t, err)
	assert.Contains(t, *result.Text, "hello")
}

func TestRecentMessagesProvider_DefaultsCountWhenNonPositive(t *testing.T) {
	p := newRecentMessagesProvider(0)
	assert.Equal(t, 10, p.count)
	p = newRecentMessagesProvider(-3)
	assert.Equal(t, 10, p.count)
}

func TestReplyAction(t *testing.T) {
	state := agent.NewState()
	state.Values["text"] = "hello there"

	var captured agent.Content
	callback := func(c agent.Content) error {
		captured = c
		return nil
	}

	a := replyAction{}
	ok, err := a.Validate(context.Background(), newFakeHandle(t), &agent.Memory{}, state)
	require.NoError(t, err)
	assert.True(t, ok)

	result, err := a.Handler(context.Background(), newFakeHandle(t), &agent.Memory{Content: agent.Content{Source: "test"}}, state, agent.CycleOptions{}, callback)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "hello there", captured.Text)
	assert.Equal(t, "test", captured.Source)
}

func TestEchoAction(t *testing.T) {
	a := echoAction{}
	msg := &agent.Memory{Content: agent.Content{Text: "ping"}}

	ok, err := a.Validate(context.Background(), newFakeHandle(t), msg, agent.NewState())
	require.NoError(t, err)
	assert.True(t, ok)

	empty := &agent.Memory{Content: agent.Content{Text: ""}}
	ok, err = a.Validate(context.Background(), newFakeHandle(t), empty, agent.NewState())
	require.NoError(t, err)
	assert.False(t, ok)

	var captured agent.Content
	result, err := a.Handler(context.Background(), newFakeHandle(t), msg, agent.NewState(), agent.CycleOptions{}, func(c agent.Content) error {
		captured = c
		return nil
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "ping", captured.Text)
}

func TestBootstrapPlugin_Assembles(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	assert.Equal(t, "bootstrap", p.Name())
	assert.Len(t, p.Actions(), 2)
	assert.Len(t, p.Providers(), 3)
	assert.Len(t, p.Evaluators(), 1)
}

func TestReflectionEvaluator_GatesOnDidRespond(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	ev := p.Evaluators()[0]

	h := newFakeHandle(t)

	noReplyState := agent.NewState()
	noReplyState.Data["didRespond"] = false
	matched, err := ev.Validate(context.Background(), h, &agent.Memory{}, noReplyState)
	require.NoError(t, err)
	assert.False(t, matched)

	repliedState := agent.NewState()
	repliedState.Data["didRespond"] = true
	matched, err = ev.Validate(context.Background(), h, &agent.Memory{}, repliedState)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestReflectionEvaluator_RecordsOnResponse(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	ev := p.Evaluators()[0]

	h := newFakeHandle(t)
	msg := &agent.Memory{RoomID: agent.NewID()}

	// Mirrors what runEvaluators does: populate state.Data before gating
	// Validate, then invoke Handler once it passes.
	state := agent.NewState()
	state.Data["didRespond"] = true
	matched, err := ev.Validate(context.Background(), h, msg, state)
	require.NoError(t, err)
	require.True(t, matched)

	err = ev.Handler(context.Background(), h, msg, state, true, nil)
	require.NoError(t, err)
	assert.Equal(t, msg.RoomID.String(), h.settings["reflection.lastRoomID"])
}
