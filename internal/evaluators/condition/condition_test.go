package condition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentoven/kernel/pkg/agent"
)

func TestNew_CompileError(t *testing.T) {
	_, err := New("bad", "desc", "values.x ==", false, func(context.Context, agent.RuntimeHandle, *agent.Memory, *agent.State, bool, []*agent.Memory) error {
		return nil
	})
	require.Error(t, err)
}

func TestValidate_MatchesOnValues(t *testing.T) {
	ev, err := New("greeting", "matches when userName is alice", `values["userName"] == "alice"`, false, nilHandler)
	require.NoError(t, err)

	state := agent.NewState()
	state.Values["userName"] = "alice"

	matched, err := ev.Validate(context.Background(), nil, nil, state)
	require.NoError(t, err)
	assert.True(t, matched)

	state.Values["userName"] = "bob"
	matched, err = ev.Validate(context.Background(), nil, nil, state)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestValidate_NilStateDoesNotPanic(t *testing.T) {
	ev, err := New("always-false", "desc", `values["missing"] == "x"`, false, nilHandler)
	require.NoError(t, err)

	matched, err := ev.Validate(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestValidate_NonBoolRuntimeValueIsRejected(t *testing.T) {
	// data is map[string]any, so expr can't statically type this expression
	// and compilation succeeds; the bool check has to happen at runtime.
	ev, err := New("not-bool", "desc", `data["score"]`, false, nilHandler)
	require.NoError(t, err)

	state := agent.NewState()
	state.Data["score"] = 0.8

	_, err = ev.Validate(context.Background(), nil, nil, state)
	require.Error(t, err)
}

func TestHandler_Invoked(t *testing.T) {
	called := false
	ev, err := New("reflect", "desc", "didRespond == true", false, func(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State, didRespond bool, responses []*agent.Memory) error {
		called = true
		assert.True(t, didRespond)
		return nil
	})
	require.NoError(t, err)

	err = ev.Handler(context.Background(), nil, nil, agent.NewState(), true, nil)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestAlwaysRun(t *testing.T) {
	ev, err := New("n", "d", "true", true, nilHandler)
	require.NoError(t, err)
	assert.True(t, ev.AlwaysRun())
}

func nilHandler(context.Context, agent.RuntimeHandle, *agent.Memory, *agent.State, bool, []*agent.Memory) error {
	return nil
}
