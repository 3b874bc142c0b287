package kernel

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/pkg/agent"
)

const lastThoughtValueKey = "CONTEXT_LAST_THOUGHT"

// composeState implements the state composer contract (SPEC_FULL.md §4.4).
// handle is the RuntimeHandle passed to every provider invocation.
func composeState(
	ctx context.Context,
	rt *AgentRuntime,
	handle agent.RuntimeHandle,
	message *agent.Memory,
	includeList []string,
	onlyInclude bool,
	skipCache bool,
) (*agent.State, error) {
	cacheKey := stateCacheKey(message)

	if !skipCache {
		if cached, ok := rt.stateCache.get(cacheKey); ok {
			return cached, nil
		}
	}

	state := agent.NewState()
	excludeSet, includeSet := splitIncludeList(includeList)

	for _, provider := range rt.providers.ordered() {
		upper := strings.ToUpper(provider.Name())
		if onlyInclude && len(includeSet) > 0 && !includeSet[upper] {
			continue
		}
		if excludeSet[upper] {
			continue
		}

		result, err := provider.Get(ctx, handle, message, state)
		if err != nil {
			log.Warn().Err(err).Str("provider", provider.Name()).Msg("provider failed, contribution dropped")
			continue
		}

		if result.Text != nil {
			state.SetValue(upper, *result.Text)
		}
		for k, v := range result.Values {
			state.SetValue(k, v)
		}
		for k, v := range result.Data {
			state.SetData(k, v)
		}

		if provider.Dynamic() {
			skipCache = true
		}
	}

	enrichWithLastThoughts(rt, message, state)

	if !skipCache {
		rt.stateCache.set(cacheKey, state)
	}

	return state, nil
}

// stateCacheKey is the composite cache key: message id and room id
// (SPEC_FULL.md §4.4 step 1).
func stateCacheKey(message *agent.Memory) string {
	return fmt.Sprintf("%s:%s", message.ID, message.RoomID)
}

// splitIncludeList separates an include_list into its plain uppercase
// names (the allow-list when only_include is set) and its "!NAME"
// exclusions, which apply regardless of only_include.
func splitIncludeList(includeList []string) (exclude, include map[string]bool) {
	exclude = make(map[string]bool)
	include = make(map[string]bool)
	for _, raw := range includeList {
		name := strings.ToUpper(raw)
		if strings.HasPrefix(name, "!") {
			exclude[strings.TrimPrefix(name, "!")] = true
			continue
		}
		include[name] = true
	}
	return exclude, include
}

// enrichWithLastThoughts folds a summary of recent "last thoughts" read
// from settings under a room-prefixed key into the composed state
// (SPEC_FULL.md §4.4 step 4).
func enrichWithLastThoughts(rt *AgentRuntime, message *agent.Memory, state *agent.State) {
	prefix := fmt.Sprintf("ui:lastThought:%s:", message.RoomID)
	entries := rt.settings.withPrefix(prefix)
	if len(entries) == 0 {
		return
	}
	thoughts := make([]string, 0, len(entries))
	for _, v := range entries {
		thoughts = append(thoughts, v)
	}
	state.SetValue(lastThoughtValueKey, strings.Join(thoughts, " "))
}
