package kernel

import (
	"context"

	"github.com/agentoven/kernel/pkg/agent"
)

// Emit fires all handlers registered for event concurrently, discarding
// their results (SPEC_FULL.md §6.4). It returns once every handler has
// been dispatched, not once every handler has finished.
func (rt *AgentRuntime) Emit(ctx context.Context, event agent.EventType, payload agent.EventPayload) {
	for _, h := range rt.events.handlersFor(event) {
		go h(ctx, payload)
	}
}

// On registers handler for event, for use by plugin Init code.
func (rt *AgentRuntime) On(event agent.EventType, handler agent.EventHandler) {
	rt.events.register(event, handler)
}
