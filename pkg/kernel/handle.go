package kernel

import (
	"github.com/agentoven/kernel/pkg/agent"
)

// runtimeHandle is the Go realization of the weak-reference discipline
// described in SPEC_FULL.md §4.6. Go has no direct analogue of Rust's
// Arc/Weak<RwLock<T>> pair, so instead of a true weak pointer this holds a
// strong pointer to the runtime plus the runtime's own closed flag: once
// Close() flips that flag, TryUpgrade starts returning (nil, false) even
// though the Go pointer itself remains valid. This reproduces the
// observable contract — every handle's try-upgrade returns none once the
// runtime has been torn down — without requiring Go's GC-driven weak
// package.
type runtimeHandle struct {
	runtime   *AgentRuntime
	agentID   agent.ID
	agentName string
}

func newRuntimeHandle(rt *AgentRuntime) *runtimeHandle {
	return &runtimeHandle{
		runtime:   rt,
		agentID:   rt.agentID,
		agentName: rt.character.Name,
	}
}

func (h *runtimeHandle) AgentID() agent.ID { return h.agentID }
func (h *runtimeHandle) AgentName() string { return h.agentName }

// TryUpgrade returns the live runtime unless it has been closed.
func (h *runtimeHandle) TryUpgrade() (agent.Runtime, bool) {
	if h.runtime.isClosed() {
		return nil, false
	}
	return h.runtime, true
}

var _ agent.RuntimeHandle = (*runtimeHandle)(nil)
