package agent

import "context"

// RuntimeHandle is the opaque, weakly-held reference plugin code uses to
// call back into the runtime that owns it (settings, model dispatch,
// memory persistence) without holding a strong reference that would keep
// the runtime alive past its own shutdown. See SPEC_FULL.md §4.6.
//
// Defined here (not in pkg/kernel) so Action/Provider/Evaluator/Service
// implementations — which live in plugin packages that must not import the
// kernel — can accept it as a parameter type.
type RuntimeHandle interface {
	// AgentID returns the owning runtime's agent id, valid even after the
	// runtime has been torn down (cached at handle construction).
	AgentID() ID
	// AgentName returns the owning runtime's character name, same caching
	// guarantee as AgentID.
	AgentName() string
	// TryUpgrade returns a live Runtime and true if the runtime has not
	// been closed, or (nil, false) otherwise. Callers MUST tolerate false.
	TryUpgrade() (Runtime, bool)
}

// Runtime is the subset of runtime operations exposed to plugin code once
// a RuntimeHandle has been upgraded. The concrete implementation lives in
// pkg/kernel; this interface exists so pkg/agent can describe capability
// contracts without importing pkg/kernel.
type Runtime interface {
	GetSetting(key string) (any, bool)
	SetSetting(key string, value any)
	GetSettingsWithPrefix(prefix string) map[string]string
	GetService(serviceType string) (Service, bool)
	ComposeState(ctx context.Context, message *Memory, includeList []string, onlyInclude, skipCache bool) (*State, error)
	InvokeModel(ctx context.Context, capability ModelType, params GenerateTextParams) (string, error)
	Adapter() (StorageAdapter, bool)
}

// ActionCallback lets an action handler hand back an outbound Memory
// through a side channel distinct from its ActionResult return value
// (mirrors the "callback" parameter in the original message-handler
// contract).
type ActionCallback func(content Content) error

// CycleOptions are the per-invocation knobs accepted by process_message.
type CycleOptions struct {
	MaxRetries             int
	TimeoutMS              int64
	UseMultiStep           bool
	MaxMultiStepIterations int
	// StopExpression, if set, is a boolean expr-lang expression evaluated
	// against the post-action State (values/data) at the end of each
	// multi-step iteration; a true result stops re-entry alongside the
	// existing ActionResult.Data["stop"] signal.
	StopExpression string
}

// ActionResult is the observable effect of invoking an Action.
type ActionResult struct {
	ActionName string
	Text       string
	Values     map[string]string
	Data       map[string]any
	Success    bool
	Error      string
}

// Action is a named, side-effectful operation the agent may invoke in
// response to a message.
type Action interface {
	Name() string
	Description() string
	// Similes are alternate names the decision output may use to refer to
	// this action (kept small and optional; most actions have none).
	Similes() []string
	Validate(ctx context.Context, handle RuntimeHandle, message *Memory, state *State) (bool, error)
	Handler(ctx context.Context, handle RuntimeHandle, message *Memory, state *State, opts CycleOptions, callback ActionCallback) (*ActionResult, error)
}

// Provider is a named, read-only contributor to State for a given message.
// Dynamic providers self-declare Dynamic() == true so the state composer
// bypasses the cache when they participate (SPEC_FULL.md §4.4).
type Provider interface {
	Name() string
	Description() string
	// Position orders providers ascending in the state composer; ties
	// are broken by registration order.
	Position() int
	Dynamic() bool
	Get(ctx context.Context, handle RuntimeHandle, message *Memory, state *State) (ProviderResult, error)
}

// Evaluator is a named post-turn observer invoked after action execution.
// Evaluators are side-effectful only — their return value carries no
// control flow back into the cycle.
type Evaluator interface {
	Name() string
	Description() string
	// AlwaysRun, if true, skips the Validate gate.
	AlwaysRun() bool
	Validate(ctx context.Context, handle RuntimeHandle, message *Memory, state *State) (bool, error)
	Handler(ctx context.Context, handle RuntimeHandle, message *Memory, state *State, didRespond bool, responses []*Memory) error
}

// Service is a long-lived plugin-contributed capability (e.g. a message
// transport) keyed by its type name in the registry.
type Service interface {
	Type() string
	Start(ctx context.Context, handle RuntimeHandle) error
	Stop(ctx context.Context) error
}
