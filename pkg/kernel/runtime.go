package kernel

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/pkg/agent"
	"github.com/agentoven/kernel/pkg/resilience"
)

// RuntimeOpts configures AgentRuntime construction.
type RuntimeOpts struct {
	Character agent.Character
	Adapter   agent.StorageAdapter
	Plugins   []agent.Plugin
	// IncludeTestDeps requests test_dependencies() be honored by the
	// plugin resolver, for use in test harnesses.
	IncludeTestDeps bool
	// StateCacheMaxEntries and StateCacheTTL bound the state composer's
	// cache (decided open question, SPEC_FULL.md §4.4). Zero values mean
	// unbounded by that dimension. Defaults applied by New when both are
	// left at their zero value.
	StateCacheMaxEntries int
	StateCacheTTL        time.Duration
	// ModelCircuitBreaker configures the breaker guarding InvokeModel.
	// A zero value disables circuit-breaking.
	ModelCircuitBreaker resilience.CircuitBreakerConfig
}

const (
	defaultStateCacheMaxEntries = 10_000
	defaultStateCacheTTL        = 10 * time.Minute
)

// AgentRuntime is the kernel's runtime registry and message-cycle host
// (C3–C6). Its identity (agentID, character) is fixed at construction and
// never changes (SPEC_FULL.md §4.3).
type AgentRuntime struct {
	agentID   agent.ID
	character agent.Character
	adapter   agent.StorageAdapter

	actions       *actionRegistry
	providers     *providerRegistry
	evaluators    *evaluatorRegistry
	services      *serviceRegistry
	models        *modelRegistry
	events        *eventRegistry
	taskWorkers   *taskWorkerRegistry
	settings      *settingsRegistry
	stateCache    *stateCache
	actionResults *actionResultRegistry

	modelBreaker *resilience.CircuitBreaker

	plugins   []agent.Plugin
	closed    atomic.Bool
	stopSweep chan struct{}
}

// New constructs a runtime, resolves and initializes opts.Plugins in
// dependency order, and returns the assembled AgentRuntime. A plugin
// validation or resolution failure aborts construction entirely — there
// is no half-initialized runtime to recover (SPEC_FULL.md §4.2).
func New(ctx context.Context, opts RuntimeOpts) (*AgentRuntime, error) {
	if opts.Character.ID == nil {
		id := agent.NewID()
		opts.Character.ID = &id
	}

	maxEntries := opts.StateCacheMaxEntries
	ttl := opts.StateCacheTTL
	if maxEntries == 0 && ttl == 0 {
		maxEntries = defaultStateCacheMaxEntries
		ttl = defaultStateCacheTTL
	}

	rt := &AgentRuntime{
		agentID:       *opts.Character.ID,
		character:     opts.Character,
		adapter:       opts.Adapter,
		actions:       newActionRegistry(),
		providers:     newProviderRegistry(),
		evaluators:    newEvaluatorRegistry(),
		services:      newServiceRegistry(),
		models:        newModelRegistry(),
		events:        newEventRegistry(),
		taskWorkers:   newTaskWorkerRegistry(),
		settings:      newSettingsRegistry(),
		stateCache:    newStateCache(maxEntries, ttl),
		actionResults: newActionResultRegistry(),
	}
	var zeroBreakerConfig resilience.CircuitBreakerConfig
	if opts.ModelCircuitBreaker != zeroBreakerConfig {
		rt.modelBreaker = resilience.NewCircuitBreaker(opts.ModelCircuitBreaker)
	}
	seedCharacterSettings(rt.settings, opts.Character)

	resolved, err := LoadPlugins(opts.Plugins, opts.IncludeTestDeps)
	if err != nil {
		return nil, fmt.Errorf("resolving plugins: %w", err)
	}
	rt.plugins = resolved

	handle := newRuntimeHandle(rt)
	for _, p := range resolved {
		if err := p.Init(ctx, nil, handle); err != nil {
			return nil, fmt.Errorf("initializing plugin %q: %w", p.Name(), err)
		}
		for _, a := range p.Actions() {
			rt.actions.register(a)
		}
		for _, pr := range p.Providers() {
			rt.providers.register(pr)
		}
		for _, e := range p.Evaluators() {
			rt.evaluators.register(e)
		}
		for _, s := range p.Services() {
			rt.services.register(s)
		}
		for capability, handler := range p.Models() {
			rt.models.register(capability, handler, p.Priority())
		}
		for event, handlers := range p.Events() {
			for _, h := range handlers {
				rt.events.register(event, h)
			}
		}
	}

	if ttl > 0 {
		rt.stopSweep = make(chan struct{})
		go rt.runCacheSweeper(ttl)
	}

	return rt, nil
}

// runCacheSweeper periodically removes state-cache entries older than the
// TTL, modeled on the retention-janitor background-sweep idiom. It runs
// at half the TTL's interval, bounded to a sensible minimum, until Close.
func (rt *AgentRuntime) runCacheSweeper(ttl time.Duration) {
	interval := ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rt.stateCache.sweepExpired()
		case <-rt.stopSweep:
			return
		}
	}
}

// Handle returns a weakly-held handle plugin code can pass around without
// keeping rt alive past Close.
func (rt *AgentRuntime) Handle() agent.RuntimeHandle {
	return newRuntimeHandle(rt)
}

// Close tears the runtime down: every outstanding RuntimeHandle's
// TryUpgrade starts returning (nil, false) from this point on.
func (rt *AgentRuntime) Close(ctx context.Context) error {
	if !rt.closed.CompareAndSwap(false, true) {
		return nil
	}
	if rt.stopSweep != nil {
		close(rt.stopSweep)
	}
	for _, svcs := range rt.services.all() {
		for _, s := range svcs {
			if err := s.Stop(ctx); err != nil {
				log.Warn().Err(err).Str("service", s.Type()).Msg("service stop failed during shutdown")
			}
		}
	}
	return nil
}

func (rt *AgentRuntime) isClosed() bool { return rt.closed.Load() }

// AgentID returns the runtime's fixed identity.
func (rt *AgentRuntime) AgentID() agent.ID { return rt.agentID }

// Character returns the runtime's effectively-immutable character.
func (rt *AgentRuntime) Character() agent.Character { return rt.character }

// GetSetting implements agent.Runtime.
func (rt *AgentRuntime) GetSetting(key string) (any, bool) {
	return rt.settings.get(key)
}

// SetSetting implements agent.Runtime.
func (rt *AgentRuntime) SetSetting(key string, value any) {
	rt.settings.set(key, value)
}

// GetSettingsWithPrefix implements agent.Runtime.
func (rt *AgentRuntime) GetSettingsWithPrefix(prefix string) map[string]string {
	return rt.settings.withPrefix(prefix)
}

// GetService implements agent.Runtime.
func (rt *AgentRuntime) GetService(serviceType string) (agent.Service, bool) {
	return rt.services.lookup(serviceType)
}

// Adapter implements agent.Runtime.
func (rt *AgentRuntime) Adapter() (agent.StorageAdapter, bool) {
	if rt.adapter == nil {
		return nil, false
	}
	return rt.adapter, true
}

// ComposeState implements agent.Runtime, delegating to the package-level
// state composer with this runtime's own handle.
func (rt *AgentRuntime) ComposeState(ctx context.Context, message *agent.Memory, includeList []string, onlyInclude, skipCache bool) (*agent.State, error) {
	return composeState(ctx, rt, rt.Handle(), message, includeList, onlyInclude, skipCache)
}

// InvokeModel implements agent.Runtime: selects a handler for capability
// via the model registry and calls it, guarded by the model circuit
// breaker when one is configured.
func (rt *AgentRuntime) InvokeModel(ctx context.Context, capability agent.ModelType, params agent.GenerateTextParams) (string, error) {
	handler, ok := rt.models.selectHandler(capability)
	if !ok {
		return "", agent.NewError(agent.ErrModel, "no model handler registered for capability %q", capability)
	}

	handle := rt.Handle()
	call := func() (string, error) {
		return handler(ctx, handle, params)
	}

	if rt.modelBreaker == nil {
		return call()
	}

	var result string
	err := rt.modelBreaker.Do(func() error {
		out, callErr := call()
		if callErr != nil {
			return callErr
		}
		result = out
		return nil
	})
	return result, err
}

// EstimateLoad is a coarse measure of runtime activity, summing registry
// sizes — useful for a health check or a scaling signal, not a precise
// metric.
func (rt *AgentRuntime) EstimateLoad() int {
	return len(rt.actions.all()) +
		len(rt.evaluators.all()) +
		rt.servicesCount() +
		rt.taskWorkers.count()
}

func (rt *AgentRuntime) servicesCount() int {
	count := 0
	for _, list := range rt.services.all() {
		count += len(list)
	}
	return count
}

// seedCharacterSettings mirrors the static parts of character into the
// settings registry under a "character." prefix, so provider plugins that
// only hold an agent.Runtime (not the concrete AgentRuntime) can still
// surface bio/lore/style without the kernel exposing Character() on the
// interface.
func seedCharacterSettings(settings *settingsRegistry, character agent.Character) {
	settings.set("character.name", character.Name)
	settings.set("character.bio", strings.Join(character.Bio, "\n"))
	settings.set("character.lore", strings.Join(character.Lore, "\n"))
	settings.set("character.style", strings.Join(character.Style.All, "\n"))
	settings.set("character.adjectives", strings.Join(character.Adjectives, ", "))
	settings.set("character.topics", strings.Join(character.Topics, ", "))
}

var _ agent.Runtime = (*AgentRuntime)(nil)
