package kernel

import (
	"sync"
	"time"

	"github.com/agentoven/kernel/pkg/agent"
)

// actionRegistry holds actions append-only; duplicate names are allowed,
// lookup-by-name returns the most recently registered match (SPEC_FULL.md
// §4.3 — "later wins when looked up by name").
type actionRegistry struct {
	mu    sync.RWMutex
	items []agent.Action
}

func newActionRegistry() *actionRegistry { return &actionRegistry{} }

func (r *actionRegistry) register(a agent.Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, a)
}

func (r *actionRegistry) lookup(name string) (agent.Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Name() == name {
			return r.items[i], true
		}
	}
	return nil, false
}

func (r *actionRegistry) all() []agent.Action {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agent.Action, len(r.items))
	copy(out, r.items)
	return out
}

// providerRegistry keeps providers append-only, and returns them in
// registration order stabilized by ascending Position (SPEC_FULL.md §4.4).
type providerRegistry struct {
	mu    sync.RWMutex
	items []agent.Provider
}

func newProviderRegistry() *providerRegistry { return &providerRegistry{} }

func (r *providerRegistry) register(p agent.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, p)
}

// ordered returns a snapshot sorted by ascending Position; ties are broken
// by registration order via a stable sort (decided open question, see
// SPEC_FULL.md §4.4).
func (r *providerRegistry) ordered() []agent.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agent.Provider, len(r.items))
	copy(out, r.items)
	stableSortByPosition(out)
	return out
}

func stableSortByPosition(providers []agent.Provider) {
	for i := 1; i < len(providers); i++ {
		for j := i; j > 0 && providers[j].Position() < providers[j-1].Position(); j-- {
			providers[j-1], providers[j] = providers[j], providers[j-1]
		}
	}
}

// evaluatorRegistry keeps evaluators append-only, fired in registration
// order.
type evaluatorRegistry struct {
	mu    sync.RWMutex
	items []agent.Evaluator
}

func newEvaluatorRegistry() *evaluatorRegistry { return &evaluatorRegistry{} }

func (r *evaluatorRegistry) register(e agent.Evaluator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, e)
}

func (r *evaluatorRegistry) all() []agent.Evaluator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]agent.Evaluator, len(r.items))
	copy(out, r.items)
	return out
}

// serviceRegistry keys services by their type name; one type-name may
// hold multiple services.
type serviceRegistry struct {
	mu    sync.RWMutex
	items map[string][]agent.Service
}

func newServiceRegistry() *serviceRegistry {
	return &serviceRegistry{items: make(map[string][]agent.Service)}
}

func (r *serviceRegistry) register(s agent.Service) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[s.Type()] = append(r.items[s.Type()], s)
}

func (r *serviceRegistry) lookup(serviceType string) (agent.Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.items[serviceType]
	if len(list) == 0 {
		return nil, false
	}
	return list[0], true
}

func (r *serviceRegistry) all() map[string][]agent.Service {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string][]agent.Service, len(r.items))
	for k, v := range r.items {
		cp := make([]agent.Service, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// modelHandlerEntry pairs a registered handler with the priority its
// contributing plugin assigned it; higher priority is preferred at
// selection time.
type modelHandlerEntry struct {
	handler  agent.ModelHandler
	priority int
}

// modelRegistry keys handlers by capability tag; multiple handlers per
// capability are allowed, priority selects among them.
type modelRegistry struct {
	mu    sync.RWMutex
	items map[agent.ModelType][]modelHandlerEntry
}

func newModelRegistry() *modelRegistry {
	return &modelRegistry{items: make(map[agent.ModelType][]modelHandlerEntry)}
}

func (r *modelRegistry) register(capability agent.ModelType, handler agent.ModelHandler, priority int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[capability] = append(r.items[capability], modelHandlerEntry{handler: handler, priority: priority})
}

// selectHandler returns the highest-priority handler registered for
// capability, ties broken by registration order.
func (r *modelRegistry) selectHandler(capability agent.ModelType) (agent.ModelHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.items[capability]
	if len(entries) == 0 {
		return nil, false
	}
	best := entries[0]
	for _, e := range entries[1:] {
		if e.priority > best.priority {
			best = e
		}
	}
	return best.handler, true
}

// eventRegistry keys handler lists by event name; all registered handlers
// for an event fire, in registration order.
type eventRegistry struct {
	mu    sync.RWMutex
	items map[agent.EventType][]agent.EventHandler
}

func newEventRegistry() *eventRegistry {
	return &eventRegistry{items: make(map[agent.EventType][]agent.EventHandler)}
}

func (r *eventRegistry) register(event agent.EventType, handler agent.EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[event] = append(r.items[event], handler)
}

func (r *eventRegistry) handlersFor(event agent.EventType) []agent.EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.items[event]
	out := make([]agent.EventHandler, len(list))
	copy(out, list)
	return out
}

// taskWorkerRegistry is a single-worker-per-name map; last registration
// wins.
type taskWorkerRegistry struct {
	mu    sync.RWMutex
	items map[string]any
}

func newTaskWorkerRegistry() *taskWorkerRegistry {
	return &taskWorkerRegistry{items: make(map[string]any)}
}

func (r *taskWorkerRegistry) register(name string, worker any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[name] = worker
}

func (r *taskWorkerRegistry) lookup(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.items[name]
	return w, ok
}

func (r *taskWorkerRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// settingsRegistry is a dotted-key → value map; single value per key, last
// write wins.
type settingsRegistry struct {
	mu    sync.RWMutex
	items map[string]any
}

func newSettingsRegistry() *settingsRegistry {
	return &settingsRegistry{items: make(map[string]any)}
}

func (r *settingsRegistry) set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[key] = value
}

func (r *settingsRegistry) get(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.items[key]
	return v, ok
}

// withPrefix returns every string-valued setting whose key starts with
// prefix.
func (r *settingsRegistry) withPrefix(prefix string) map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string)
	for k, v := range r.items {
		if len(k) < len(prefix) || k[:len(prefix)] != prefix {
			continue
		}
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}

func (r *settingsRegistry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// actionResultRegistry appends ActionResults per message id.
type actionResultRegistry struct {
	mu    sync.RWMutex
	items map[agent.ID][]agent.ActionResult
}

func newActionResultRegistry() *actionResultRegistry {
	return &actionResultRegistry{items: make(map[agent.ID][]agent.ActionResult)}
}

func (r *actionResultRegistry) append(messageID agent.ID, result agent.ActionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[messageID] = append(r.items[messageID], result)
}

func (r *actionResultRegistry) get(messageID agent.ID) []agent.ActionResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.items[messageID]
	out := make([]agent.ActionResult, len(list))
	copy(out, list)
	return out
}

// stateCacheEntry pairs a cached State with its insertion time, for both
// count-based and TTL-based eviction (decided open question, SPEC_FULL.md
// §4.4).
type stateCacheEntry struct {
	state      *agent.State
	insertedAt time.Time
}

// stateCache is bounded by both a maximum entry count (oldest-insertion
// eviction) and a TTL (background sweep). A zero maxEntries means
// unbounded by count; a zero ttl means unbounded by age.
type stateCache struct {
	mu         sync.RWMutex
	items      map[string]*stateCacheEntry
	order      []string // insertion order, oldest first, for count eviction
	maxEntries int
	ttl        time.Duration
}

func newStateCache(maxEntries int, ttl time.Duration) *stateCache {
	return &stateCache{
		items:      make(map[string]*stateCacheEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
	}
}

func (c *stateCache) get(key string) (*agent.State, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && time.Since(entry.insertedAt) > c.ttl {
		return nil, false
	}
	return entry.state.Clone(), true
}

func (c *stateCache) set(key string, state *agent.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.items[key]; exists {
		c.removeFromOrderLocked(key)
	}
	c.order = append(c.order, key)
	c.items[key] = &stateCacheEntry{state: state.Clone(), insertedAt: time.Now()}
	c.evictOverflowLocked()
}

// removeFromOrderLocked drops key from order wherever it appears, so a
// refreshed entry can be re-appended and treated as newest again rather
// than evicted ahead of entries that are genuinely older.
func (c *stateCache) removeFromOrderLocked(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *stateCache) evictOverflowLocked() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.items) > c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.items, oldest)
	}
}

// sweepExpired removes every entry older than the TTL. Intended to be
// called periodically by a background goroutine, modeled on the
// retention-janitor TTL-sweep idiom.
func (c *stateCache) sweepExpired() {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := time.Now().Add(-c.ttl)
	kept := c.order[:0:0]
	for _, key := range c.order {
		entry, ok := c.items[key]
		if !ok {
			continue
		}
		if entry.insertedAt.Before(cutoff) {
			delete(c.items, key)
			continue
		}
		kept = append(kept, key)
	}
	c.order = kept
}
