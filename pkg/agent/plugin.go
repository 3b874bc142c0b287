package agent

import "context"

// ModelHandler is the function shape a plugin registers for a given model
// capability tag (SPEC_FULL.md §6.2).
type ModelHandler func(ctx context.Context, handle RuntimeHandle, params GenerateTextParams) (string, error)

// RouteType enumerates the HTTP verbs (or the static-file special case) a
// plugin-contributed Route answers to. The kernel never serves these
// itself — an external transport collaborator does — but plugins may
// declare them for that collaborator to mount.
type RouteType string

const (
	RouteGet    RouteType = "GET"
	RoutePost   RouteType = "POST"
	RoutePut    RouteType = "PUT"
	RoutePatch  RouteType = "PATCH"
	RouteDelete RouteType = "DELETE"
	RouteStatic RouteType = "STATIC"
)

// Route describes one HTTP route a plugin would like an external
// transport to mount.
type Route struct {
	Type        RouteType
	Path        string
	FilePath    string
	Public      bool
	Name        string
	Handler     any
	IsMultipart bool
}

// ComponentType describes a kind of Component a plugin defines, with an
// optional JSON-schema-shaped validator.
type ComponentType struct {
	Name      string
	Schema    any
	Validator func(data any) bool
}

// Plugin is a passive description of a set of capabilities a collaborator
// contributes to the runtime. See SPEC_FULL.md §3, §4.2, §6.3.
type Plugin interface {
	Name() string
	Description() string
	// Dependencies names other plugins that must initialize first.
	Dependencies() []string
	// TestDependencies names plugins needed only when include_test_deps is
	// requested of the resolver.
	TestDependencies() []string
	// Priority is an advisory tie-break among plugins with no mutual
	// dependency edge: higher runs later and can override earlier
	// registrations.
	Priority() int
	// Init is called once, in dependency order, during runtime
	// construction. It may use handle to register additional handlers.
	Init(ctx context.Context, config map[string]string, handle RuntimeHandle) error

	Actions() []Action
	Providers() []Provider
	Evaluators() []Evaluator
	Services() []Service
	Models() map[ModelType]ModelHandler
	Events() map[EventType][]EventHandler
	Routes() []Route
	Schema() any
	ComponentTypes() []ComponentType
	ConfigSchema() any
}

// BasePlugin is an embeddable struct giving every method of Plugin a zero
// value default, so a concrete plugin only has to override Name,
// Description, and whichever capability lists it actually contributes —
// mirroring the source's default-method trait.
type BasePlugin struct{}

func (BasePlugin) Dependencies() []string                                      { return nil }
func (BasePlugin) TestDependencies() []string                                  { return nil }
func (BasePlugin) Priority() int                                               { return 0 }
func (BasePlugin) Init(context.Context, map[string]string, RuntimeHandle) error { return nil }
func (BasePlugin) Actions() []Action                                           { return nil }
func (BasePlugin) Providers() []Provider                                       { return nil }
func (BasePlugin) Evaluators() []Evaluator                                     { return nil }
func (BasePlugin) Services() []Service                                         { return nil }
func (BasePlugin) Models() map[ModelType]ModelHandler                          { return nil }
func (BasePlugin) Events() map[EventType][]EventHandler                        { return nil }
func (BasePlugin) Routes() []Route                                             { return nil }
func (BasePlugin) Schema() any                                                 { return nil }
func (BasePlugin) ComponentTypes() []ComponentType                             { return nil }
func (BasePlugin) ConfigSchema() any                                           { return nil }
