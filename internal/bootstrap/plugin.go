package bootstrap

import (
	"context"

	"github.com/agentoven/kernel/pkg/agent"
)

// Plugin is the bootstrap bundle every character loads by default: the
// time/character/recent-messages providers, the REPLY/ECHO actions, and
// the reflection evaluator. It declares no dependencies; the resolver
// places it before any plugin that lists it as one.
type Plugin struct {
	agent.BasePlugin
	evaluator agent.Evaluator
}

// New constructs the bootstrap plugin bundle. Returns an error only if the
// reflection evaluator's condition expression fails to compile, which
// would indicate a coding mistake rather than a runtime condition.
func New() (*Plugin, error) {
	ev, err := newReflectionEvaluator()
	if err != nil {
		return nil, err
	}
	return &Plugin{evaluator: ev}, nil
}

func (p *Plugin) Name() string        { return "bootstrap" }
func (p *Plugin) Description() string { return "time/character/recent-messages providers, reply/echo actions, reflection evaluator" }

func (p *Plugin) Actions() []agent.Action {
	return []agent.Action{replyAction{}, echoAction{}}
}

func (p *Plugin) Providers() []agent.Provider {
	return []agent.Provider{timeProvider{}, characterProvider{}, newRecentMessagesProvider(10)}
}

func (p *Plugin) Evaluators() []agent.Evaluator {
	return []agent.Evaluator{p.evaluator}
}

var _ agent.Plugin = (*Plugin)(nil)
