// Package condition provides an agent.Evaluator that gates on a boolean
// expr-lang/expr expression evaluated against the composed State, in the
// spirit of the workflow engine's branch-condition matching but upgraded
// to a real expression language instead of a hand-rolled "key == value"
// parser.
package condition

import (
	"context"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/pkg/agent"
)

// env is the shape exposed to expressions: state values/data plus whether
// the cycle produced a response, so a rule can read things like
// `values.userName == "alice"` or `data.score > 0.8` or `didRespond`.
type env struct {
	Values     map[string]string `expr:"values"`
	Data       map[string]any    `expr:"data"`
	DidRespond bool              `expr:"didRespond"`
}

// Handler is invoked when the gating expression evaluates true.
type Handler func(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State, didRespond bool, responses []*agent.Memory) error

// Evaluator gates Handler behind a compiled boolean expression.
type Evaluator struct {
	name        string
	description string
	alwaysRun   bool
	program     *vm.Program
	handler     Handler
}

// New compiles rule once at construction; a bad expression fails fast
// rather than on every Validate call.
func New(name, description, rule string, alwaysRun bool, handler Handler) (*Evaluator, error) {
	program, err := expr.Compile(rule, expr.Env(env{}), expr.AsBool())
	if err != nil {
		return nil, agent.Wrap(agent.ErrValidation, err, "compiling condition %q for evaluator %q", rule, name)
	}
	return &Evaluator{
		name:        name,
		description: description,
		alwaysRun:   alwaysRun,
		program:     program,
		handler:     handler,
	}, nil
}

func (e *Evaluator) Name() string        { return e.name }
func (e *Evaluator) Description() string { return e.description }
func (e *Evaluator) AlwaysRun() bool      { return e.alwaysRun }

// Validate runs the compiled expression against state and reports whether
// it held. A runtime expression error is logged and treated as "does not
// match" rather than aborting the cycle.
func (e *Evaluator) Validate(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State) (bool, error) {
	result, err := vm.Run(e.program, toEnv(state))
	if err != nil {
		log.Warn().Err(err).Str("evaluator", e.name).Msg("condition expression failed at runtime")
		return false, nil
	}
	matched, ok := result.(bool)
	if !ok {
		return false, agent.NewError(agent.ErrValidation, "condition %q for evaluator %q did not return a bool", e.name, e.name)
	}
	return matched, nil
}

func (e *Evaluator) Handler(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State, didRespond bool, responses []*agent.Memory) error {
	return e.handler(ctx, handle, message, state, didRespond, responses)
}

// toEnv reads didRespond out of state.Data, where runEvaluators stores it
// before running evaluators (SPEC_FULL.md §4.5 phase 5) — that's the only
// place in the cycle where whether the agent responded is actually known.
func toEnv(state *agent.State) env {
	if state == nil {
		return env{Values: map[string]string{}, Data: map[string]any{}}
	}
	didRespond, _ := state.Data["didRespond"].(bool)
	return env{Values: state.Values, Data: state.Data, DidRespond: didRespond}
}

var _ agent.Evaluator = (*Evaluator)(nil)
