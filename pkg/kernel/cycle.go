package kernel

import (
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/pkg/agent"
	"github.com/agentoven/kernel/pkg/resilience"
)

const messagesTable = "messages"

// decisionCapabilitySetting is the settings key that selects the model
// capability the decision phase addresses; when unset the capability
// defaults to TEXT_LARGE (SPEC_FULL.md §4.5 phase 3).
const decisionCapabilitySetting = "kernel.decisionCapability"

// defaultMessageHandlerTemplate is the built-in prompt rendered against
// the composed State when a Character supplies no override.
const defaultMessageHandlerTemplate = `{{.CONTEXT}}

Respond as {{.AGENT_NAME}}. Reply using exactly this structure:
<response><thought>...</thought><actions>ACTION1,ACTION2</actions><text>...</text></response>`

// decisionResponse is the structured shape the default template asks the
// model to emit.
type decisionResponse struct {
	XMLName xml.Name `xml:"response"`
	Thought string   `xml:"thought"`
	Actions string   `xml:"actions"`
	Text    string   `xml:"text"`
}

// CycleTrace is optional per-turn bookkeeping a caller may request,
// mirroring the turn-by-turn trace record built by agentic tool-use loops
// in the wider ecosystem (SPEC_FULL.md §4.5 expansion). Populated only
// when the caller passes a non-nil *CycleTrace to ProcessMessage.
type CycleTrace struct {
	Iterations   []IterationTrace
	FinalSuccess bool
}

// IterationTrace records one enrich→decide→act→evaluate pass.
type IterationTrace struct {
	InboundID    agent.ID
	RawDecision  string
	ParsedThought string
	ActionsRun   []string
	Duration     time.Duration
	Error        string
}

// ProcessMessage is the kernel's signature algorithm (SPEC_FULL.md §4.5),
// invoked once per inbound message by an external collaborator. trace may
// be nil; when non-nil it is populated with per-iteration bookkeeping.
func ProcessMessage(ctx context.Context, rt *AgentRuntime, inbound *agent.Memory, room *agent.Room, opts agent.CycleOptions, trace *CycleTrace) ([]*agent.Memory, error) {
	if opts.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(opts.TimeoutMS)*time.Millisecond)
		defer cancel()
	}

	handle := rt.Handle()
	originalCacheKey := stateCacheKey(inbound)

	var outbound []*agent.Memory
	current := inbound
	maxIterations := opts.MaxMultiStepIterations
	if !opts.UseMultiStep || maxIterations <= 0 {
		maxIterations = 1
	}

	stopProgram, err := compileStopExpression(opts.StopExpression)
	if err != nil {
		return nil, fmt.Errorf("compiling multi-step stop expression: %w", err)
	}

	var finalState *agent.State

	for iteration := 0; iteration < maxIterations; iteration++ {
		start := time.Now()
		iterTrace := IterationTrace{InboundID: current.ID}

		// Phase 1: ingress.
		if adapter, ok := rt.Adapter(); ok {
			if err := adapter.CreateMemory(ctx, current, messagesTable); err != nil {
				return outbound, fmt.Errorf("ingress: persisting inbound memory: %w", err)
			}
		}
		rt.Emit(ctx, agent.EventMessageReceived, agent.EventPayload{
			Message: &agent.MessagePayload{Handle: handle, Message: *current},
		})

		// Phase 2: enrichment. Multi-step iterations beyond the first use a
		// fresh cache key (decided open question, SPEC_FULL.md §4.4) so a
		// later iteration never silently reuses the first iteration's State.
		skipCache := iteration > 0
		state, err := composeState(ctx, rt, handle, current, nil, false, skipCache)
		if err != nil {
			return outbound, fmt.Errorf("enrichment: %w", err)
		}
		finalState = state

		// Phase 3: decision.
		rt.Emit(ctx, agent.EventRunStarted, agent.EventPayload{
			Run: &agent.RunEventPayload{Handle: handle, MessageID: &current.ID, RoomID: &room.ID, StartTime: start.UnixMilli()},
		})

		decision, rawText, err := decide(ctx, rt, handle, current, room, state, opts)
		iterTrace.RawDecision = rawText
		if err != nil {
			log.Error().Err(err).Msg("decision phase failed, aborting cycle")
			rt.Emit(ctx, agent.EventRunEnded, agent.EventPayload{
				Run: &agent.RunEventPayload{Handle: handle, MessageID: &current.ID, RoomID: &room.ID, Status: "failed", Error: err.Error(), EndTime: time.Now().UnixMilli()},
			})
			return outbound, fmt.Errorf("decision: %w", err)
		}
		iterTrace.ParsedThought = decision.Thought
		state.Values["text"] = decision.Text
		state.Values["thought"] = decision.Thought

		// Phase 4: action execution.
		produced, stop := executeActions(ctx, rt, handle, current, state, decision, opts)
		iterTrace.ActionsRun = actionNamesOf(decision)
		outbound = append(outbound, produced...)

		if stopProgram != nil && evalStopExpression(stopProgram, state) {
			stop = true
		}

		// Phase 5: evaluation.
		runEvaluators(ctx, rt, handle, current, state, len(produced) > 0, produced)

		// Phase 6: finalization.
		iterTrace.Duration = time.Since(start)
		rt.Emit(ctx, agent.EventRunEnded, agent.EventPayload{
			Run: &agent.RunEventPayload{Handle: handle, MessageID: &current.ID, RoomID: &room.ID, Status: "ok", StartTime: start.UnixMilli(), EndTime: time.Now().UnixMilli(), Duration: iterTrace.Duration.Milliseconds()},
		})

		if trace != nil {
			trace.Iterations = append(trace.Iterations, iterTrace)
		}

		if !opts.UseMultiStep || stop || len(produced) == 0 {
			break
		}
		current = produced[len(produced)-1]
	}

	if trace != nil {
		trace.FinalSuccess = true
	}

	if finalState != nil {
		rt.stateCache.set(originalCacheKey, finalState)
	}

	return outbound, nil
}

// decide runs phase 3: select a model handler, render the prompt, invoke
// the model (optionally retried with backoff), and parse its structured
// response.
func decide(ctx context.Context, rt *AgentRuntime, handle agent.RuntimeHandle, message *agent.Memory, room *agent.Room, state *agent.State, opts agent.CycleOptions) (decisionResponse, string, error) {
	capability := agent.ModelTextLarge
	if v, ok := rt.GetSetting(decisionCapabilitySetting); ok {
		if s, ok := v.(string); ok && s != "" {
			capability = agent.ModelType(s)
		}
	}

	prompt := renderMessageHandlerTemplate(rt.character, state)
	params := agent.GenerateTextParams{Prompt: prompt}

	var raw string
	call := func(ctx context.Context) error {
		out, err := rt.InvokeModel(ctx, capability, params)
		if err != nil {
			return err
		}
		raw = out
		return nil
	}

	if opts.MaxRetries > 0 {
		cfg := resilience.DefaultRetryConfig
		cfg.MaxRetries = opts.MaxRetries
		if err := resilience.RetryWithBackoff(ctx, cfg, call); err != nil {
			return decisionResponse{}, "", err
		}
	} else if err := call(ctx); err != nil {
		return decisionResponse{}, "", err
	}

	return parseDecision(raw), raw, nil
}

// renderMessageHandlerTemplate substitutes {{.KEY}} placeholders with
// state.Values["KEY"], using the character's override if present.
func renderMessageHandlerTemplate(character agent.Character, state *agent.State) string {
	tmpl := defaultMessageHandlerTemplate
	if character.Templates != nil && character.Templates.MessageHandlerTemplate != "" {
		tmpl = character.Templates.MessageHandlerTemplate
	}

	replacer := make([]string, 0, len(state.Values)*2+2)
	replacer = append(replacer, "{{.AGENT_NAME}}", character.Name)
	replacer = append(replacer, "{{.CONTEXT}}", buildContextBlock(state))
	for k, v := range state.Values {
		replacer = append(replacer, fmt.Sprintf("{{.%s}}", k), v)
	}
	return strings.NewReplacer(replacer...).Replace(tmpl)
}

func buildContextBlock(state *agent.State) string {
	var b strings.Builder
	for k, v := range state.Values {
		fmt.Fprintf(&b, "%s: %s\n", k, v)
	}
	return b.String()
}

// parseDecision parses the default XML-tagged response shape. On parse
// failure it falls back to treating the entire output as response text
// with no actions (SPEC_FULL.md §4.5 phase 3).
func parseDecision(raw string) decisionResponse {
	trimmed := strings.TrimSpace(raw)
	start := strings.Index(trimmed, "<response>")
	end := strings.LastIndex(trimmed, "</response>")
	if start == -1 || end == -1 || end < start {
		return decisionResponse{Text: raw}
	}

	var parsed decisionResponse
	if err := xml.Unmarshal([]byte(trimmed[start:end+len("</response>")]), &parsed); err != nil {
		return decisionResponse{Text: raw}
	}
	return parsed
}

// stopEnv is the shape exposed to CycleOptions.StopExpression: the
// post-action State's values/data, so a rule can read things like
// `values.turnsTaken == "3"` or `data.remaining <= 0`.
type stopEnv struct {
	Values map[string]string `expr:"values"`
	Data   map[string]any    `expr:"data"`
}

// compileStopExpression compiles opts.StopExpression once per
// ProcessMessage call rather than once per multi-step iteration. An empty
// expression is not an error: it simply means no expr-lang stop check is
// wired for this call.
func compileStopExpression(rule string) (*vm.Program, error) {
	if rule == "" {
		return nil, nil
	}
	program, err := expr.Compile(rule, expr.Env(stopEnv{}), expr.AsBool())
	if err != nil {
		return nil, agent.Wrap(agent.ErrValidation, err, "compiling multi-step stop expression %q", rule)
	}
	return program, nil
}

// evalStopExpression runs program against state's current values/data. A
// runtime error is logged; a runtime error or non-bool result is treated
// as "don't stop" rather than aborting the cycle.
func evalStopExpression(program *vm.Program, state *agent.State) bool {
	result, err := vm.Run(program, stopEnv{Values: state.Values, Data: state.Data})
	if err != nil {
		log.Warn().Err(err).Msg("multi-step stop expression failed at runtime")
		return false
	}
	stop, ok := result.(bool)
	return ok && stop
}

func actionNamesOf(decision decisionResponse) []string {
	if decision.Actions == "" {
		return nil
	}
	parts := strings.Split(decision.Actions, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}

// executeActions runs phase 4: look up, validate, and invoke each named
// action in order. One action's failure never aborts the others (kernel
// policy: never fatal, SPEC_FULL.md §4.5 phase 4f), so this never fails
// outright; stop reports whether any ActionResult requested the
// multi-step loop halt.
func executeActions(ctx context.Context, rt *AgentRuntime, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State, decision decisionResponse, opts agent.CycleOptions) ([]*agent.Memory, bool) {
	var produced []*agent.Memory
	stop := false

	for _, name := range actionNamesOf(decision) {
		action, ok := rt.actions.lookup(name)
		if !ok {
			log.Warn().Str("action", name).Msg("unknown action name, skipped")
			continue
		}

		rt.Emit(ctx, agent.EventActionStarted, agent.EventPayload{
			Action: &agent.ActionEventPayload{Handle: handle, RoomID: message.RoomID, MessageID: &message.ID},
		})

		ok, err := action.Validate(ctx, handle, message, state)
		if err != nil || !ok {
			continue
		}

		usedCallback := false
		callback := func(content agent.Content) error {
			reply := &agent.Memory{
				ID:        agent.NewID(),
				EntityID:  rt.agentID,
				AgentID:   rt.agentID,
				RoomID:    message.RoomID,
				Content:   content,
				CreatedAt: time.Now().UnixMilli(),
			}
			if adapter, ok := rt.Adapter(); ok {
				if err := adapter.CreateMemory(ctx, reply, messagesTable); err != nil {
					return fmt.Errorf("persisting action output memory: %w", err)
				}
			}
			produced = append(produced, reply)
			usedCallback = true
			return nil
		}

		result, err := action.Handler(ctx, handle, message, state, opts, callback)
		if err != nil {
			log.Warn().Err(err).Str("action", name).Msg("action handler failed, continuing")
		}
		if result != nil {
			rt.actionResults.append(message.ID, *result)
			if result.Text != "" && !usedCallback {
				produced = append(produced, syntheticMemory(rt, message, result.Text))
			}
			if v, ok := result.Data["stop"]; ok {
				if b, ok := v.(bool); ok && b {
					stop = true
				}
			}
		}

		rt.Emit(ctx, agent.EventActionCompleted, agent.EventPayload{
			Action: &agent.ActionEventPayload{Handle: handle, RoomID: message.RoomID, MessageID: &message.ID},
		})
	}

	return produced, stop
}

// syntheticMemory wraps an ActionResult's plain text as an outbound
// Memory when the action did not use the callback side channel.
func syntheticMemory(rt *AgentRuntime, message *agent.Memory, text string) *agent.Memory {
	return &agent.Memory{
		ID:        agent.NewID(),
		EntityID:  rt.agentID,
		AgentID:   rt.agentID,
		RoomID:    message.RoomID,
		Content:   agent.Content{Text: text},
		CreatedAt: time.Now().UnixMilli(),
	}
}

// runEvaluators runs phase 5: evaluators are side-effectful only, their
// return value carries no control flow (SPEC_FULL.md §4.5 phase 5).
func runEvaluators(ctx context.Context, rt *AgentRuntime, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State, didRespond bool, responses []*agent.Memory) {
	if state.Data == nil {
		state.Data = make(map[string]any)
	}
	state.Data["didRespond"] = didRespond
	state.Data["responseCount"] = len(responses)

	for _, ev := range rt.evaluators.all() {
		if !ev.AlwaysRun() {
			ok, err := ev.Validate(ctx, handle, message, state)
			if err != nil || !ok {
				continue
			}
		}

		rt.Emit(ctx, agent.EventEvaluatorStarted, agent.EventPayload{
			Evaluator: &agent.EvaluatorEventPayload{Handle: handle, EvaluatorName: ev.Name()},
		})

		if err := ev.Handler(ctx, handle, message, state, didRespond, responses); err != nil {
			log.Warn().Err(err).Str("evaluator", ev.Name()).Msg("evaluator failed, continuing")
			rt.Emit(ctx, agent.EventEvaluatorCompleted, agent.EventPayload{
				Evaluator: &agent.EvaluatorEventPayload{Handle: handle, EvaluatorName: ev.Name(), Error: err.Error()},
			})
			continue
		}

		rt.Emit(ctx, agent.EventEvaluatorCompleted, agent.EventPayload{
			Evaluator: &agent.EvaluatorEventPayload{Handle: handle, EvaluatorName: ev.Name()},
		})
	}
}
