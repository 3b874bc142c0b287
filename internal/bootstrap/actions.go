package bootstrap

import (
	"context"

	"github.com/agentoven/kernel/pkg/agent"
)

// replyAction is the default conversational action: it echoes the
// decision's rendered text back out through the callback, the minimal
// action every character needs before any domain-specific plugin is
// loaded.
type replyAction struct{}

func (replyAction) Name() string        { return "REPLY" }
func (replyAction) Description() string { return "replies to the current conversation" }
func (replyAction) Similes() []string   { return []string{"RESPOND", "ANSWER"} }

func (replyAction) Validate(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State) (bool, error) {
	return true, nil
}

func (replyAction) Handler(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State, opts agent.CycleOptions, callback agent.ActionCallback) (*agent.ActionResult, error) {
	text := state.Values["text"]
	if callback != nil {
		if err := callback(agent.Content{Text: text, Source: message.Content.Source}); err != nil {
			return &agent.ActionResult{ActionName: "REPLY", Success: false, Error: err.Error()}, nil
		}
	}
	return &agent.ActionResult{ActionName: "REPLY", Text: text, Success: true}, nil
}

// echoAction mirrors the inbound message's own text back out, unconditionally
// and without consulting the decision's rendered text — useful for smoke
// tests and the testable-property around single-action dispatch.
type echoAction struct{}

func (echoAction) Name() string        { return "ECHO" }
func (echoAction) Description() string { return "echoes the inbound message text back out" }
func (echoAction) Similes() []string   { return nil }

func (echoAction) Validate(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State) (bool, error) {
	return message.Content.Text != "", nil
}

func (echoAction) Handler(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State, opts agent.CycleOptions, callback agent.ActionCallback) (*agent.ActionResult, error) {
	if callback != nil {
		if err := callback(agent.Content{Text: message.Content.Text, Source: message.Content.Source}); err != nil {
			return &agent.ActionResult{ActionName: "ECHO", Success: false, Error: err.Error()}, nil
		}
	}
	return &agent.ActionResult{ActionName: "ECHO", Text: message.Content.Text, Success: true}, nil
}

var (
	_ agent.Action = replyAction{}
	_ agent.Action = echoAction{}
)
