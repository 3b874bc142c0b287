package bootstrap

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/agentoven/kernel/internal/evaluators/condition"
	"github.com/agentoven/kernel/pkg/agent"
)

// newReflectionEvaluator builds a condition-gated evaluator, grounded on
// the original runtime's goal-tracking/review evaluators: it only runs
// once the agent actually produced a reply, and records the turn's
// outcome as a runtime setting other plugins (or a dashboard) can read.
func newReflectionEvaluator() (agent.Evaluator, error) {
	return condition.New(
		"reflection",
		"records whether the agent responded to the current message",
		"didRespond == true",
		false,
		func(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State, didRespond bool, responses []*agent.Memory) error {
			rt, ok := handle.TryUpgrade()
			if !ok {
				return nil
			}
			rt.SetSetting("reflection.lastRoomID", message.RoomID.String())
			rt.SetSetting("reflection.lastResponseCount", len(responses))
			log.Debug().Int("responses", len(responses)).Msg("reflection evaluator recorded a completed turn")
			return nil
		},
	)
}
