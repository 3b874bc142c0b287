// Package bootstrap is an example plugin bundle contributing the minimal
// set of providers, actions, and evaluators a new agent needs: the time of
// day, its own character, the recent conversation, a reply/echo action
// pair, and a condition-gated reflection evaluator. Adapted from the
// original runtime's bootstrap plugin providers/actions/evaluators.
package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agentoven/kernel/pkg/agent"
)

// timeProvider supplies the current date and time. It is dynamic: the
// state composer never serves it from cache, since "now" changes on every
// call.
type timeProvider struct{}

func (timeProvider) Name() string        { return "time" }
func (timeProvider) Description() string { return "provides current date and time information" }
func (timeProvider) Position() int       { return 0 }
func (timeProvider) Dynamic() bool       { return true }

func (timeProvider) Get(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State) (agent.ProviderResult, error) {
	now := time.Now().UTC()
	text := fmt.Sprintf("Current date and time: %s at %02d:%02d UTC", now.Format("Monday, January 2, 2006"), now.Hour(), now.Minute())
	return agent.ProviderResult{Text: &text}, nil
}

// characterProvider surfaces the runtime's own character (bio, lore,
// style, adjectives, topics) for the message-handler template.
type characterProvider struct{}

func (characterProvider) Name() string        { return "character" }
func (characterProvider) Description() string { return "provides character bio, lore, and personality" }
func (characterProvider) Position() int       { return -10 } // resolve early: other providers may reference AGENT_NAME
func (characterProvider) Dynamic() bool       { return false }

func (characterProvider) Get(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State) (agent.ProviderResult, error) {
	rt, ok := handle.TryUpgrade()
	if !ok {
		text := "character information unavailable: runtime has shut down"
		return agent.ProviderResult{Text: &text}, nil
	}

	fields := rt.GetSettingsWithPrefix("character.")
	name := handle.AgentName()
	text := fmt.Sprintf("Name: %s\nBio: %s\nLore: %s\nStyle: %s\nAdjectives: %s\nTopics: %s",
		name, fields["character.bio"], fields["character.lore"], fields["character.style"],
		fields["character.adjectives"], fields["character.topics"])

	return agent.ProviderResult{
		Text: &text,
		Values: map[string]string{
			"AGENT_NAME": name,
			"CHARACTER":  text,
			"bio":        fields["character.bio"],
		},
	}, nil
}

// recentMessagesProvider queries the storage adapter for the room's most
// recent messages and renders them as a numbered list, grounded on the
// original runtime's recent-messages provider (there fetched through
// runtime settings as a placeholder; here through the real memory store).
type recentMessagesProvider struct {
	count int
}

// newRecentMessagesProvider mirrors the original provider's
// RecentMessagesProvider::new(count), defaulting to 10.
func newRecentMessagesProvider(count int) recentMessagesProvider {
	if count <= 0 {
		count = 10
	}
	return recentMessagesProvider{count: count}
}

func (p recentMessagesProvider) Name() string { return "recentMessages" }
func (p recentMessagesProvider) Description() string {
	return fmt.Sprintf("provides the %d most recent messages in the conversation", p.count)
}
func (p recentMessagesProvider) Position() int { return 100 }
func (p recentMessagesProvider) Dynamic() bool { return true }

func (p recentMessagesProvider) Get(ctx context.Context, handle agent.RuntimeHandle, message *agent.Memory, state *agent.State) (agent.ProviderResult, error) {
	rt, ok := handle.TryUpgrade()
	if !ok {
		text := "No recent messages."
		return agent.ProviderResult{Text: &text}, nil
	}
	adapter, ok := rt.Adapter()
	if !ok {
		text := "No recent messages."
		return agent.ProviderResult{Text: &text}, nil
	}

	roomID := message.RoomID
	memories, err := adapter.GetMemories(ctx, agent.MemoryQuery{
		TableName: "messages",
		RoomID:    &roomID,
	})
	if err != nil {
		return agent.ProviderResult{}, agent.Wrap(agent.ErrMemory, err, "recentMessages provider: fetching history")
	}
	if len(memories) > p.count {
		memories = memories[len(memories)-p.count:]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Recent Messages (room %s):\n", message.RoomID)
	for i, m := range memories {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, m.Content.Text)
	}
	fmt.Fprintf(&sb, "Current: %s", message.Content.Text)

	text := sb.String()
	return agent.ProviderResult{Text: &text}, nil
}
