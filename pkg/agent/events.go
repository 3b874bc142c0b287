package agent

import "context"

// EventType is one of the closed set of lifecycle events the kernel fires.
type EventType string

const (
	EventMessageReceived    EventType = "MESSAGE_RECEIVED"
	EventMessageSent        EventType = "MESSAGE_SENT"
	EventReactionReceived   EventType = "REACTION_RECEIVED"
	EventPostGenerated      EventType = "POST_GENERATED"
	EventWorldJoined        EventType = "WORLD_JOINED"
	EventWorldConnected     EventType = "WORLD_CONNECTED"
	EventEntityJoined       EventType = "ENTITY_JOINED"
	EventEntityLeft         EventType = "ENTITY_LEFT"
	EventActionStarted      EventType = "ACTION_STARTED"
	EventActionCompleted    EventType = "ACTION_COMPLETED"
	EventEvaluatorStarted   EventType = "EVALUATOR_STARTED"
	EventEvaluatorCompleted EventType = "EVALUATOR_COMPLETED"
	EventRunStarted         EventType = "RUN_STARTED"
	EventRunEnded           EventType = "RUN_ENDED"
	EventRunTimeout         EventType = "RUN_TIMEOUT"
	EventControlMessage     EventType = "CONTROL_MESSAGE"
)

// MessagePayload accompanies EventMessageReceived/EventMessageSent.
type MessagePayload struct {
	Handle  RuntimeHandle
	Message Memory
}

// WorldPayload accompanies EventWorldJoined/EventWorldConnected.
type WorldPayload struct {
	Handle   RuntimeHandle
	World    World
	Rooms    []Room
	Entities []Entity
	Source   string
}

// EntityPayload accompanies EventEntityJoined/EventEntityLeft.
type EntityPayload struct {
	Handle   RuntimeHandle
	EntityID ID
	WorldID  ID
	RoomID   ID
	Source   string
	Metadata Metadata
}

// ActionEventPayload accompanies EventActionStarted/EventActionCompleted.
type ActionEventPayload struct {
	Handle    RuntimeHandle
	RoomID    ID
	World     *World
	Content   *Content
	MessageID *ID
}

// EvaluatorEventPayload accompanies EventEvaluatorStarted/Completed.
type EvaluatorEventPayload struct {
	Handle        RuntimeHandle
	EvaluatorName string
	EvaluatorID   ID
	Error         string
}

// RunEventPayload accompanies EventRunStarted/EventRunEnded/EventRunTimeout.
type RunEventPayload struct {
	Handle    RuntimeHandle
	RunID     ID
	Status    string
	MessageID *ID
	RoomID    *ID
	EntityID  *ID
	StartTime int64
	EndTime   int64
	Duration  int64
	Error     string
	Source    string
}

// EventPayload is the generic envelope handed to event handlers. Exactly
// one of the typed fields (or Generic) is populated, matching which
// EventType fired.
type EventPayload struct {
	Message   *MessagePayload
	World     *WorldPayload
	Entity    *EntityPayload
	Action    *ActionEventPayload
	Evaluator *EvaluatorEventPayload
	Run       *RunEventPayload
	Generic   map[string]any
}

// EventHandler is the function shape subscribed per event name.
type EventHandler func(ctx context.Context, payload EventPayload)
