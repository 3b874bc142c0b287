package agent

// Metadata is the open string-keyed JSON-ish value bag used across the
// data model wherever a plugin might want to stash extra structured data.
type Metadata map[string]any

// ContentType tags the MIME class of a Media attachment.
type ContentType string

const (
	ContentText     ContentType = "TEXT"
	ContentImage    ContentType = "IMAGE"
	ContentAudio    ContentType = "AUDIO"
	ContentVideo    ContentType = "VIDEO"
	ContentDocument ContentType = "DOCUMENT"
	ContentUnknown  ContentType = "UNKNOWN"
)

// Media is a single attachment on a Content value.
type Media struct {
	URL         string      `json:"url"`
	Type        ContentType `json:"contentType"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	Text        string      `json:"text,omitempty"`
}

// Content is the body of a message or interaction: required text plus a
// grab-bag of optional tags the message cycle and plugins consult.
type Content struct {
	Text        string   `json:"text"`
	Source      string   `json:"source,omitempty"`
	ChannelType string   `json:"channelType,omitempty"`
	Thought     string   `json:"thought,omitempty"`
	Actions     []string `json:"actions,omitempty"`
	Providers   []string `json:"providers,omitempty"`
	Attachments []Media  `json:"attachments,omitempty"`
	Simple      bool     `json:"simple,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// ControlPayload carries a UI/frontend control action.
type ControlPayload struct {
	Action string   `json:"action"`
	Target string   `json:"target"`
	Data   Metadata `json:"data,omitempty"`
}

// ControlMessage is an out-of-band instruction to a UI/frontend, scoped to
// a room.
type ControlMessage struct {
	RoomID  ID             `json:"roomId"`
	Payload ControlPayload `json:"payload"`
}
