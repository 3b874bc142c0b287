package agent

// StorageType enumerates the storage adapter families a Character may ask
// for. The kernel never branches on this value itself — it is read by the
// collaborator that builds the concrete adapter before handing it to the
// runtime.
type StorageType string

const (
	StorageSQLite   StorageType = "sqlite"
	StoragePostgres StorageType = "postgres"
	StorageMongo    StorageType = "mongo"
	StorageSupabase StorageType = "supabase"
)

// StorageConfig describes which storage adapter a Character wants and how
// to reach it.
type StorageConfig struct {
	Adapter            StorageType `json:"adapter,omitempty"`
	URL                string      `json:"url,omitempty"`
	Database           string      `json:"database,omitempty"`
	APIKey             string      `json:"apiKey,omitempty"`
	EmbeddingDimension int         `json:"embeddingDimension,omitempty"`
}

// MessageExample is one line of a training dialogue sample.
type MessageExample struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// CharacterStyle groups style guidance by surface.
type CharacterStyle struct {
	All  []string `json:"all,omitempty"`
	Chat []string `json:"chat,omitempty"`
	Post []string `json:"post,omitempty"`
}

// CharacterTemplates holds overrides for the kernel's built-in prompt
// templates, plus any plugin-private custom templates.
type CharacterTemplates struct {
	MessageHandlerTemplate string            `json:"messageHandlerTemplate,omitempty"`
	PostCreationTemplate   string            `json:"postCreationTemplate,omitempty"`
	Custom                 map[string]string `json:"custom,omitempty"`
}

// Character is the static identity of an agent. It is never mutated after
// runtime construction.
type Character struct {
	ID             *ID                 `json:"id,omitempty"`
	Name           string              `json:"name"`
	Username       string              `json:"username,omitempty"`
	Bio            []string            `json:"bio,omitempty"`
	Lore           []string            `json:"lore,omitempty"`
	Knowledge      []string            `json:"knowledge,omitempty"`
	MessageExamples [][]MessageExample `json:"messageExamples,omitempty"`
	PostExamples   []string            `json:"postExamples,omitempty"`
	Topics         []string            `json:"topics,omitempty"`
	Style          CharacterStyle      `json:"style,omitempty"`
	Adjectives     []string            `json:"adjectives,omitempty"`
	Settings       Metadata            `json:"settings,omitempty"`
	Templates      *CharacterTemplates `json:"templates,omitempty"`
	Plugins        []string            `json:"plugins,omitempty"`
	Clients        []string            `json:"clients,omitempty"`
	ModelProvider  string              `json:"modelProvider,omitempty"`
	Storage        StorageConfig       `json:"storage,omitempty"`
}
