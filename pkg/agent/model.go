package agent

// ModelType is one of the closed set of model capability tags the kernel
// and plugins address handlers by.
type ModelType string

const (
	ModelTextSmall        ModelType = "TEXT_SMALL"
	ModelTextMedium       ModelType = "TEXT_MEDIUM"
	ModelTextLarge        ModelType = "TEXT_LARGE"
	ModelTextEmbedding    ModelType = "TEXT_EMBEDDING"
	ModelImageDescription ModelType = "IMAGE_DESCRIPTION"
	ModelImage            ModelType = "IMAGE"
	ModelAudio            ModelType = "AUDIO"
	ModelVideo            ModelType = "VIDEO"
)

// GenerateTextParams are the parameters passed to a model handler.
type GenerateTextParams struct {
	Prompt           string
	MaxTokens        int
	Temperature      float32
	TopP             float32
	Stop             []string
	Model            string
	FrequencyPenalty float32
	PresencePenalty  float32
}

// TokenUsage reports token accounting for a single model call.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerateTextResult is a model handler's structured result, for
// collaborators that want usage accounting; the handler contract itself
// (SPEC_FULL.md §6.2) returns a bare string or error, this is a richer
// optional wrapper callers may use internally.
type GenerateTextResult struct {
	Text         string
	FinishReason string
	Usage        *TokenUsage
}
