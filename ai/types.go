package ai

// Supported provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// DefaultAPIVersion is the Gemini API version embedding endpoints are served on.
const DefaultAPIVersion = "v1beta"

// EmbedRequest names the model and API version for one batch embedding call.
type EmbedRequest struct {
	Model      string
	APIVersion string
	Texts      []string
}
