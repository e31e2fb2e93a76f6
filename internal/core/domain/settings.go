package domain

import "time"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderGemini is the Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderGemini
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// EmbeddingSettings holds embedding provider configuration.
// Availability of semantic search is a pure function of this
// configuration, resolved once at the composition root.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL overrides the provider's default endpoint.
	BaseURL string

	// APIKey authenticates cloud providers.
	APIKey string

	// Dimensions overrides the model's default vector size.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// Processing pipeline defaults.
const (
	// DefaultInlineMaxChunks is the Tier-2 inline threshold: documents
	// estimated at this many chunks or fewer are processed synchronously.
	DefaultInlineMaxChunks = 5

	// DefaultStalenessWindow is the minimum age before a pending
	// document is eligible for startup recovery. Younger documents are
	// presumed claimed by a live background pass.
	DefaultStalenessWindow = 5 * time.Minute

	// DefaultRecoveryBatchSize bounds how many stale documents a single
	// recovery pass will reprocess.
	DefaultRecoveryBatchSize = 10

	// DefaultEmbedRate is the per-second ceiling on embedding calls,
	// respected sequentially within a document.
	DefaultEmbedRate = 5.0
)

// ProcessingSettings configures the ingest pipeline's tiering.
type ProcessingSettings struct {
	// InlineEnabled turns the Tier-2 inline fast path on or off.
	// When false every document takes the background path.
	InlineEnabled bool

	// InlineMaxChunks is the inline threshold in estimated chunks.
	InlineMaxChunks int

	// StalenessWindow gates startup recovery by document age.
	StalenessWindow time.Duration

	// RecoveryBatchSize bounds a recovery pass.
	RecoveryBatchSize int

	// EmbedRate is the per-second embedding call ceiling.
	EmbedRate float64
}

// DefaultProcessingSettings returns the pipeline defaults.
func DefaultProcessingSettings() ProcessingSettings {
	return ProcessingSettings{
		InlineEnabled:     true,
		InlineMaxChunks:   DefaultInlineMaxChunks,
		StalenessWindow:   DefaultStalenessWindow,
		RecoveryBatchSize: DefaultRecoveryBatchSize,
		EmbedRate:         DefaultEmbedRate,
	}
}
