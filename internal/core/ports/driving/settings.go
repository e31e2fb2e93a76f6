package driving

import "github.com/arnaldo-delisio/vault-mcp/internal/core/domain"

// SettingsService manages vault configuration.
type SettingsService interface {
	// EmbeddingSettings resolves embedding provider configuration,
	// applying provider defaults for unset keys.
	EmbeddingSettings() domain.EmbeddingSettings

	// ProcessingSettings resolves ingest pipeline configuration.
	ProcessingSettings() domain.ProcessingSettings

	// SetEmbeddingProvider configures the embedding provider. An empty
	// model selects the provider default.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// DisableEmbedding clears the embedding provider, returning the
	// vault to keyword-only search.
	DisableEmbedding() error
}
