package services

import (
	"fmt"
	"time"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driven"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"

	keyInlineEnabled     = "processing.inline_enabled"
	keyInlineMaxChunks   = "processing.inline_max_chunks"
	keyStalenessWindow   = "processing.staleness_window"
	keyRecoveryBatchSize = "processing.recovery_batch_size"
	keyEmbedRate         = "processing.embed_rate"
)

// Default embedding models per provider.
var defaultEmbeddingModels = map[domain.AIProvider]string{
	domain.AIProviderOllama: "nomic-embed-text",
	domain.AIProviderOpenAI: "text-embedding-3-small",
	domain.AIProviderGemini: "text-embedding-004",
}

// SettingsService resolves vault configuration from the config store,
// layering defaults under whatever keys are set.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// EmbeddingSettings resolves embedding provider configuration.
func (s *SettingsService) EmbeddingSettings() domain.EmbeddingSettings {
	settings := domain.EmbeddingSettings{
		Provider:   domain.AIProvider(s.configStore.GetString(keyEmbedProvider)),
		Model:      s.configStore.GetString(keyEmbedModel),
		BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
		APIKey:     s.configStore.GetString(keyEmbedAPIKey),
		Dimensions: s.configStore.GetInt(keyEmbedDims),
	}

	if settings.Model == "" {
		settings.Model = defaultEmbeddingModels[settings.Provider]
	}
	return settings
}

// ProcessingSettings resolves ingest pipeline configuration.
func (s *SettingsService) ProcessingSettings() domain.ProcessingSettings {
	settings := domain.DefaultProcessingSettings()

	if _, ok := s.configStore.Get(keyInlineEnabled); ok {
		settings.InlineEnabled = s.configStore.GetBool(keyInlineEnabled)
	}
	if v := s.configStore.GetInt(keyInlineMaxChunks); v > 0 {
		settings.InlineMaxChunks = v
	}
	if raw := s.configStore.GetString(keyStalenessWindow); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			settings.StalenessWindow = d
		}
	}
	if v := s.configStore.GetInt(keyRecoveryBatchSize); v > 0 {
		settings.RecoveryBatchSize = v
	}
	if v := s.configStore.GetFloat(keyEmbedRate); v > 0 {
		settings.EmbedRate = v
	}
	return settings
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("%w: API key required for %s", domain.ErrInvalidInput, provider)
	}

	if model == "" {
		model = defaultEmbeddingModels[provider]
	}

	if err := s.configStore.Set(keyEmbedProvider, provider.String()); err != nil {
		return fmt.Errorf("save embedding provider: %w", err)
	}
	if err := s.configStore.Set(keyEmbedModel, model); err != nil {
		return fmt.Errorf("save embedding model: %w", err)
	}
	if apiKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, apiKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	return nil
}

// DisableEmbedding clears the embedding provider.
func (s *SettingsService) DisableEmbedding() error {
	if err := s.configStore.Set(keyEmbedProvider, ""); err != nil {
		return fmt.Errorf("clear embedding provider: %w", err)
	}
	return nil
}
