package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driven/storage/memory"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

func TestSettingsService_EmbeddingSettings_Defaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings := service.EmbeddingSettings()

	assert.False(t, settings.IsConfigured())
	assert.Empty(t, settings.Model)
}

func TestSettingsService_EmbeddingSettings_DefaultModelPerProvider(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "ollama")
	service := NewSettingsService(store)

	settings := service.EmbeddingSettings()

	assert.Equal(t, domain.AIProviderOllama, settings.Provider)
	assert.Equal(t, "nomic-embed-text", settings.Model)
	assert.True(t, settings.IsConfigured())
}

func TestSettingsService_EmbeddingSettings_StoredValuesWin(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("embedding.provider", "openai")
	_ = store.Set("embedding.model", "text-embedding-3-large")
	_ = store.Set("embedding.api_key", "sk-test")
	_ = store.Set("embedding.dimensions", 3072)
	service := NewSettingsService(store)

	settings := service.EmbeddingSettings()

	assert.Equal(t, domain.AIProviderOpenAI, settings.Provider)
	assert.Equal(t, "text-embedding-3-large", settings.Model)
	assert.Equal(t, "sk-test", settings.APIKey)
	assert.Equal(t, 3072, settings.Dimensions)
}

func TestSettingsService_ProcessingSettings_Defaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings := service.ProcessingSettings()

	assert.Equal(t, domain.DefaultProcessingSettings(), settings)
}

func TestSettingsService_ProcessingSettings_Overrides(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("processing.inline_enabled", false)
	_ = store.Set("processing.inline_max_chunks", 3)
	_ = store.Set("processing.staleness_window", "10m")
	_ = store.Set("processing.recovery_batch_size", 25)
	_ = store.Set("processing.embed_rate", 1.5)
	service := NewSettingsService(store)

	settings := service.ProcessingSettings()

	assert.False(t, settings.InlineEnabled)
	assert.Equal(t, 3, settings.InlineMaxChunks)
	assert.Equal(t, 10*time.Minute, settings.StalenessWindow)
	assert.Equal(t, 25, settings.RecoveryBatchSize)
	assert.Equal(t, 1.5, settings.EmbedRate)
}

func TestSettingsService_ProcessingSettings_BadDurationFallsBack(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set("processing.staleness_window", "whenever")
	service := NewSettingsService(store)

	settings := service.ProcessingSettings()

	assert.Equal(t, domain.DefaultStalenessWindow, settings.StalenessWindow)
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	err := service.SetEmbeddingProvider(domain.AIProviderGemini, "", "key-123")
	require.NoError(t, err)

	settings := service.EmbeddingSettings()
	assert.Equal(t, domain.AIProviderGemini, settings.Provider)
	assert.Equal(t, "text-embedding-004", settings.Model)
	assert.Equal(t, "key-123", settings.APIKey)
}

func TestSettingsService_SetEmbeddingProvider_Validation(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	err := service.SetEmbeddingProvider("mystery", "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = service.SetEmbeddingProvider(domain.AIProviderOpenAI, "", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Local providers need no key.
	err = service.SetEmbeddingProvider(domain.AIProviderOllama, "", "")
	assert.NoError(t, err)
}

func TestSettingsService_DisableEmbedding(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)
	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))

	require.NoError(t, service.DisableEmbedding())

	assert.False(t, service.EmbeddingSettings().IsConfigured())
}
