// Package cli provides the command-line interface for vault.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driven/ai"
	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driven/config/file"
	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driven/storage/sqlite"
	"github.com/arnaldo-delisio/vault-mcp/internal/chunker"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/services"
	"github.com/arnaldo-delisio/vault-mcp/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services wired by initServices. Commands check for nil so tests can
// inject mocks without touching the filesystem.
var (
	store           *sqlite.Store
	settingsService driving.SettingsService
	ingestService   driving.IngestService
	searchService   driving.SearchService
	samplerService  driving.SamplerService
	libraryService  driving.LibraryService
)

var (
	verbose bool
	dataDir string
)

var rootCmd = &cobra.Command{
	Use:   "vault",
	Short: "Capture and retrieve your personal content",
	Long: `Vault is a personal content backend: capture notes, journal entries,
articles, transcripts and books, then retrieve them with hybrid
keyword and semantic search.

Captured documents are chunked and embedded asynchronously, so capture
always returns immediately. Search works from the moment a document is
stored; semantic ranking improves as embeddings arrive.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.vault/data)")
}

// Execute wires the services and runs the root command.
func Execute() error {
	if err := initServices(context.Background()); err != nil {
		return err
	}
	defer func() {
		if store != nil {
			store.Close() //nolint:errcheck
		}
	}()

	return rootCmd.Execute()
}

// initServices is the composition root: config store, settings, SQLite
// storage, the embedding provider, and the core services on top.
func initServices(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService = services.NewSettingsService(configStore)

	store, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}

	// A broken embedding configuration degrades to keyword-only mode
	// rather than blocking every command.
	embedSettings := settingsService.EmbeddingSettings()
	embedder, err := ai.CreateEmbeddingService(ctx, &embedSettings)
	if err != nil {
		logger.Warn("embedding provider unavailable, running keyword-only: %v", err)
		embedder = nil
	}

	docs := store.DocumentStore()
	chunks := store.ChunkStore()
	ck := chunker.New()

	ingestService = services.NewIngestPipeline(docs, chunks, embedder, ck, settingsService.ProcessingSettings())
	searchService = services.NewSearchService(docs, chunks, embedder)
	samplerService = services.NewSamplerService(docs, chunks, embedder)
	libraryService = services.NewLibraryService(docs)

	return nil
}
