package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driven/ai"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage vault settings",
	Long: `View and configure the embedding provider and processing options.

Without an embedding provider the vault runs keyword-only search, which
needs no setup at all.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Configure the embedding provider for semantic search.`,
	RunE:  runSettingsEmbedding,
}

var settingsDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable semantic search",
	Long:  `Clears the embedding provider, returning the vault to keyword-only search.`,
	RunE:  runSettingsDisable,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsDisableCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	embedding := settingsService.EmbeddingSettings()
	processing := settingsService.ProcessingSettings()

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	if embedding.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", embedding.Provider)
		cmd.Printf("  Model: %s\n", embedding.Model)
		if embedding.BaseURL != "" {
			cmd.Printf("  Base URL: %s\n", embedding.BaseURL)
		}
		if embedding.Provider.RequiresAPIKey() {
			if embedding.APIKey != "" {
				cmd.Printf("  API Key: %s\n", maskAPIKey(embedding.APIKey))
			} else {
				cmd.Printf("  API Key: (not set)\n")
			}
		}
	}
	status := "configured"
	if !embedding.IsConfigured() {
		status = "not configured (keyword-only search)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Processing]")
	cmd.Printf("  Inline enabled: %t\n", processing.InlineEnabled)
	cmd.Printf("  Inline max chunks: %d\n", processing.InlineMaxChunks)
	cmd.Printf("  Staleness window: %s\n", processing.StalenessWindow)
	cmd.Printf("  Recovery batch size: %d\n", processing.RecoveryBatchSize)
	cmd.Printf("  Embed rate: %.1f/s\n", processing.EmbedRate)
	cmd.Println()

	if embedding.IsConfigured() {
		cmd.Print("Validating embedding configuration... ")
		if err := ai.ValidateEmbeddingConfig(context.Background(), &embedding); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			cmd.Println("Run 'vault settings embedding' to reconfigure.")
			return nil
		}
		cmd.Println("OK")
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	providers := []domain.AIProvider{
		domain.AIProviderOllama,
		domain.AIProviderOpenAI,
		domain.AIProviderGemini,
	}
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p)
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selected := providers[idx-1]

	cmd.Print("Enter model name (empty for provider default): ")
	model := readLine(reader)

	var apiKey string
	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetEmbeddingProvider(selected, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	settings := settingsService.EmbeddingSettings()
	cmd.Print("Validating configuration... ")
	if err := ai.ValidateEmbeddingConfig(context.Background(), &settings); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", settings.Provider, settings.Model)
	cmd.Println("Existing documents keep their current embeddings until reprocessed.")
	return nil
}

func runSettingsDisable(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.DisableEmbedding(); err != nil {
		return fmt.Errorf("failed to disable embedding: %w", err)
	}

	cmd.Println("Embedding disabled. The vault now runs keyword-only search.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Read the key without echo when attached to a terminal.
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
