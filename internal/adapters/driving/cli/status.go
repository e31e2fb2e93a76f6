package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show vault processing status",
	Long:  `Shows document counts per processing state and the embedding configuration.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	counts, err := libraryService.Status(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	cmd.Println("Vault Status")
	cmd.Println("============")
	cmd.Println()
	cmd.Printf("  Documents:  %d\n", total)
	cmd.Printf("  Complete:   %d\n", counts[domain.StatusComplete])
	cmd.Printf("  Pending:    %d\n", counts[domain.StatusPending])
	cmd.Printf("  Processing: %d\n", counts[domain.StatusProcessing])
	cmd.Printf("  Failed:     %d\n", counts[domain.StatusFailed])
	cmd.Println()

	if settingsService != nil {
		embedding := settingsService.EmbeddingSettings()
		if embedding.IsConfigured() {
			cmd.Printf("  Embedding:  %s (%s)\n", embedding.Provider, embedding.Model)
		} else {
			cmd.Println("  Embedding:  not configured (keyword-only search)")
		}
	}

	if store != nil {
		cmd.Printf("  Database:   %s\n", store.Path())
	}

	waiting := counts[domain.StatusPending] + counts[domain.StatusFailed]
	if waiting > 0 {
		cmd.Println()
		cmd.Printf("%d documents are waiting. Run 'vault process' to embed them now.\n", waiting)
	}
	return nil
}
