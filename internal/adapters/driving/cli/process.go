package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

var (
	processLimit int
	processStale bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process waiting documents",
	Long: `Chunks and embeds documents that are waiting in pending or failed
state. With --stale, only documents older than the staleness window are
reprocessed, which is the same pass long-running commands run at startup.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().IntVarP(&processLimit, "limit", "n", 10, "maximum documents to process")
	processCmd.Flags().BoolVar(&processStale, "stale", false, "only reprocess stale documents")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	ctx := context.Background()

	var outcomes []domain.ProcessOutcome
	var err error
	if processStale {
		outcomes, err = ingestService.RecoverStale(ctx)
	} else {
		outcomes, err = ingestService.ProcessPending(ctx, processLimit)
	}
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}

	if len(outcomes) == 0 {
		cmd.Println("Nothing to process.")
		return nil
	}

	reportOutcomes(cmd, outcomes)
	return nil
}

// reportOutcomes prints per-document results and a summary line.
func reportOutcomes(cmd *cobra.Command, outcomes []domain.ProcessOutcome) {
	completed := 0
	for _, o := range outcomes {
		switch o.Result {
		case domain.ProcessSucceeded:
			completed++
			cmd.Printf("  ok       %s (%d chunks)\n", o.Path, o.ChunksStored)
		case domain.ProcessPartial:
			completed++
			cmd.Printf("  partial  %s (%d chunks stored, %d failed)\n", o.Path, o.ChunksStored, o.ChunksFailed)
		case domain.ProcessFailed:
			cmd.Printf("  failed   %s: %v\n", o.Path, o.Err)
		case domain.ProcessSkipped:
			cmd.Printf("  skipped  %s (claimed by another worker)\n", o.Path)
		}
	}
	cmd.Printf("\nProcessed %d of %d documents.\n", completed, len(outcomes))
}
