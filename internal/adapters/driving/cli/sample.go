package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	sampleQuery string
	sampleLimit int
)

var sampleCmd = &cobra.Command{
	Use:   "sample [path]",
	Short: "Sample a large document",
	Long: `Samples one document: the chunks most relevant to the query plus the
start, middle and end of the document, in reading order. Useful for
getting oriented inside a book or long transcript without printing it
whole.`,
	Args: cobra.ExactArgs(1),
	RunE: runSample,
}

func init() {
	sampleCmd.Flags().StringVarP(&sampleQuery, "query", "q", "", "query to rank relevant chunks")
	sampleCmd.Flags().IntVarP(&sampleLimit, "limit", "n", 10, "maximum number of chunks")
	rootCmd.AddCommand(sampleCmd)
}

func runSample(cmd *cobra.Command, args []string) error {
	if samplerService == nil {
		return errors.New("sampler service not configured")
	}

	sample, err := samplerService.Sample(context.Background(), args[0], sampleQuery, sampleLimit)
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	if sample.TotalChunks == 0 {
		cmd.Printf("%s has no chunks yet; it is still waiting for processing.\n", sample.Path)
		return nil
	}

	cmd.Printf("%s: %d of %d chunks\n\n", sample.Path, len(sample.Chunks), sample.TotalChunks)
	for _, chunk := range sample.Chunks {
		cmd.Printf("--- [%d/%d] %s ---\n", chunk.Index, sample.TotalChunks-1, chunk.Label)
		cmd.Println(chunk.Content)
		cmd.Println()
	}
	return nil
}
