package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

var (
	listFileType string
	listJSON     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List captured documents",
	Long:  `Lists all captured documents, most recently updated first.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listFileType, "type", "t", "", "restrict to one file type")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	docs, err := libraryService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if listFileType != "" {
		ft := domain.FileType(listFileType)
		if !ft.IsValid() {
			return fmt.Errorf("unknown file type %q", listFileType)
		}
		filtered := docs[:0]
		for i := range docs {
			if docs[i].FileType == ft {
				filtered = append(filtered, docs[i])
			}
		}
		docs = filtered
	}

	if listJSON {
		data, err := json.MarshalIndent(docs, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal documents: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(docs) == 0 {
		cmd.Println("The vault is empty. Capture something with 'vault add'.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].Path)
		cmd.Printf("    Title:  %s\n", docs[i].Title)
		cmd.Printf("    Type:   %s  Status: %s\n", docs[i].FileType, docs[i].Status)
		if len(docs[i].Tags) > 0 {
			cmd.Printf("    Tags:   %v\n", docs[i].Tags)
		}
		cmd.Println()
	}
	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}
