package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var readMeta bool

var readCmd = &cobra.Command{
	Use:   "read [path]",
	Short: "Print a captured document",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

var deleteCmd = &cobra.Command{
	Use:   "delete [path]",
	Short: "Remove a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	readCmd.Flags().BoolVar(&readMeta, "meta", false, "show metadata instead of the body")
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runRead(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	doc, err := libraryService.Get(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	if !readMeta {
		cmd.Println(doc.Content)
		return nil
	}

	cmd.Printf("Document: %s\n\n", doc.Path)
	cmd.Printf("  Title:    %s\n", doc.Title)
	cmd.Printf("  Type:     %s\n", doc.FileType)
	cmd.Printf("  Status:   %s\n", doc.Status)
	if doc.Author != "" {
		cmd.Printf("  Author:   %s\n", doc.Author)
	}
	if len(doc.Guests) > 0 {
		cmd.Printf("  Guests:   %v\n", doc.Guests)
	}
	if doc.Source != "" {
		cmd.Printf("  Source:   %s\n", doc.Source)
	}
	if len(doc.Tags) > 0 {
		cmd.Printf("  Tags:     %v\n", doc.Tags)
	}
	if doc.PublishedAt != nil {
		cmd.Printf("  Published: %s\n", doc.PublishedAt.Format("2006-01-02"))
	}
	cmd.Printf("  Captured: %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	path := args[0]
	if err := ingestService.Delete(context.Background(), path); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted %s\n", path)
	return nil
}
