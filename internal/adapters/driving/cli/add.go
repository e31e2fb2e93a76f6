package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

var (
	addPath      string
	addTitle     string
	addFileType  string
	addTags      []string
	addAuthor    string
	addGuests    []string
	addSource    string
	addPublished string
)

var addCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Capture a file into the vault",
	Long: `Captures a text file into the vault. Use "-" to read from stdin,
in which case --path is required.

The document is stored immediately; chunking and embedding happen in
the background. Small documents are embedded inline when an embedding
provider is configured.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addPath, "path", "", "vault path (defaults to the file path)")
	addCmd.Flags().StringVar(&addTitle, "title", "", "document title (defaults to the file name)")
	addCmd.Flags().StringVarP(&addFileType, "type", "t", "", "file type: note, journal, article, transcript, pdf, book")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "tag to attach (repeatable)")
	addCmd.Flags().StringVar(&addAuthor, "author", "", "author or primary speaker")
	addCmd.Flags().StringSliceVar(&addGuests, "guest", nil, "additional speaker (repeatable)")
	addCmd.Flags().StringVar(&addSource, "source", "", "where the content came from")
	addCmd.Flags().StringVar(&addPublished, "published", "", "publication date (YYYY-MM-DD)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	content, vaultPath, err := readAddInput(args[0])
	if err != nil {
		return err
	}
	if addPath != "" {
		vaultPath = addPath
	}

	req := driving.IngestRequest{
		Path:     vaultPath,
		Title:    addTitle,
		Content:  content,
		FileType: domain.FileType(addFileType),
		Tags:     addTags,
		Author:   addAuthor,
		Guests:   addGuests,
		Source:   addSource,
	}

	if addPublished != "" {
		published, err := time.Parse("2006-01-02", addPublished)
		if err != nil {
			return fmt.Errorf("invalid published date %q: %w", addPublished, err)
		}
		req.PublishedAt = &published
	}

	doc, err := ingestService.Ingest(context.Background(), req)
	if err != nil {
		return fmt.Errorf("capture failed: %w", err)
	}

	cmd.Printf("Captured %s\n", doc.Path)
	cmd.Printf("  Title:  %s\n", doc.Title)
	cmd.Printf("  Type:   %s\n", doc.FileType)
	cmd.Printf("  Status: %s\n", doc.Status)
	if doc.Status == domain.StatusPending {
		cmd.Println("\nEmbeddings will be computed in the background.")
		cmd.Println("Run 'vault process' to process waiting documents now.")
	}
	return nil
}

// readAddInput loads content from a file, or from stdin for "-".
func readAddInput(arg string) (content, vaultPath string, err error) {
	if arg == "-" {
		if addPath == "" {
			return "", "", errors.New("--path is required when reading from stdin")
		}
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), addPath, nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", "", fmt.Errorf("reading file: %w", err)
	}
	return string(data), filepath.ToSlash(strings.TrimPrefix(arg, "./")), nil
}
