package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

var (
	searchLimit    int
	searchJSON     bool
	searchFileType string
	searchTags     []string
	searchAuthor   string
	searchSource   string
	searchAfter    string
	searchBefore   string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the vault",
	Long: `Performs hybrid search across all captured documents, fusing keyword
and semantic matches into a single ranking.

The query may be omitted when at least one filter is set, which browses
matching documents by recency instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringVarP(&searchFileType, "type", "t", "", "restrict to one file type")
	searchCmd.Flags().StringSliceVar(&searchTags, "tag", nil, "match any of these tags (repeatable)")
	searchCmd.Flags().StringVar(&searchAuthor, "author", "", "match the author or any guest")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "restrict to one capture source")
	searchCmd.Flags().StringVar(&searchAfter, "after", "", "only documents dated on or after (YYYY-MM-DD)")
	searchCmd.Flags().StringVar(&searchBefore, "before", "", "only documents dated on or before (YYYY-MM-DD)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	filters, err := searchFilters()
	if err != nil {
		return err
	}

	opts := domain.SearchOptions{
		Limit:   searchLimit,
		Filters: filters,
	}

	results, err := searchService.Search(context.Background(), query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	return outputSearchTable(cmd, results)
}

// searchFilters translates the filter flags into the typed form.
func searchFilters() (domain.SearchFilters, error) {
	filters := domain.SearchFilters{
		Tags:   searchTags,
		Author: searchAuthor,
		Source: searchSource,
	}

	if searchFileType != "" {
		ft := domain.FileType(searchFileType)
		if !ft.IsValid() {
			return filters, fmt.Errorf("unknown file type %q", searchFileType)
		}
		filters.FileType = ft
	}

	if searchAfter != "" {
		after, err := time.Parse("2006-01-02", searchAfter)
		if err != nil {
			return filters, fmt.Errorf("invalid after date %q: %w", searchAfter, err)
		}
		filters.After = &after
	}
	if searchBefore != "" {
		before, err := time.Parse("2006-01-02", searchBefore)
		if err != nil {
			return filters, fmt.Errorf("invalid before date %q: %w", searchBefore, err)
		}
		filters.Before = &before
	}
	return filters, nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Document.Title
		if title == "" {
			title = results[i].Document.Path
		}

		cmd.Printf("  [%d] %s (%.4f)\n", i+1, title, results[i].Score)
		cmd.Printf("      %s [%s]\n", results[i].Document.Path, results[i].Document.FileType)
		if results[i].Document.Status != domain.StatusComplete {
			cmd.Printf("      Status: %s (keyword match only)\n", results[i].Document.Status)
		}
		if results[i].Snippet != "" {
			cmd.Printf("      %s\n", results[i].Snippet)
		}
		cmd.Println()
	}

	return nil
}
