package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/adapters/driving/tui"
	"github.com/arnaldo-delisio/vault-mcp/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for the vault.

Type a query and press Enter to search; select a result to read the
full document.

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Search / Open
  /        - New search
  Esc      - Back
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Panic recovery keeps the stack trace visible after the alt screen
	// is torn down.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	// The TUI is long-running, so drain anything a previous process
	// left behind.
	if ingestService != nil {
		if outcomes, err := ingestService.RecoverStale(cmd.Context()); err != nil {
			logger.Warn("startup recovery failed: %v", err)
		} else if len(outcomes) > 0 {
			logger.Info("startup recovery reprocessed %d documents", len(outcomes))
		}
	}

	app, err := tui.NewApp(&tui.Ports{
		Search:  searchService,
		Library: libraryService,
		Sampler: samplerService,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	app.WithContext(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
