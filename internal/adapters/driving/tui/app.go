package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

// focusArea tracks which pane receives keyboard input.
type focusArea int

const (
	focusInput focusArea = iota
	focusResults
	focusPreview
)

// searchCompletedMsg carries search results back into the update loop.
type searchCompletedMsg struct {
	query   string
	results []domain.SearchResult
	err     error
}

// previewLoadedMsg carries a document body for the preview pane.
type previewLoadedMsg struct {
	doc *domain.Document
	err error
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *Styles

	input    textinput.Model
	preview  viewport.Model
	focus    focusArea
	results  []domain.SearchResult
	selected int
	query    string
	err      error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Search the vault..."
	input.Focus()
	input.CharLimit = 200

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  DefaultStyles(),
		input:   input,
		preview: viewport.New(80, 20),
		focus:   focusInput,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("vault"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.preview.Width = msg.Width - 4
		a.preview.Height = msg.Height - 6
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case searchCompletedMsg:
		// Stale responses from an earlier query are dropped.
		if msg.query != a.query {
			return a, nil
		}
		a.err = msg.err
		a.results = msg.results
		a.selected = 0
		if msg.err == nil && len(msg.results) > 0 {
			a.focus = focusResults
			a.input.Blur()
		}
		return a, nil

	case previewLoadedMsg:
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		a.focus = focusPreview
		a.preview.SetContent(msg.doc.Content)
		a.preview.GotoTop()
		return a, nil
	}

	if a.focus == focusInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

//nolint:gocyclo // central key dispatch
func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.focus {
	case focusInput:
		switch msg.Type {
		case tea.KeyEnter:
			a.query = strings.TrimSpace(a.input.Value())
			if a.query == "" {
				return a, nil
			}
			return a, a.search(a.query)
		case tea.KeyEsc:
			return a, tea.Quit
		default:
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(msg)
			return a, cmd
		}

	case focusResults:
		switch msg.String() {
		case "up", "k":
			if a.selected > 0 {
				a.selected--
			}
		case "down", "j":
			if a.selected < len(a.results)-1 {
				a.selected++
			}
		case "enter":
			if len(a.results) > 0 {
				return a, a.loadPreview(a.results[a.selected].Document.Path)
			}
		case "esc", "/":
			a.focus = focusInput
			a.input.Focus()
			return a, textinput.Blink
		case "q":
			return a, tea.Quit
		}
		return a, nil

	case focusPreview:
		switch msg.String() {
		case "esc", "q":
			a.focus = focusResults
			return a, nil
		default:
			var cmd tea.Cmd
			a.preview, cmd = a.preview.Update(msg)
			return a, cmd
		}
	}
	return a, nil
}

// search runs the query off the update loop.
func (a *App) search(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := a.ports.Search.Search(a.ctx, query, domain.SearchOptions{})
		return searchCompletedMsg{query: query, results: results, err: err}
	}
}

// loadPreview fetches the full document body.
func (a *App) loadPreview(path string) tea.Cmd {
	return func() tea.Msg {
		doc, err := a.ports.Library.Get(a.ctx, path)
		return previewLoadedMsg{doc: doc, err: err}
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.styles.Title.Render("vault"))
	b.WriteString("\n\n")

	if a.focus == focusPreview {
		doc := a.results[a.selected].Document
		b.WriteString(a.styles.Meta.Render(doc.Path))
		b.WriteString("\n")
		b.WriteString(a.styles.Preview.Render(a.preview.View()))
		b.WriteString("\n")
		b.WriteString(a.styles.Help.Render("esc back  ↑/↓ scroll  ctrl+c quit"))
		return b.String()
	}

	b.WriteString(a.styles.Prompt.Render("> "))
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	if a.err != nil {
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
		b.WriteString("\n")
	}

	switch {
	case a.query != "" && len(a.results) == 0 && a.err == nil:
		b.WriteString(a.styles.Meta.Render("No results."))
		b.WriteString("\n")
	default:
		for i := range a.results {
			a.renderResult(&b, i)
		}
	}

	b.WriteString("\n")
	if a.focus == focusInput {
		b.WriteString(a.styles.Help.Render("enter search  esc quit"))
	} else {
		b.WriteString(a.styles.Help.Render("↑/↓ select  enter open  / new search  q quit"))
	}
	return b.String()
}

func (a *App) renderResult(b *strings.Builder, i int) {
	result := a.results[i]
	title := result.Document.Title
	if title == "" {
		title = result.Document.Path
	}

	line := fmt.Sprintf("%s  %s", title,
		a.styles.Meta.Render(fmt.Sprintf("(%s, %.4f)", result.Document.FileType, result.Score)))

	if a.focus == focusResults && i == a.selected {
		b.WriteString(a.styles.Selected.Render("> " + line))
	} else {
		b.WriteString(a.styles.Result.Render(line))
	}
	b.WriteString("\n")

	if result.Snippet != "" {
		b.WriteString(a.styles.Snippet.Render(truncate(result.Snippet, a.width-8)))
		b.WriteString("\n")
	}
}

// truncate shortens a line to fit the terminal width.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// Accessors used by tests.

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult { return a.results }

// SelectedIndex returns the index of the highlighted result.
func (a *App) SelectedIndex() int { return a.selected }

// Query returns the last submitted query.
func (a *App) Query() string { return a.query }

// Err returns the last error.
func (a *App) Err() error { return a.err }
