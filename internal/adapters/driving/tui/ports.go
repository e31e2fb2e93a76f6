// Package tui provides an interactive terminal user interface for the
// vault. It implements a driving adapter following hexagonal
// architecture principles.
package tui

import (
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Search provides hybrid vault-wide retrieval.
	Search driving.SearchService

	// Library reads captured documents for the preview pane.
	Library driving.LibraryService

	// Sampler navigates inside large documents. Optional.
	Sampler driving.SamplerService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	return nil
}
