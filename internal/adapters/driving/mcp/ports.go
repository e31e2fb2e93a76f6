package mcp

import (
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP
// server. This provides a single injection point.
type Ports struct {
	// Search provides hybrid vault-wide retrieval.
	Search driving.SearchService

	// Sampler answers queries scoped to one large document.
	Sampler driving.SamplerService

	// Ingest captures new content.
	Ingest driving.IngestService

	// Library exposes the captured collection as resources.
	Library driving.LibraryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Sampler == nil {
		return ErrMissingSamplerService
	}
	// Ingest and Library are optional; their tools and resources
	// degrade to not-found when absent.
	return nil
}
