// Package mcp provides an MCP (Model Context Protocol) server adapter
// for the vault. It lets AI assistants search, sample and capture
// content without going through the CLI.
package mcp

import "errors"

// Required-port errors returned by Ports.Validate.
var (
	ErrMissingSearchService  = errors.New("mcp: search service is required")
	ErrMissingSamplerService = errors.New("mcp: sampler service is required")
)
