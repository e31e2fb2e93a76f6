package domain

import "time"

// ProcessingStatus tracks where a document sits in the embedding pipeline.
type ProcessingStatus string

// Processing states. A document moves pending -> processing -> complete,
// with processing -> failed -> pending as the recoverable retry loop.
const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusComplete   ProcessingStatus = "complete"
	StatusFailed     ProcessingStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s ProcessingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusComplete, StatusFailed:
		return true
	default:
		return false
	}
}

// NeedsProcessing returns true if the document is waiting for chunking
// and embedding. This is the handoff contract for background workers.
func (s ProcessingStatus) NeedsProcessing() bool {
	return s == StatusPending || s == StatusFailed
}

// String returns the string representation.
func (s ProcessingStatus) String() string {
	return string(s)
}

// FileType categorises captured content.
type FileType string

// Recognised file types. Library types carry a published date.
const (
	FileTypeNote       FileType = "note"
	FileTypeJournal    FileType = "journal"
	FileTypeArticle    FileType = "article"
	FileTypeTranscript FileType = "transcript"
	FileTypePDF        FileType = "pdf"
	FileTypeBook       FileType = "book"
)

// IsValid returns true if the file type is recognised.
func (t FileType) IsValid() bool {
	switch t {
	case FileTypeNote, FileTypeJournal, FileTypeArticle, FileTypeTranscript, FileTypePDF, FileTypeBook:
		return true
	default:
		return false
	}
}

// IsLibrary returns true for captured external content, which is dated
// by its published date rather than its capture date.
func (t FileType) IsLibrary() bool {
	switch t {
	case FileTypeArticle, FileTypeTranscript, FileTypePDF, FileTypeBook:
		return true
	default:
		return false
	}
}

// Document is a captured piece of long-form text.
// Its body is immutable once chunked; re-ingestion at the same path
// starts a fresh processing cycle.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the vault-relative identifier, unique across the vault.
	Path string

	// Title is the human-readable title.
	Title string

	// Content is the full raw text body.
	Content string

	// FileType categorises the document.
	FileType FileType

	// Tags are free-form labels from the document frontmatter.
	Tags []string

	// Author is the primary author or speaker.
	Author string

	// Guests lists additional speakers (podcast/video transcripts).
	Guests []string

	// Source records where the content came from (url, feed, manual).
	Source string

	// PublishedAt is the original publication date for library items.
	PublishedAt *time.Time

	// Status is the embedding-pipeline state, mutated only by the
	// ingest pipeline.
	Status ProcessingStatus

	// Metadata carries any remaining frontmatter keys.
	Metadata map[string]any

	// CreatedAt is when the document was first captured.
	CreatedAt time.Time

	// UpdatedAt increases monotonically with every status change.
	UpdatedAt time.Time
}

// FilterDate returns the date used by range filters: the published date
// for library items, the capture date otherwise.
func (d *Document) FilterDate() time.Time {
	if d.FileType.IsLibrary() && d.PublishedAt != nil {
		return *d.PublishedAt
	}
	return d.CreatedAt
}

// Chunk is a bounded-length, independently embeddable span of a document.
// Chunk indices for a document form the contiguous range [0, N-1].
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the owning Document.
	DocumentID string

	// Index is the 0-based position within the document.
	Index int

	// Content is the chunk text, including the overlap shared with
	// its neighbours.
	Content string

	// Embedding is the vector representation; nil until computed.
	Embedding []float32

	// CreatedAt is when the chunk was stored.
	CreatedAt time.Time
}
