package domain

// ProcessResult classifies one document's trip through the embedding
// pipeline. Callers receive it instead of digging policy out of logs.
type ProcessResult string

// Pipeline outcomes.
const (
	// ProcessSucceeded means every chunk was stored with an embedding
	// (or without one when no embedder is configured).
	ProcessSucceeded ProcessResult = "succeeded"

	// ProcessPartial means some chunks failed to embed and were skipped;
	// the rest were stored and the document completed.
	ProcessPartial ProcessResult = "partial"

	// ProcessFailed means the document produced no usable chunks and
	// was returned to the retry loop.
	ProcessFailed ProcessResult = "failed"

	// ProcessSkipped means another worker held the claim.
	ProcessSkipped ProcessResult = "skipped"
)

// ProcessOutcome reports what happened to one document.
type ProcessOutcome struct {
	// DocumentID identifies the processed document.
	DocumentID string

	// Path is the document's vault path, for user-facing messaging.
	Path string

	// Result classifies the outcome.
	Result ProcessResult

	// ChunksStored counts chunks persisted.
	ChunksStored int

	// ChunksFailed counts chunks dropped after embedding failures.
	ChunksFailed int

	// Err carries the terminal error for failed outcomes.
	Err error
}

// Completed returns true if the document reached the complete state.
func (o ProcessOutcome) Completed() bool {
	return o.Result == ProcessSucceeded || o.Result == ProcessPartial
}
