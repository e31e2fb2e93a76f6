package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

func TestProcessCmd_NothingToProcess(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Nothing to process")
}

func TestProcessCmd_ReportsOutcomes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestService = &mockIngestService{
		outcomes: []domain.ProcessOutcome{
			{Path: "notes/good.md", Result: domain.ProcessSucceeded, ChunksStored: 4},
			{Path: "notes/half.md", Result: domain.ProcessPartial, ChunksStored: 3, ChunksFailed: 1},
			{Path: "notes/bad.md", Result: domain.ProcessFailed, Err: errors.New("no embeddings produced")},
			{Path: "notes/busy.md", Result: domain.ProcessSkipped},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "ok       notes/good.md (4 chunks)")
	assert.Contains(t, out, "partial  notes/half.md (3 chunks stored, 1 failed)")
	assert.Contains(t, out, "failed   notes/bad.md")
	assert.Contains(t, out, "skipped  notes/busy.md")
	assert.Contains(t, out, "Processed 2 of 4 documents")
}

func TestProcessCmd_StaleFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestService = &mockIngestService{
		outcomes: []domain.ProcessOutcome{
			{Path: "notes/old.md", Result: domain.ProcessSucceeded, ChunksStored: 2},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"process", "--stale"})
	defer func() {
		rootCmd.SetArgs(nil)
		processStale = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "notes/old.md")
}

func TestStatusCmd_ShowsCounts(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"status"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Documents:  3")
	assert.Contains(t, out, "Complete:   2")
	assert.Contains(t, out, "Pending:    1")
	assert.Contains(t, out, "1 documents are waiting")
}

func TestSampleCmd_PrintsChunks(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sample", "notes/mock.md"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "3 of 3 chunks")
	assert.Contains(t, out, domain.LabelIntroduction)
	assert.Contains(t, out, domain.LabelEnd)
}

func TestDeleteCmd_DeletesByPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := &mockIngestService{}
	ingestService = mock

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "notes/mock.md"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []string{"notes/mock.md"}, mock.deleted)
	assert.Contains(t, buf.String(), "Deleted notes/mock.md")
}
