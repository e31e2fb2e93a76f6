package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
)

func resetAddFlags() {
	addPath = ""
	addTitle = ""
	addFileType = ""
	addTags = nil
	addAuthor = ""
	addGuests = nil
	addSource = ""
	addPublished = ""
}

func TestAddCmd_CapturesFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	mock := &mockIngestService{
		document: &domain.Document{
			Path:     "notes/thoughts.md",
			Title:    "Thoughts",
			FileType: domain.FileTypeNote,
			Status:   domain.StatusComplete,
		},
	}
	ingestService = mock

	dir := t.TempDir()
	file := filepath.Join(dir, "thoughts.md")
	require.NoError(t, os.WriteFile(file, []byte("some captured thoughts"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"add", file, "--path", "notes/thoughts.md", "--title", "Thoughts", "--tag", "inbox"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Captured notes/thoughts.md")
	assert.Equal(t, "notes/thoughts.md", mock.lastRequest.Path)
	assert.Equal(t, "some captured thoughts", mock.lastRequest.Content)
	assert.Equal(t, []string{"inbox"}, mock.lastRequest.Tags)
}

func TestAddCmd_PendingDocumentHint(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	dir := t.TempDir()
	file := filepath.Join(dir, "long.md")
	require.NoError(t, os.WriteFile(file, []byte("a long document body"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"add", file})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "background")
	assert.Contains(t, buf.String(), "vault process")
}

func TestAddCmd_MissingFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"add", "/no/such/file.md"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "reading file")
}

func TestAddCmd_StdinRequiresPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"add", "-"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--path is required")
}

func TestAddCmd_InvalidPublishedDate(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer resetAddFlags()

	dir := t.TempDir()
	file := filepath.Join(dir, "article.md")
	require.NoError(t, os.WriteFile(file, []byte("an article"), 0600))

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"add", file, "--published", "june 2024"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid published date")
}
