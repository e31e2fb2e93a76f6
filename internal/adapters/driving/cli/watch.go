package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/arnaldo-delisio/vault-mcp/internal/core/domain"
	"github.com/arnaldo-delisio/vault-mcp/internal/core/ports/driving"
	"github.com/arnaldo-delisio/vault-mcp/internal/logger"
)

// processInterval is how often the watcher drains the pending queue.
const processInterval = 30 * time.Second

// writeSettle delays ingestion after a write event so editors that save
// in multiple syscalls produce one capture, not several.
const writeSettle = 500 * time.Millisecond

var (
	watchFileType string
	watchSync     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a folder and capture files dropped into it",
	Long: `Watches a directory tree and captures text files as they appear or
change. Vault paths mirror the file's position under the watched root.
Deleting a file removes its document from the vault.

Only .md and .txt files are captured. The watcher also drains the
pending embedding queue periodically, so documents complete without a
separate 'vault process' run.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchFileType, "type", "t", "note", "file type for captured files")
	watchCmd.Flags().BoolVar(&watchSync, "sync", false, "capture existing files before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving directory: %w", err)
	}

	fileType := domain.FileType(watchFileType)
	if !fileType.IsValid() {
		return fmt.Errorf("unknown file type %q", watchFileType)
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Long-running command: pick up documents left behind by earlier runs.
	if outcomes, err := ingestService.RecoverStale(ctx); err != nil {
		logger.Warn("startup recovery failed: %v", err)
	} else if len(outcomes) > 0 {
		logger.Info("startup recovery reprocessed %d documents", len(outcomes))
	}

	w, err := newFolderWatcher(ingestService, root, fileType)
	if err != nil {
		return err
	}
	defer w.Close()

	if watchSync {
		captured, err := w.syncExisting(ctx)
		if err != nil {
			return err
		}
		cmd.Printf("Captured %d existing files.\n", captured)
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", root)
	return w.run(ctx, cmd)
}

// folderWatcher turns filesystem events under a root into vault captures.
type folderWatcher struct {
	ingest   driving.IngestService
	watcher  *fsnotify.Watcher
	root     string
	fileType domain.FileType
}

func newFolderWatcher(ingest driving.IngestService, root string, fileType domain.FileType) (*folderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &folderWatcher{
		ingest:   ingest,
		watcher:  watcher,
		root:     root,
		fileType: fileType,
	}

	// fsnotify does not recurse, so every subdirectory gets its own watch.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", root, err)
	}

	return w, nil
}

func (w *folderWatcher) Close() error {
	return w.watcher.Close()
}

// syncExisting captures every matching file already under the root.
func (w *folderWatcher) syncExisting(ctx context.Context) (int, error) {
	captured := 0
	err := filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !capturableFile(path) {
			return nil
		}
		if err := w.captureFile(ctx, path); err != nil {
			logger.Warn("capture failed for %s: %v", path, err)
			return nil
		}
		captured++
		return nil
	})
	return captured, err
}

// run processes events until the context is cancelled.
func (w *folderWatcher) run(ctx context.Context, cmd *cobra.Command) error {
	ticker := time.NewTicker(processInterval)
	defer ticker.Stop()

	// One timer per path absorbs bursts of write events.
	settling := make(map[string]*time.Timer)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, cmd, event, settling)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-ticker.C:
			outcomes, err := w.ingest.ProcessPending(ctx, domain.DefaultRecoveryBatchSize)
			if err != nil {
				logger.Warn("background processing failed: %v", err)
				continue
			}
			for _, o := range outcomes {
				if o.Completed() {
					cmd.Printf("Embedded %s (%d chunks)\n", o.Path, o.ChunksStored)
				}
			}
		}
	}
}

func (w *folderWatcher) handleEvent(
	ctx context.Context,
	cmd *cobra.Command,
	event fsnotify.Event,
	settling map[string]*time.Timer,
) {
	switch {
	case event.Op.Has(fsnotify.Create):
		// New directories need their own watch to be seen at all.
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				logger.Warn("cannot watch %s: %v", event.Name, err)
			}
			return
		}
		w.scheduleCapture(ctx, cmd, event.Name, settling)

	case event.Op.Has(fsnotify.Write):
		w.scheduleCapture(ctx, cmd, event.Name, settling)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if !capturableFile(event.Name) {
			return
		}
		path := w.vaultPath(event.Name)
		if err := w.ingest.Delete(ctx, path); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				logger.Warn("delete failed for %s: %v", path, err)
			}
			return
		}
		cmd.Printf("Removed %s\n", path)
	}
}

func (w *folderWatcher) scheduleCapture(
	ctx context.Context,
	cmd *cobra.Command,
	file string,
	settling map[string]*time.Timer,
) {
	if !capturableFile(file) {
		return
	}
	if timer, ok := settling[file]; ok {
		timer.Stop()
	}
	settling[file] = time.AfterFunc(writeSettle, func() {
		if err := w.captureFile(ctx, file); err != nil {
			logger.Warn("capture failed for %s: %v", file, err)
			return
		}
		cmd.Printf("Captured %s\n", w.vaultPath(file))
	})
}

// captureFile reads one file and hands it to the ingest pipeline.
func (w *folderWatcher) captureFile(ctx context.Context, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	_, err = w.ingest.Ingest(ctx, driving.IngestRequest{
		Path:     w.vaultPath(file),
		Content:  string(data),
		FileType: w.fileType,
	})
	return err
}

// vaultPath maps an absolute file path to its vault-relative form.
func (w *folderWatcher) vaultPath(file string) string {
	rel, err := filepath.Rel(w.root, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	return filepath.ToSlash(rel)
}

// capturableFile limits the watcher to plain text content.
func capturableFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".txt":
		return !strings.HasPrefix(filepath.Base(path), ".")
	default:
		return false
	}
}
