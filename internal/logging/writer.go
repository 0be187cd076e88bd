package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// RotatingWriter is an io.Writer that rotates its file once it reaches a
// size limit: server.log -> server.log.1 -> ... -> server.log.N.
type RotatingWriter struct {
	path     string
	maxSize  int64
	maxFiles int

	mu       sync.Mutex
	file     *os.File
	written  int64
	syncEach bool
}

// NewRotatingWriter opens (or creates) path for appending.
// Every write is synced so `storekb logs -f` sees it immediately.
func NewRotatingWriter(path string, maxSizeMB, maxFiles int) (*RotatingWriter, error) {
	w := &RotatingWriter{
		path:     path,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
		syncEach: true,
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

// SetSyncEach toggles syncing after every write.
func (w *RotatingWriter) SetSyncEach(enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.syncEach = enabled
}

// Write implements io.Writer.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written > 0 && w.written+int64(len(p)) > w.maxSize {
		if err := w.rotate(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "log rotation failed: %v\n", err)
		}
	}
	if w.file == nil {
		return 0, fmt.Errorf("log file %s is closed", w.path)
	}

	n, err := w.file.Write(p)
	w.written += int64(n)
	if w.syncEach && err == nil {
		_ = w.file.Sync()
	}
	return n, err
}

// Close closes the underlying file.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// Sync flushes the file to disk.
func (w *RotatingWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	w.file = f
	w.written = info.Size()
	return nil
}

func (w *RotatingWriter) rotate() error {
	if w.file != nil {
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close log file: %w", err)
		}
		w.file = nil
	}

	// Highest generation first so renames never collide
	for _, r := range RotatedFiles(w.path) {
		if r.Generation >= w.maxFiles {
			_ = os.Remove(r.Path)
			continue
		}
		_ = os.Rename(r.Path, fmt.Sprintf("%s.%d", w.path, r.Generation+1))
	}

	if err := os.Rename(w.path, w.path+".1"); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	w.written = 0
	return w.open()
}

// RotatedFile is one numbered sibling of a log file.
type RotatedFile struct {
	Path       string
	Generation int
}

// RotatedFiles lists the numbered siblings of path, highest generation first.
func RotatedFiles(path string) []RotatedFile {
	base := filepath.Base(path)
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), base+".*"))
	if err != nil {
		return nil
	}

	var files []RotatedFile
	for _, m := range matches {
		n, err := strconv.Atoi(strings.TrimPrefix(filepath.Base(m), base+"."))
		if err != nil || n < 1 {
			continue
		}
		files = append(files, RotatedFile{Path: m, Generation: n})
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Generation > files[j].Generation
	})
	return files
}
