package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Scanner discovers knowledge-base files in a corpus directory.
type Scanner struct{}

// New creates a new Scanner instance.
func New() *Scanner {
	return &Scanner{}
}

// Scan discovers all allow-listed files below opts.RootDir in lexical walk
// order. It returns a channel that streams files as they are discovered and
// is closed when scanning is complete.
//
// A root that does not exist or is not a directory yields an empty, closed
// channel rather than an error.
func (s *Scanner) Scan(ctx context.Context, opts *ScanOptions) (<-chan ScanResult, error) {
	if opts == nil {
		opts = &ScanOptions{}
	}

	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		slog.Debug("scan_root_unavailable", slog.String("path", absRoot))
		results := make(chan ScanResult)
		close(results)
		return results, nil
	}

	allowed := normalizeExtensions(opts.Extensions)
	results := make(chan ScanResult, 64)

	go func() {
		defer close(results)
		s.scan(ctx, absRoot, allowed, results)
	}()

	return results, nil
}

// ScanAll is Scan collected into a slice.
func (s *Scanner) ScanAll(ctx context.Context, opts *ScanOptions) ([]*FileInfo, error) {
	ch, err := s.Scan(ctx, opts)
	if err != nil {
		return nil, err
	}

	var files []*FileInfo
	for res := range ch {
		if res.Error != nil {
			return files, res.Error
		}
		files = append(files, res.File)
	}
	return files, nil
}

func (s *Scanner) scan(ctx context.Context, absRoot string, allowed map[string]struct{}, results chan<- ScanResult) {
	err := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			return nil // Skip entries we can't access
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}

		relPath, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		fileInfo := &FileInfo{
			Path:    filepath.ToSlash(relPath),
			AbsPath: path,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Format:  DetectFormat(path),
		}

		select {
		case results <- ScanResult{File: fileInfo}:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) {
		select {
		case results <- ScanResult{Error: err}:
		case <-ctx.Done():
		}
	}
}
