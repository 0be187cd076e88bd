package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	// Extensions is the extension allow-list (empty = DefaultExtensions).
	Extensions []string

	// Workers bounds concurrent extraction (0 = NumCPU).
	Workers int

	// MaxFileSize is the largest file extracted, in bytes (0 = 10MB default).
	// Larger files get a diagnostic instead of text.
	MaxFileSize int64
}

// Loader enumerates a corpus directory and extracts every document's text.
// Its allow-list is fixed at construction.
type Loader struct {
	scanner *Scanner
	opts    LoaderOptions
}

// NewLoader creates a Loader.
func NewLoader(opts LoaderOptions) *Loader {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = DefaultMaxFileSize
	}
	return &Loader{scanner: New(), opts: opts}
}

// Extensions returns the allow-list in use.
func (l *Loader) Extensions() []string {
	out := make([]string, len(l.opts.Extensions))
	copy(out, l.opts.Extensions)
	return out
}

// Load returns one Document per allow-listed file under root, in walk order.
// A missing root yields no documents. A file that cannot be extracted still
// yields a Document whose Text is a diagnostic and whose Err is set; only
// cancellation or a walk failure aborts the load.
func (l *Loader) Load(ctx context.Context, root string) ([]Document, error) {
	start := time.Now()

	files, err := l.scanner.ScanAll(ctx, &ScanOptions{
		RootDir:    root,
		Extensions: l.opts.Extensions,
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	// A cancelled walk ends early without reporting an error
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	docs := make([]Document, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)

	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			docs[i] = l.loadFile(f)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	failed := 0
	for _, d := range docs {
		if d.Err != nil {
			failed++
		}
	}

	slog.Info("kb_documents_loaded",
		slog.String("root", root),
		slog.Int("documents", len(docs)),
		slog.Int("failed", failed),
		slog.Duration("duration", time.Since(start)))

	return docs, nil
}

func (l *Loader) loadFile(f *FileInfo) Document {
	doc := Document{Source: f.Path, Format: f.Format}

	if f.Size > l.opts.MaxFileSize {
		doc.Err = fmt.Errorf("file is %d bytes, limit is %d", f.Size, l.opts.MaxFileSize)
	} else {
		doc.Text, doc.Err = ExtractFile(f.AbsPath, f.Format)
	}

	if doc.Err != nil {
		doc.Text = Diagnostic(f.Path, doc.Err)
		slog.Warn("kb_file_extract_failed",
			slog.String("source", f.Path),
			slog.String("format", string(f.Format)),
			slog.String("error", doc.Err.Error()))
	}
	return doc
}

// Diagnostic is the placeholder text stored for a document that could not
// be extracted.
func Diagnostic(source string, err error) string {
	return fmt.Sprintf("[unreadable document %s: %v]", source, err)
}
