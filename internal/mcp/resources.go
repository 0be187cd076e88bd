package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/storekb/internal/scanner"
)

// MaxResourceSize is the largest document served as a resource (10MB).
const MaxResourceSize = scanner.DefaultMaxFileSize

// Fixed resource URIs.
const (
	StatusURI  = "storekb://status"
	MetricsURI = "storekb://query_metrics"
)

// DocumentURI returns the resource URI of a corpus document.
func DocumentURI(source string) string {
	return (&url.URL{Scheme: "kb", Path: "/" + source}).String()
}

// registerResources registers the status and metrics resources and one
// resource per corpus document.
func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		Name:        "kb_status",
		URI:         StatusURI,
		Description: "Knowledge base build statistics",
		MIMEType:    "application/json",
	}, s.jsonHandler(StatusURI, func() (any, error) { return s.statusOutput(), nil }))

	s.mcp.AddResource(&mcp.Resource{
		Name:        "query_metrics",
		URI:         MetricsURI,
		Description: "Query telemetry: query types, top terms, zero-result queries and latency",
		MIMEType:    "application/json",
	}, s.jsonHandler(MetricsURI, func() (any, error) {
		m := s.engine.Metrics()
		if m == nil {
			return nil, NewInvalidParamsError("query metrics not available")
		}
		return m.Snapshot(), nil
	}))

	if s.corpusDir == "" {
		return
	}
	for _, source := range s.sources {
		s.mcp.AddResource(&mcp.Resource{
			Name:        filepath.Base(filepath.FromSlash(source)),
			URI:         DocumentURI(source),
			Description: source,
			MIMEType:    MimeTypeForPath(source),
		}, s.makeDocumentHandler(source))
	}
}

func (s *Server) jsonHandler(uri string, get func() (any, error)) mcp.ResourceHandler {
	return func(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		v, err := get()
		if err != nil {
			return nil, err
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, MapError(err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: "application/json", Text: string(data)}},
		}, nil
	}
}

func (s *Server) makeDocumentHandler(source string) mcp.ResourceHandler {
	return func(ctx context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return s.handleReadDocument(ctx, source)
	}
}

// handleReadDocument returns a document's extracted text.
func (s *Server) handleReadDocument(_ context.Context, source string) (*mcp.ReadResourceResult, error) {
	if !isValidPath(source) {
		return nil, NewInvalidParamsError(fmt.Sprintf("invalid path: %s", source))
	}
	if !slices.Contains(s.sources, source) {
		return nil, NewResourceNotFoundError(DocumentURI(source))
	}

	fullPath := filepath.Join(s.corpusDir, filepath.FromSlash(source))
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewResourceNotFoundError(DocumentURI(source))
		}
		return nil, MapError(err)
	}
	if info.Size() > MaxResourceSize {
		return nil, &MCPError{
			Code:    ErrCodeFileTooLarge,
			Message: fmt.Sprintf("document too large: %d bytes (max %d)", info.Size(), MaxResourceSize),
		}
	}

	text, err := scanner.ExtractFile(fullPath, scanner.DetectFormat(source))
	if err != nil {
		text = scanner.Diagnostic(source, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      DocumentURI(source),
			MIMEType: MimeTypeForPath(source),
			Text:     text,
		}},
	}, nil
}

// isValidPath rejects absolute paths and any ".." component.
func isValidPath(path string) bool {
	if path == "" || filepath.IsAbs(path) || strings.HasPrefix(path, "/") {
		return false
	}
	// Windows drive letters
	if len(path) >= 2 && path[1] == ':' {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(path)), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
