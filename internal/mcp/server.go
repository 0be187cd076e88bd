package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/storekb/internal/config"
	skerrors "github.com/Aman-CERP/storekb/internal/errors"
	"github.com/Aman-CERP/storekb/internal/search"
	"github.com/Aman-CERP/storekb/internal/shopify"
	"github.com/Aman-CERP/storekb/internal/telemetry"
	"github.com/Aman-CERP/storekb/internal/ui"
	"github.com/Aman-CERP/storekb/pkg/version"
)

// ServerName is the implementation name reported to MCP clients.
const ServerName = "storekb"

// Searcher answers knowledge-base queries.
type Searcher interface {
	Search(query string, topK int) []search.Result
	Stats() search.EngineStats
	Metrics() *telemetry.QueryMetrics
}

// Server is the MCP server for storekb. It exposes the knowledge base and,
// when Shopify is configured, the order lookup tools.
type Server struct {
	mcp    *mcp.Server
	engine Searcher
	status ui.StatusInfo
	orders *shopify.Tools
	config *config.Config
	logger *slog.Logger

	// Corpus documents served as resources
	corpusDir string
	sources   []string
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// Option configures a Server.
type Option func(*Server)

// WithOrderTools enables the Shopify order tools.
func WithOrderTools(t *shopify.Tools) Option {
	return func(s *Server) {
		s.orders = t
	}
}

// WithDocuments exposes the listed corpus documents as resources.
func WithDocuments(corpusDir string, sources []string) Option {
	return func(s *Server) {
		s.corpusDir = corpusDir
		s.sources = append([]string(nil), sources...)
	}
}

// WithLogger sets the server logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

const (
	toolSearch          = "search_knowledge_base"
	toolStatus          = "kb_status"
	toolOrderByNumber   = "get_order_by_number"
	toolOrderByID       = "get_order_by_id"
	toolOrdersByEmail   = "search_orders_by_email"
	toolRecentOrders    = "get_recent_orders"
	searchDescription   = "Search the store's knowledge base (FAQ, shipping, returns, product notes) and return the most relevant passages with their source document. Chinese questions are matched against English documents."
	statusDescription   = "Report how many documents and chunks the knowledge base holds, how many files were unreadable, and whether order lookup is available."
	byNumberDescription = "Look up a Shopify order by its order number, such as 1001 or #1001."
	byIDDescription     = "Look up a Shopify order by its numeric order ID."
	byEmailDescription  = "List a customer's Shopify orders by email address."
	recentDescription   = "List the most recent Shopify orders."
)

// NewServer creates a new MCP server over engine. status describes the
// knowledge base engine serves.
func NewServer(engine Searcher, status ui.StatusInfo, cfg *config.Config, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, errors.New("search engine is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}

	s := &Server{
		engine: engine,
		status: status,
		config: cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    ServerName,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	s.registerResources()

	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return ServerName, version.Version
}

// OrdersEnabled reports whether the order tools are registered.
func (s *Server) OrdersEnabled() bool {
	return s.orders != nil
}

// ListTools returns the registered tools.
func (s *Server) ListTools() []ToolInfo {
	tools := []ToolInfo{
		{Name: toolSearch, Description: searchDescription},
		{Name: toolStatus, Description: statusDescription},
	}
	if s.OrdersEnabled() {
		tools = append(tools,
			ToolInfo{Name: toolOrderByNumber, Description: byNumberDescription},
			ToolInfo{Name: toolOrderByID, Description: byIDDescription},
			ToolInfo{Name: toolOrdersByEmail, Description: byEmailDescription},
			ToolInfo{Name: toolRecentOrders, Description: recentDescription},
		)
	}
	return tools
}

// CallTool invokes a tool by name with JSON-decoded arguments and returns
// its text result.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case toolSearch:
		query, ok := args["query"].(string)
		if !ok {
			return "", NewInvalidParamsError("query parameter is required and must be a string")
		}
		text, _ := s.search(query, optionalIntArg(args, "top_k"))
		return text, nil
	case toolStatus:
		return FormatStatus(s.statusOutput()), nil
	}

	if !s.OrdersEnabled() {
		switch name {
		case toolOrderByNumber, toolOrderByID, toolOrdersByEmail, toolRecentOrders:
			return "", MapError(ErrShopifyNotConfigured)
		}
		return "", NewMethodNotFoundError(name)
	}

	var out OrderOutput
	switch name {
	case toolOrderByNumber:
		number, _ := args["order_number"].(string)
		out = s.lookupOrder(ctx, name, func() (string, error) { return s.orders.GetOrderByNumber(ctx, number) })
	case toolOrderByID:
		id, _ := args["order_id"].(string)
		out = s.lookupOrder(ctx, name, func() (string, error) { return s.orders.GetOrderByID(ctx, id) })
	case toolOrdersByEmail:
		email, _ := args["email"].(string)
		limit := intArg(args, "limit")
		out = s.lookupOrder(ctx, name, func() (string, error) { return s.orders.SearchOrdersByEmail(ctx, email, limit) })
	case toolRecentOrders:
		limit := intArg(args, "limit")
		out = s.lookupOrder(ctx, name, func() (string, error) { return s.orders.GetRecentOrders(ctx, limit) })
	default:
		return "", NewMethodNotFoundError(name)
	}
	return out.Text, nil
}

// search runs a knowledge-base query. A nil topK uses the configured
// default; the engine raises values below 1 to 1.
func (s *Server) search(query string, topKArg *int) (string, []search.Result) {
	start := time.Now()
	requestID := generateRequestID()

	topK := s.config.Knowledge.DefaultTopK
	if topKArg != nil {
		topK = *topKArg
	}

	results := s.engine.Search(query, topK)

	s.logger.Info("search_completed",
		slog.String("request_id", requestID),
		slog.String("query", query),
		slog.Int("top_k", topK),
		slog.Int("result_count", len(results)),
		slog.Duration("duration", time.Since(start)))

	return search.FormatResults(results, s.config.Knowledge.PreviewChars), results
}

// lookupOrder runs an order tool. Failures become a readable message rather
// than a protocol error, so the agent can relay them to the customer.
func (s *Server) lookupOrder(ctx context.Context, tool string, fn func() (string, error)) OrderOutput {
	start := time.Now()
	requestID := generateRequestID()

	text, err := fn()
	if err != nil {
		attrs := append([]any{
			slog.String("request_id", requestID),
			slog.String("tool", tool),
			slog.Duration("duration", time.Since(start)),
		}, errorAttrs(ctx, err)...)
		s.logger.Warn("order_tool_failed", attrs...)
		return OrderOutput{Text: shopify.ErrorText(err), Failed: true}
	}

	s.logger.Info("order_tool_completed",
		slog.String("request_id", requestID),
		slog.String("tool", tool),
		slog.Duration("duration", time.Since(start)))
	return OrderOutput{Text: text}
}

func (s *Server) statusOutput() StatusOutput {
	stats := s.engine.Stats()
	out := StatusOutput{
		CorpusDir:       s.status.CorpusDir,
		Documents:       s.status.Documents,
		Unreadable:      s.status.Unreadable,
		Chunks:          s.status.Chunks,
		VocabularySize:  s.status.VocabularySize,
		BuildDurationMS: s.status.BuildDuration.Milliseconds(),
		Extensions:      append([]string{}, s.status.Extensions...),
		Shopify:         s.status.Shopify,
		CachedQueries:   stats.CachedQueries,
	}
	if !s.status.BuiltAt.IsZero() {
		out.BuiltAt = s.status.BuiltAt.Format(time.RFC3339)
	}
	if m := s.engine.Metrics(); m != nil {
		snap := m.Snapshot()
		out.TotalQueries = snap.TotalQueries
		out.ZeroResultPct = snap.ZeroResultPercentage()
	}
	return out
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{Name: toolSearch, Description: searchDescription}, s.mcpSearchHandler)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: toolStatus, Description: statusDescription}, s.mcpStatusHandler)

	count := 2
	if s.OrdersEnabled() {
		mcp.AddTool(s.mcp, &mcp.Tool{Name: toolOrderByNumber, Description: byNumberDescription}, s.mcpOrderByNumberHandler)
		mcp.AddTool(s.mcp, &mcp.Tool{Name: toolOrderByID, Description: byIDDescription}, s.mcpOrderByIDHandler)
		mcp.AddTool(s.mcp, &mcp.Tool{Name: toolOrdersByEmail, Description: byEmailDescription}, s.mcpOrdersByEmailHandler)
		mcp.AddTool(s.mcp, &mcp.Tool{Name: toolRecentOrders, Description: recentDescription}, s.mcpRecentOrdersHandler)
		count += 4
	} else {
		s.logger.Info("shopify not configured, skipping order tools")
	}

	s.logger.Debug("mcp_tools_registered", slog.Int("count", count))
}

func (s *Server) mcpSearchHandler(_ context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	text, results := s.search(input.Query, input.TopK)
	if results == nil {
		results = []search.Result{}
	}
	return textResult(text), SearchOutput{Results: results}, nil
}

func (s *Server) mcpStatusHandler(_ context.Context, _ *mcp.CallToolRequest, _ StatusInput) (
	*mcp.CallToolResult,
	StatusOutput,
	error,
) {
	out := s.statusOutput()
	return textResult(FormatStatus(out)), out, nil
}

func (s *Server) mcpOrderByNumberHandler(ctx context.Context, _ *mcp.CallToolRequest, input OrderNumberInput) (
	*mcp.CallToolResult,
	OrderOutput,
	error,
) {
	out := s.lookupOrder(ctx, toolOrderByNumber, func() (string, error) {
		return s.orders.GetOrderByNumber(ctx, input.OrderNumber)
	})
	return textResult(out.Text), out, nil
}

func (s *Server) mcpOrderByIDHandler(ctx context.Context, _ *mcp.CallToolRequest, input OrderIDInput) (
	*mcp.CallToolResult,
	OrderOutput,
	error,
) {
	out := s.lookupOrder(ctx, toolOrderByID, func() (string, error) {
		return s.orders.GetOrderByID(ctx, input.OrderID)
	})
	return textResult(out.Text), out, nil
}

func (s *Server) mcpOrdersByEmailHandler(ctx context.Context, _ *mcp.CallToolRequest, input OrdersByEmailInput) (
	*mcp.CallToolResult,
	OrderOutput,
	error,
) {
	out := s.lookupOrder(ctx, toolOrdersByEmail, func() (string, error) {
		return s.orders.SearchOrdersByEmail(ctx, input.Email, input.Limit)
	})
	return textResult(out.Text), out, nil
}

func (s *Server) mcpRecentOrdersHandler(ctx context.Context, _ *mcp.CallToolRequest, input RecentOrdersInput) (
	*mcp.CallToolResult,
	OrderOutput,
	error,
) {
	out := s.lookupOrder(ctx, toolRecentOrders, func() (string, error) {
		return s.orders.GetRecentOrders(ctx, input.Limit)
	})
	return textResult(out.Text), out, nil
}

// Serve runs the server on the given transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.logger.Info("mcp_server_starting",
		slog.String("transport", transport),
		slog.Int("documents", s.status.Documents),
		slog.Bool("orders", s.OrdersEnabled()))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("mcp_server_stopped", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("mcp_server_stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// intArg reads a JSON number argument; missing or non-numeric yields 0.
func intArg(args map[string]any, key string) int {
	if v := optionalIntArg(args, key); v != nil {
		return *v
	}
	return 0
}

// optionalIntArg reads a JSON number argument, or nil when it is missing or
// not a number.
func optionalIntArg(args map[string]any, key string) *int {
	var n int
	switch v := args[key].(type) {
	case float64:
		n = int(v)
	case int:
		n = v
	default:
		return nil
	}
	return &n
}

func errorAttrs(ctx context.Context, err error) []any {
	if ctx.Err() != nil {
		return []any{slog.String("error", err.Error()), slog.Bool("cancelled", true)}
	}
	return skerrors.LogAttrs(err)
}

// generateRequestID creates a short unique request ID for log correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
