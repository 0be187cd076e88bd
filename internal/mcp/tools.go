package mcp

import "github.com/Aman-CERP/storekb/internal/search"

// SearchInput defines the input schema for the search_knowledge_base tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the customer's question or keywords, in English or Chinese"`
	TopK  *int   `json:"top_k,omitempty" jsonschema:"maximum number of results; omitted uses the configured default, values below 1 return one result"`
}

// SearchOutput defines the output schema for the search_knowledge_base tool.
type SearchOutput struct {
	Results []search.Result `json:"results" jsonschema:"ranked knowledge base chunks, best first"`
}

// StatusInput defines the input schema for the kb_status tool (no parameters).
type StatusInput struct{}

// StatusOutput defines the output schema for the kb_status tool.
type StatusOutput struct {
	CorpusDir       string   `json:"corpus_dir"`
	Documents       int      `json:"documents"`
	Unreadable      int      `json:"unreadable"`
	Chunks          int      `json:"chunks"`
	VocabularySize  int      `json:"vocabulary_size"`
	BuiltAt         string   `json:"built_at"`
	BuildDurationMS int64    `json:"build_duration_ms"`
	Extensions      []string `json:"extensions"`
	Shopify         string   `json:"shopify"`
	CachedQueries   int      `json:"cached_queries"`
	TotalQueries    int64    `json:"total_queries"`
	ZeroResultPct   float64  `json:"zero_result_pct"`
}

// OrderNumberInput defines the input schema for get_order_by_number.
type OrderNumberInput struct {
	OrderNumber string `json:"order_number" jsonschema:"order number such as 1001 or #1001"`
}

// OrderIDInput defines the input schema for get_order_by_id.
type OrderIDInput struct {
	OrderID string `json:"order_id" jsonschema:"numeric Shopify order ID"`
}

// OrdersByEmailInput defines the input schema for search_orders_by_email.
type OrdersByEmailInput struct {
	Email string `json:"email" jsonschema:"customer email address"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of orders, default 5"`
}

// RecentOrdersInput defines the input schema for get_recent_orders.
type RecentOrdersInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of orders, default 5"`
}

// OrderOutput is the text an order tool returns.
type OrderOutput struct {
	Text string `json:"text"`
	// Failed is set when the lookup itself failed; Text then explains why.
	Failed bool `json:"failed,omitempty"`
}
