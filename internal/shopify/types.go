package shopify

// Order is the subset of a Shopify Admin REST order that storekb reads.
type Order struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	TotalPrice        string     `json:"total_price"`
	Currency          string     `json:"currency"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	CreatedAt         string     `json:"created_at"`
	LineItems         []LineItem `json:"line_items"`
}

// LineItem is one product line of an order.
type LineItem struct {
	Title    string `json:"title"`
	Quantity int    `json:"quantity"`
}

type orderEnvelope struct {
	Order *Order `json:"order"`
}

type ordersEnvelope struct {
	Orders []Order `json:"orders"`
}
