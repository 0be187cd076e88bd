package shopify

import (
	"fmt"
	"strings"
	"time"
)

// MaxListedItems is how many line items FormatOrder spells out.
const MaxListedItems = 3

// FormatOrder renders an order as the multi-line summary read back to a
// customer. Missing fields fall back to placeholders.
func FormatOrder(o *Order) string {
	if o == nil {
		return "No order information found"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Order number: %s\n", orDefault(o.Name, "N/A"))
	fmt.Fprintf(&b, "Status: %s\n", orDefault(o.FinancialStatus, "unknown"))
	fmt.Fprintf(&b, "Total: %s %s\n", orDefault(o.TotalPrice, "0"), orDefault(o.Currency, "USD"))
	fmt.Fprintf(&b, "Placed: %s\n", formatCreated(o.CreatedAt))
	fmt.Fprintf(&b, "Items: %s", formatItems(o.LineItems))
	return b.String()
}

// FormatOrderLine renders the one-line form used in recent-order listings.
func FormatOrderLine(o Order) string {
	return fmt.Sprintf("Order number: %s, total: %s %s",
		orDefault(o.Name, "N/A"), orDefault(o.TotalPrice, "0"), orDefault(o.Currency, "USD"))
}

func formatCreated(s string) string {
	if s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02 15:04")
}

func formatItems(items []LineItem) string {
	parts := make([]string, 0, MaxListedItems)
	for _, item := range items[:min(len(items), MaxListedItems)] {
		parts = append(parts, fmt.Sprintf("%s x%d", item.Title, item.Quantity))
	}
	out := strings.Join(parts, ", ")
	if len(items) > MaxListedItems {
		out += fmt.Sprintf(" and %d items in total", len(items))
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
