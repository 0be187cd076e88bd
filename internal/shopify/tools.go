package shopify

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/Aman-CERP/storekb/internal/errors"
)

// DefaultToolLimit is the default number of orders a listing tool returns.
const DefaultToolLimit = 5

// OrderService is the order API the tools need.
type OrderService interface {
	GetOrderByID(ctx context.Context, id string) (*Order, error)
	GetOrderByNumber(ctx context.Context, number string) (*Order, error)
	SearchOrders(ctx context.Context, email, status string, limit int) ([]Order, error)
	RecentOrders(ctx context.Context, limit int) ([]Order, error)
}

// Tools turns order lookups into the display strings returned to an agent.
type Tools struct {
	orders OrderService
}

// NewTools creates Tools over orders.
func NewTools(orders OrderService) *Tools {
	return &Tools{orders: orders}
}

// GetOrderByNumber describes the order with the given display number.
func (t *Tools) GetOrderByNumber(ctx context.Context, number string) (string, error) {
	number = NormalizeOrderNumber(number)
	if number == "" {
		return "", errors.New(errors.ErrCodeInvalidOrderNumber, "order number is required", nil).
			WithSuggestion("Pass an order number such as 1001 or #1001")
	}

	order, err := t.orders.GetOrderByNumber(ctx, number)
	if err != nil {
		return "", err
	}
	if order == nil {
		return fmt.Sprintf("Sorry, no order with number %s was found", number), nil
	}
	return FormatOrder(order), nil
}

// GetOrderByID describes the order with the given Shopify ID.
func (t *Tools) GetOrderByID(ctx context.Context, id string) (string, error) {
	order, err := t.orders.GetOrderByID(ctx, id)
	if err != nil {
		return "", err
	}
	if order == nil {
		return fmt.Sprintf("Sorry, no order with ID %s was found", strings.TrimSpace(id)), nil
	}
	return FormatOrder(order), nil
}

// SearchOrdersByEmail describes a customer's orders. limit < 1 uses
// DefaultToolLimit.
func (t *Tools) SearchOrdersByEmail(ctx context.Context, email string, limit int) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return "", errors.New(errors.ErrCodeInvalidEmail, fmt.Sprintf("%q is not a valid email address", email), err)
	}
	// Shopify filters on the bare address, not "Name <addr>"
	email = addr.Address
	if limit < 1 {
		limit = DefaultToolLimit
	}

	orders, err := t.orders.SearchOrders(ctx, email, "", limit)
	if err != nil {
		return "", err
	}

	switch len(orders) {
	case 0:
		return fmt.Sprintf("No orders found for %s", email), nil
	case 1:
		return FormatOrder(&orders[0]), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d orders:\n\n", len(orders))
	for i := range orders {
		fmt.Fprintf(&b, "%d. %s\n\n", i+1, FormatOrder(&orders[i]))
	}
	return b.String(), nil
}

// GetRecentOrders lists the newest orders one per line. limit < 1 uses
// DefaultToolLimit.
func (t *Tools) GetRecentOrders(ctx context.Context, limit int) (string, error) {
	if limit < 1 {
		limit = DefaultToolLimit
	}

	orders, err := t.orders.RecentOrders(ctx, limit)
	if err != nil {
		return "", err
	}
	if len(orders) == 0 {
		return "There are no orders yet", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The %d most recent orders:\n\n", len(orders))
	for i, o := range orders {
		fmt.Fprintf(&b, "%d. %s\n", i+1, FormatOrderLine(o))
	}
	return b.String(), nil
}

// ErrorText is the message an agent reads back when a lookup fails.
func ErrorText(err error) string {
	return "Error while looking up the order: " + errors.FormatForUser(err)
}

var _ OrderService = (*Client)(nil)
