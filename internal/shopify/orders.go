package shopify

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/Aman-CERP/storekb/internal/errors"
)

// GetOrderByID fetches one order by its numeric Shopify ID.
// An unknown ID yields (nil, nil).
func (c *Client) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	id = strings.TrimSpace(id)
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return nil, errors.ValidationError("order id must be a positive integer", err).
			WithDetail("order_id", id)
	}

	var env orderEnvelope
	if err := c.getJSON(ctx, "/orders/"+id+".json", nil, &env); err != nil {
		if errors.GetCode(err) == errors.ErrCodeOrderNotFound {
			return nil, nil
		}
		return nil, err
	}
	return env.Order, nil
}

// GetOrderByNumber finds an order by its display number ("#1001" or "1001").
// It scans the most recent orders of any status, preferring an exact name
// match over a suffix match. No match yields (nil, nil).
func (c *Client) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	number = NormalizeOrderNumber(number)
	if number == "" {
		return nil, errors.New(errors.ErrCodeInvalidOrderNumber, "order number is empty", nil)
	}

	params := url.Values{}
	params.Set("status", "any")
	params.Set("limit", strconv.Itoa(c.scanLimit))
	params.Set("order", "created_at desc")

	var env ordersEnvelope
	if err := c.getJSON(ctx, "/orders.json", params, &env); err != nil {
		return nil, err
	}
	return matchOrderNumber(env.Orders, number), nil
}

// NormalizeOrderNumber strips whitespace and every "#" from a user-supplied
// order number.
func NormalizeOrderNumber(number string) string {
	return strings.TrimSpace(strings.ReplaceAll(number, "#", ""))
}

func matchOrderNumber(orders []Order, number string) *Order {
	for i := range orders {
		name := strings.TrimSpace(orders[i].Name)
		if name == "#"+number || name == number {
			return &orders[i]
		}
	}
	for i := range orders {
		if strings.HasSuffix(strings.TrimSpace(orders[i].Name), number) {
			return &orders[i]
		}
	}
	return nil
}

// SearchOrders lists orders, optionally filtered by customer email and
// status. limit is clamped to 1..MaxPageSize.
func (c *Client) SearchOrders(ctx context.Context, email, status string, limit int) ([]Order, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(max(1, min(limit, MaxPageSize))))
	if email = strings.TrimSpace(email); email != "" {
		params.Set("email", email)
	}
	if status = strings.TrimSpace(status); status != "" {
		params.Set("status", status)
	}

	var env ordersEnvelope
	if err := c.getJSON(ctx, "/orders.json", params, &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

// RecentOrders lists the newest orders.
func (c *Client) RecentOrders(ctx context.Context, limit int) ([]Order, error) {
	return c.SearchOrders(ctx, "", "", limit)
}
