package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/roach88/storefront/internal/shop"
)

// IdempotencyHeader carries the client's per-attempt token on order creation.
const IdempotencyHeader = "Idempotency-Key"

// CreateOrder submits draft. A non-empty idempotencyKey is sent so the
// backend can collapse retries of the same attempt.
func (c *Client) CreateOrder(ctx context.Context, draft shop.OrderDraft, idempotencyKey string) (shop.Order, error) {
	var header http.Header
	if idempotencyKey != "" {
		header = http.Header{}
		header.Set(IdempotencyHeader, idempotencyKey)
	}
	var order shop.Order
	if err := c.do(ctx, http.MethodPost, "/orders", nil, header, draft, &order); err != nil {
		return shop.Order{}, err
	}
	return order, nil
}

// GetOrder returns the backend's record of an order.
func (c *Client) GetOrder(ctx context.Context, id string) (shop.Order, error) {
	var order shop.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, nil, &order); err != nil {
		return shop.Order{}, err
	}
	return order, nil
}

type sessionRequest struct {
	OrderID string `json:"order_id"`
}

// CreateCheckoutSession opens a payment session for an existing order.
func (c *Client) CreateCheckoutSession(ctx context.Context, orderID string) (shop.CheckoutSession, error) {
	var session shop.CheckoutSession
	if err := c.do(ctx, http.MethodPost, "/checkout/session", nil, nil, sessionRequest{OrderID: orderID}, &session); err != nil {
		return shop.CheckoutSession{}, err
	}
	return session, nil
}
