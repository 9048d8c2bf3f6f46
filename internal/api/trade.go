package api

import (
	"context"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// Order list filters accepted by the backend.
const (
	OrderStatusOpen   = "open"
	OrderStatusClosed = "closed"
	OrderStatusAll    = "all"
)

// SubmitOrder submits an order. A server-side block (risk firewall or
// strategy mismatch) surfaces as an *errors.APIError carrying the
// classification code; the order gate maps it to an outcome. The request
// is sent exactly as given, overrides included, and is never retried.
func (c *Client) SubmitOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	if req.TimeInForce == "" {
		req.TimeInForce = "day"
	}
	var order models.Order
	if err := c.post(ctx, "/trade/order", req, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type ordersParams struct {
	Status string `url:"status"`
}

// Orders fetches the order list filtered by status (open, closed, all).
func (c *Client) Orders(ctx context.Context, status string) ([]models.Order, error) {
	if status == "" {
		status = OrderStatusOpen
	}
	var orders []models.Order
	if err := c.get(ctx, "/trade/orders", ordersParams{Status: status}, &orders); err != nil {
		return nil, errors.NewFetchError(ResourceOrders, err)
	}
	return orders, nil
}
