package api

import (
	"context"
	"fmt"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// Resource kinds used to tag read requests. Poll subscriptions and the
// local snapshot cache key off these names.
const (
	ResourceAccount   = "account"
	ResourcePositions = "positions"
	ResourceChart     = "chart"
	ResourceEquity    = "equity"
	ResourceQuote     = "quote"
	ResourceOrders    = "orders"
	ResourceAlgo      = "algo"
	ResourceNews      = "news"
	ResourceScreener  = "screener"
)

// Account fetches the account snapshot.
func (c *Client) Account(ctx context.Context) (*models.Account, error) {
	var account models.Account
	if err := c.get(ctx, "/account", nil, &account); err != nil {
		return nil, errors.NewFetchError(ResourceAccount, err)
	}
	return &account, nil
}

// Positions fetches the open positions list.
func (c *Client) Positions(ctx context.Context) ([]models.Position, error) {
	var positions []models.Position
	if err := c.get(ctx, "/positions", nil, &positions); err != nil {
		return nil, errors.NewFetchError(ResourcePositions, err)
	}
	return positions, nil
}

// Quote fetches the current market snapshot for one symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var quote models.Quote
	path := fmt.Sprintf("/market-data/%s", symbol)
	if err := c.get(ctx, path, nil, &quote); err != nil {
		return nil, errors.NewFetchError(ResourceQuote, err)
	}
	return &quote, nil
}

// ChartParams selects the history window and bar interval of a chart request.
type ChartParams struct {
	Period   string `url:"period"`
	Interval string `url:"interval"`
}

// Chart fetches bars plus optional indicator series for one symbol.
func (c *Client) Chart(ctx context.Context, symbol string, params ChartParams) (*models.ChartData, error) {
	var data models.ChartData
	path := fmt.Sprintf("/market/chart/%s", symbol)
	if err := c.get(ctx, path, params, &data); err != nil {
		return nil, errors.NewFetchError(ResourceChart, err)
	}
	return &data, nil
}

// EquityHistory fetches the account equity curve.
func (c *Client) EquityHistory(ctx context.Context) ([]models.EquityPoint, error) {
	var points []models.EquityPoint
	if err := c.get(ctx, "/history", nil, &points); err != nil {
		return nil, errors.NewFetchError(ResourceEquity, err)
	}
	return points, nil
}

// News fetches headlines for a symbol (or "MARKET" for general news).
func (c *Client) News(ctx context.Context, symbol string) ([]models.NewsItem, error) {
	var items []models.NewsItem
	path := fmt.Sprintf("/market/news/%s", symbol)
	if err := c.get(ctx, path, nil, &items); err != nil {
		return nil, errors.NewFetchError(ResourceNews, err)
	}
	return items, nil
}

// Screener fetches the discovery screener rows.
func (c *Client) Screener(ctx context.Context) ([]models.ScreenerRow, error) {
	var rows []models.ScreenerRow
	if err := c.get(ctx, "/market/screener", nil, &rows); err != nil {
		return nil, errors.NewFetchError(ResourceScreener, err)
	}
	return rows, nil
}
