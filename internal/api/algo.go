package api

import (
	"context"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// StartAlgo asks the backend to start the background strategy. The
// acknowledgment is advisory; callers must confirm via AlgoStatus.
func (c *Client) StartAlgo(ctx context.Context) (*models.AlgoCommandResult, error) {
	var result models.AlgoCommandResult
	if err := c.post(ctx, "/algo/start", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// StopAlgo asks the backend to stop the background strategy.
func (c *Client) StopAlgo(ctx context.Context) (*models.AlgoCommandResult, error) {
	var result models.AlgoCommandResult
	if err := c.post(ctx, "/algo/stop", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AlgoStatus fetches the strategy's running state and activity log.
func (c *Client) AlgoStatus(ctx context.Context) (*models.AlgoStatus, error) {
	var status models.AlgoStatus
	if err := c.get(ctx, "/algo/status", nil, &status); err != nil {
		return nil, errors.NewFetchError(ResourceAlgo, err)
	}
	return &status, nil
}
