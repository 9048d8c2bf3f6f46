package api

import (
	"context"
	"fmt"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// SaveCredentials stores broker API keys server-side for the given mode.
func (c *Client) SaveCredentials(ctx context.Context, req models.CredentialRequest) error {
	if !req.Mode.Valid() {
		return errors.ErrInvalidMode
	}
	return c.post(ctx, "/settings/keys", req, nil)
}

// SetMode switches the backend between sim, paper and live routing.
// Callers should refresh account state immediately after a successful
// switch rather than waiting for the next poll tick.
func (c *Client) SetMode(ctx context.Context, mode models.Mode) error {
	if !mode.Valid() {
		return errors.ErrInvalidMode
	}
	return c.post(ctx, fmt.Sprintf("/settings/mode/%s", mode), nil, nil)
}

// SettingsStatus fetches the backend's stored configuration.
func (c *Client) SettingsStatus(ctx context.Context) (*models.SettingsStatus, error) {
	var status models.SettingsStatus
	if err := c.get(ctx, "/settings/status", nil, &status); err != nil {
		return nil, errors.NewFetchError("settings", err)
	}
	return &status, nil
}

// ResetSim resets the simulation account to its starting balance.
func (c *Client) ResetSim(ctx context.Context) error {
	return c.post(ctx, "/settings/sim/reset", nil, nil)
}
