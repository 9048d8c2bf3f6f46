package api

import (
	"context"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// Behavioral analytics resources. All are computed server-side and
// consumed read-only; the console passes them through to presentation.

// RiskScore fetches the psychological risk score behind the order firewall.
func (c *Client) RiskScore(ctx context.Context) (*models.RiskScore, error) {
	var score models.RiskScore
	if err := c.get(ctx, "/ai/risk-score", nil, &score); err != nil {
		return nil, errors.NewFetchError("risk-score", err)
	}
	return &score, nil
}

// StrategyDNA fetches the identified strategy fingerprints.
func (c *Client) StrategyDNA(ctx context.Context) (*models.StrategyDNA, error) {
	var dna models.StrategyDNA
	if err := c.get(ctx, "/ai/strategy-dna", nil, &dna); err != nil {
		return nil, errors.NewFetchError("strategy-dna", err)
	}
	return &dna, nil
}

// BehaviorPatterns fetches detected behavior chains.
func (c *Client) BehaviorPatterns(ctx context.Context) (*models.BehaviorPatterns, error) {
	var patterns models.BehaviorPatterns
	if err := c.get(ctx, "/ai/behavior-patterns", nil, &patterns); err != nil {
		return nil, errors.NewFetchError("behavior-patterns", err)
	}
	return &patterns, nil
}

// SkillScore fetches the trader skill profile.
func (c *Client) SkillScore(ctx context.Context) (*models.SkillScore, error) {
	var score models.SkillScore
	if err := c.get(ctx, "/ai/skill-score", nil, &score); err != nil {
		return nil, errors.NewFetchError("skill-score", err)
	}
	return &score, nil
}

// BiasHeatmap fetches the cognitive bias heatmap.
func (c *Client) BiasHeatmap(ctx context.Context) (*models.BiasHeatmap, error) {
	var heatmap models.BiasHeatmap
	if err := c.get(ctx, "/ai/bias-heatmap", nil, &heatmap); err != nil {
		return nil, errors.NewFetchError("bias-heatmap", err)
	}
	return &heatmap, nil
}

// BehavioralBacktest fetches the what-if comparison without emotional trades.
func (c *Client) BehavioralBacktest(ctx context.Context) (*models.BacktestComparison, error) {
	var comparison models.BacktestComparison
	if err := c.get(ctx, "/ai/backtest", nil, &comparison); err != nil {
		return nil, errors.NewFetchError("backtest", err)
	}
	return &comparison, nil
}
