package models

// The behavioral analytics resources are computed server-side and consumed
// read-only. The console renders them without interpreting the numbers.

// RiskScore is the psychological risk score backing the order firewall.
type RiskScore struct {
	Score          int                `json:"score"`
	RiskState      string             `json:"risk_state"` // calm, elevated, critical
	Factors        map[string]float64 `json:"factors"`
	TradesAnalyzed int                `json:"trades_analyzed"`
	LookbackDays   int                `json:"lookback_days"`
}

// StrategyFingerprint describes one strategy the backend has identified
// in the trading history.
type StrategyFingerprint struct {
	Name        string  `json:"name"`
	TradeCount  int     `json:"trade_count"`
	WinRate     float64 `json:"win_rate"`
	AvgHoldTime string  `json:"avg_hold_time"`
	Confidence  float64 `json:"confidence"`
}

// StrategyDNA is the set of identified strategy fingerprints.
type StrategyDNA struct {
	Fingerprints    []StrategyFingerprint `json:"fingerprints"`
	TotalStrategies int                   `json:"total_strategies"`
}

// BehaviorPatterns summarizes detected behavior chains.
type BehaviorPatterns struct {
	Patterns    map[string]int `json:"patterns"`
	TotalChains int            `json:"total_chains"`
}

// SkillScore is the trader skill profile with its history.
type SkillScore struct {
	Current map[string]float64   `json:"current"`
	History []map[string]float64 `json:"history"`
}

// BiasCell is one cell of the cognitive bias heatmap.
type BiasCell struct {
	Bias      string  `json:"bias"`
	Bucket    string  `json:"bucket"`
	Intensity float64 `json:"intensity"`
	Count     int     `json:"count"`
}

// BiasHeatmap is the full heatmap grid.
type BiasHeatmap struct {
	Cells []BiasCell `json:"cells"`
}

// BacktestComparison compares actual performance against the what-if curve
// with emotionally flagged trades removed.
type BacktestComparison struct {
	ActualPnL       float64       `json:"actual_pnl"`
	DisciplinedPnL  float64       `json:"disciplined_pnl"`
	EmotionalTrades int           `json:"emotional_trades"`
	ActualCurve     []EquityPoint `json:"actual_curve"`
	WhatIfCurve     []EquityPoint `json:"what_if_curve"`
}
