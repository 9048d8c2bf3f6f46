// Package models defines the data types exchanged with the AlphaQuant backend.
package models

// Mode represents the trading environment the backend routes orders to.
type Mode string

const (
	ModeSim   Mode = "sim"
	ModePaper Mode = "paper"
	ModeLive  Mode = "live"
)

// Valid reports whether the mode is one of the supported environments.
func (m Mode) Valid() bool {
	return m == ModeSim || m == ModePaper || m == ModeLive
}

// Account represents the account snapshot.
type Account struct {
	Status         string  `json:"status"`
	BuyingPower    float64 `json:"buying_power"`
	Cash           float64 `json:"cash"`
	PortfolioValue float64 `json:"portfolio_value"`
	Currency       string  `json:"currency"`
	DaytradeCount  int     `json:"daytrade_count"`
}

// Position represents an open position.
type Position struct {
	Symbol        string  `json:"symbol"`
	Quantity      float64 `json:"qty"`
	Side          string  `json:"side"`
	AvgEntryPrice float64 `json:"avg_entry_price"`
	CurrentPrice  float64 `json:"current_price"`
	MarketValue   float64 `json:"market_value"`
	UnrealizedPL  float64 `json:"unrealized_pl"`
	UnrealizedPLP float64 `json:"unrealized_plpc"`
}

// Quote represents a point-in-time market data snapshot for one symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
	Timestamp     string  `json:"timestamp"`
}

// EquityPoint is one sample of the account equity curve.
type EquityPoint struct {
	Time          string  `json:"time"`
	Equity        float64 `json:"equity"`
	ProfitLoss    float64 `json:"profit_loss"`
	ProfitLossPct float64 `json:"profit_loss_pct"`
}

// NewsItem is a headline passed through from the backend news feed.
type NewsItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Publisher   string `json:"publisher"`
	PublishTime int64  `json:"providerPublishTime"`
}

// ScreenerRow is one row of the discovery screener.
type ScreenerRow struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Volume        int64   `json:"volume"`
}

// SettingsStatus reflects the backend's stored configuration for this user.
type SettingsStatus struct {
	Mode          Mode   `json:"mode"`
	KeysStored    bool   `json:"keys_stored"`
	SimResetCount int    `json:"sim_reset_count"`
	UpdatedAt     string `json:"updated_at"`
}

// CredentialRequest stores broker API credentials server-side.
// The secret is write-only; the backend never returns it.
type CredentialRequest struct {
	APIKeyID  string `json:"api_key_id"`
	APISecret string `json:"api_secret"`
	Mode      Mode   `json:"mode"`
}
