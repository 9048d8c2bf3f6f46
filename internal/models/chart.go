package models

// Candle is one OHLC bar keyed by the backend's chart time string
// (YYYY-MM-DD for daily bars, full timestamp for intraday).
type Candle struct {
	Time  string  `json:"time"`
	Open  float64 `json:"open"`
	High  float64 `json:"high"`
	Low   float64 `json:"low"`
	Close float64 `json:"close"`
}

// VolumePoint is one volume bar aligned with the candle timeline.
type VolumePoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// SeriesPoint is one sample of an indicator series. Value is nil where the
// indicator has not warmed up yet (the backend sends null for those bars).
type SeriesPoint struct {
	Time  string   `json:"time"`
	Value *float64 `json:"value"`
}

// IndicatorSet carries the optional indicator series of a chart payload.
// A nil slice means the indicator was not computed for this request; the
// corresponding chart overlay must be removed, not left stale.
type IndicatorSet struct {
	RSI        []SeriesPoint `json:"rsi,omitempty"`
	MACD       []SeriesPoint `json:"macd,omitempty"`
	MACDSignal []SeriesPoint `json:"macd_signal,omitempty"`
	MACDHist   []SeriesPoint `json:"macd_hist,omitempty"`
	BBUpper    []SeriesPoint `json:"bb_upper,omitempty"`
	BBMiddle   []SeriesPoint `json:"bb_middle,omitempty"`
	BBLower    []SeriesPoint `json:"bb_lower,omitempty"`
}

// ChartData is the full chart payload for one symbol.
type ChartData struct {
	Symbol     string        `json:"symbol"`
	Candles    []Candle      `json:"candles"`
	Volume     []VolumePoint `json:"volume"`
	Indicators IndicatorSet  `json:"indicators"`
}

// Empty reports whether the payload carries no bars at all.
func (d ChartData) Empty() bool {
	return len(d.Candles) == 0
}

// TimeDomain returns the first and last candle times, or empty strings
// for an empty payload.
func (d ChartData) TimeDomain() (first, last string) {
	if len(d.Candles) == 0 {
		return "", ""
	}
	return d.Candles[0].Time, d.Candles[len(d.Candles)-1].Time
}
