package utils

import "time"

// MarketStatus represents the current US equity session.
type MarketStatus string

const (
	MarketClosed     MarketStatus = "CLOSED"
	MarketPreMarket  MarketStatus = "PRE_MARKET"
	MarketOpen       MarketStatus = "OPEN"
	MarketAfterHours MarketStatus = "AFTER_HOURS"
)

// NYLocation is the timezone for US equity markets.
var NYLocation *time.Location

func init() {
	var err error
	NYLocation, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback to UTC-5
		NYLocation = time.FixedZone("EST", -5*60*60)
	}
}

// GetMarketStatus returns the session for the given instant.
func GetMarketStatus(at time.Time) MarketStatus {
	now := at.In(NYLocation)

	if now.Weekday() == time.Saturday || now.Weekday() == time.Sunday {
		return MarketClosed
	}

	minutes := now.Hour()*60 + now.Minute()

	switch {
	case minutes >= 4*60 && minutes < 9*60+30:
		return MarketPreMarket
	case minutes >= 9*60+30 && minutes < 16*60:
		return MarketOpen
	case minutes >= 16*60 && minutes < 20*60:
		return MarketAfterHours
	}
	return MarketClosed
}

// IsMarketOpen returns true during the regular session.
func IsMarketOpen(at time.Time) bool {
	return GetMarketStatus(at) == MarketOpen
}

// NextMarketOpen returns the next regular session open after the given
// instant. Exchange holidays are not accounted for.
func NextMarketOpen(after time.Time) time.Time {
	now := after.In(NYLocation)

	next := time.Date(now.Year(), now.Month(), now.Day(), 9, 30, 0, 0, NYLocation)
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// MarketClose returns the regular session close for the given day.
func MarketClose(day time.Time) time.Time {
	d := day.In(NYLocation)
	return time.Date(d.Year(), d.Month(), d.Day(), 16, 0, 0, 0, NYLocation)
}
