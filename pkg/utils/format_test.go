package utils

import (
	"context"
	"testing"
	"time"

	"alphaquant-console/internal/errors"
)

func TestFormatUSD(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{1234.5, "$1,234.50"},
		{-98765.432, "-$98,765.43"},
		{1000000, "$1,000,000.00"},
	}
	for _, c := range cases {
		if got := FormatUSD(c.in); got != c.want {
			t.Errorf("FormatUSD(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(2.5); got != "+2.50%" {
		t.Errorf("FormatPercent(2.5) = %q", got)
	}
	if got := FormatPercent(-1.25); got != "-1.25%" {
		t.Errorf("FormatPercent(-1.25) = %q", got)
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(1500); got != "1,500" {
		t.Errorf("FormatQuantity(1500) = %q", got)
	}
	if got := FormatQuantity(0.5); got != "0.5" {
		t.Errorf("FormatQuantity(0.5) = %q", got)
	}
}

func TestFormatCompact(t *testing.T) {
	if got := FormatCompact(2500000); got != "2.50M" {
		t.Errorf("FormatCompact(2.5M) = %q", got)
	}
	if got := FormatCompact(999); got != "$999.00" {
		t.Errorf("FormatCompact(999) = %q", got)
	}
}

func TestGetMarketStatus(t *testing.T) {
	cases := []struct {
		name string
		at   time.Time
		want MarketStatus
	}{
		{"midday tuesday", time.Date(2026, 8, 18, 12, 0, 0, 0, NYLocation), MarketOpen},
		{"pre-market", time.Date(2026, 8, 18, 8, 0, 0, 0, NYLocation), MarketPreMarket},
		{"after hours", time.Date(2026, 8, 18, 17, 0, 0, 0, NYLocation), MarketAfterHours},
		{"overnight", time.Date(2026, 8, 18, 2, 0, 0, 0, NYLocation), MarketClosed},
		{"saturday", time.Date(2026, 8, 22, 12, 0, 0, 0, NYLocation), MarketClosed},
		{"open boundary", time.Date(2026, 8, 18, 9, 30, 0, 0, NYLocation), MarketOpen},
		{"close boundary", time.Date(2026, 8, 18, 16, 0, 0, 0, NYLocation), MarketAfterHours},
	}
	for _, c := range cases {
		if got := GetMarketStatus(c.at); got != c.want {
			t.Errorf("%s: status = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestNextMarketOpenSkipsWeekend(t *testing.T) {
	friday := time.Date(2026, 8, 21, 15, 0, 0, 0, NYLocation)
	next := NextMarketOpen(friday)
	if next.Weekday() != time.Monday {
		t.Fatalf("next open on %s, want Monday", next.Weekday())
	}
	if next.Hour() != 9 || next.Minute() != 30 {
		t.Fatalf("next open at %s, want 09:30", next.Format("15:04"))
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond

	attempts := 0
	err := Retry(context.Background(), cfg, func() error {
		attempts++
		if attempts < 3 {
			return errors.NewRequestError("GET", "http://localhost:8000/account", context.DeadlineExceeded)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	cfg := DefaultRetryConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.Retryable = errors.Transient

	attempts := 0
	err := Retry(context.Background(), cfg, func() error {
		attempts++
		return errors.NewAPIError(403, errors.CodeRiskFirewallBlock, "blocked")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1: non-transient errors must not retry", attempts)
	}
}
