package chart

import (
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// fakeSurface records the call sequence so tests can assert ordering and
// ownership without a terminal.
type fakeSurface struct {
	mu       sync.Mutex
	owned    bool
	calls    []string
	overlays map[string]OverlaySeries
	released int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{overlays: make(map[string]OverlaySeries)}
}

func (f *fakeSurface) Acquire(symbol string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.owned {
		return errors.ErrSurfaceOwned
	}
	f.owned = true
	f.calls = append(f.calls, "acquire:"+symbol)
	return nil
}

func (f *fakeSurface) SetBase(candles []models.Candle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "base")
}

func (f *fakeSurface) SetOverlay(series OverlaySeries) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.overlays[series.Name] = series
	f.calls = append(f.calls, "overlay:"+series.Name)
}

func (f *fakeSurface) RemoveOverlay(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.overlays, name)
	f.calls = append(f.calls, "remove:"+name)
}

func (f *fakeSurface) Resize(width int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "resize")
}

func (f *fakeSurface) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owned = false
	f.released++
	f.calls = append(f.calls, "release")
}

func ptr(v float64) *float64 { return &v }

func testCandles(n int) []models.Candle {
	candles := make([]models.Candle, n)
	for i := range candles {
		candles[i] = models.Candle{
			Time:  "2026-01-0" + string(rune('1'+i)),
			Open:  100, High: 110, Low: 95, Close: 105,
		}
	}
	return candles
}

func seriesOver(candles []models.Candle, value float64) []models.SeriesPoint {
	points := make([]models.SeriesPoint, len(candles))
	for i, c := range candles {
		points[i] = models.SeriesPoint{Time: c.Time, Value: ptr(value)}
	}
	return points
}

func TestSessionStaysUninitializedOnEmptyPayload(t *testing.T) {
	surface := newFakeSurface()
	session := NewSession("SPY", surface, zerolog.Nop())

	if err := session.ReplaceData(models.ChartData{Symbol: "SPY"}); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}
	if session.State() != StateUninitialized {
		t.Fatalf("state = %v, want uninitialized", session.State())
	}
	if len(surface.calls) != 0 {
		t.Fatalf("surface touched before first payload: %v", surface.calls)
	}
}

func TestSessionKeepsChartOnEmptyPayloadWhileLive(t *testing.T) {
	surface := newFakeSurface()
	session := NewSession("SPY", surface, zerolog.Nop())
	candles := testCandles(3)

	data := models.ChartData{
		Symbol:  "SPY",
		Candles: candles,
		Indicators: models.IndicatorSet{
			RSI: seriesOver(candles, 55),
		},
	}
	if err := session.ReplaceData(data); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}
	overlays := len(session.OverlayNames())
	callsBefore := len(surface.calls)

	if err := session.ReplaceData(models.ChartData{Symbol: "SPY"}); err != nil {
		t.Fatalf("ReplaceData with empty payload: %v", err)
	}
	if session.State() != StateLive {
		t.Fatalf("state = %v after empty payload, want live", session.State())
	}
	if got := len(session.OverlayNames()); got != overlays {
		t.Fatalf("overlays = %d after empty payload, want %d", got, overlays)
	}
	if len(surface.calls) != callsBefore {
		t.Fatalf("surface touched by empty payload: %v", surface.calls[callsBefore:])
	}
}

func TestSessionGoesLiveAndWritesBaseBeforeOverlays(t *testing.T) {
	surface := newFakeSurface()
	session := NewSession("SPY", surface, zerolog.Nop())
	candles := testCandles(3)

	data := models.ChartData{
		Symbol:  "SPY",
		Candles: candles,
		Volume:  []models.VolumePoint{{Time: candles[0].Time, Value: 1000}},
	}
	if err := session.ReplaceData(data); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}
	if session.State() != StateLive {
		t.Fatalf("state = %v, want live", session.State())
	}

	baseAt, overlayAt := -1, -1
	for i, call := range surface.calls {
		if call == "base" && baseAt == -1 {
			baseAt = i
		}
		if call == "overlay:volume" {
			overlayAt = i
		}
	}
	if baseAt == -1 || overlayAt == -1 || baseAt > overlayAt {
		t.Fatalf("base must precede overlays, calls: %v", surface.calls)
	}
}

func TestSessionDerivesRSIThresholdOverlays(t *testing.T) {
	surface := newFakeSurface()
	session := NewSession("QQQ", surface, zerolog.Nop())
	candles := testCandles(4)

	data := models.ChartData{
		Symbol:  "QQQ",
		Candles: candles,
		Indicators: models.IndicatorSet{
			RSI: seriesOver(candles, 55),
		},
	}
	if err := session.ReplaceData(data); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}

	names := session.OverlayNames()
	sort.Strings(names)
	want := []string{SeriesRSIOverLevel, SeriesRSISubLevel, SeriesRSI}
	sort.Strings(want)
	if len(names) != len(want) {
		t.Fatalf("overlays = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("overlays = %v, want %v", names, want)
		}
	}

	over := surface.overlays[SeriesRSIOverLevel]
	if len(over.Points) != len(candles) {
		t.Fatalf("threshold spans %d points, want %d", len(over.Points), len(candles))
	}
	for _, p := range over.Points {
		if p.Value == nil || *p.Value != 70 {
			t.Fatalf("overbought threshold point = %v, want 70", p.Value)
		}
	}
	under := surface.overlays[SeriesRSISubLevel]
	for _, p := range under.Points {
		if p.Value == nil || *p.Value != 30 {
			t.Fatalf("oversold threshold point = %v, want 30", p.Value)
		}
	}
}

func TestSessionRemovesOverlaysWhenIndicatorDisappears(t *testing.T) {
	surface := newFakeSurface()
	session := NewSession("SPY", surface, zerolog.Nop())
	candles := testCandles(3)

	withRSI := models.ChartData{
		Symbol:     "SPY",
		Candles:    candles,
		Indicators: models.IndicatorSet{RSI: seriesOver(candles, 40)},
	}
	if err := session.ReplaceData(withRSI); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}

	without := models.ChartData{Symbol: "SPY", Candles: candles}
	if err := session.ReplaceData(without); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}

	if len(session.OverlayNames()) != 0 {
		t.Fatalf("overlays left attached: %v", session.OverlayNames())
	}
	if _, ok := surface.overlays[SeriesRSI]; ok {
		t.Fatal("rsi overlay still on surface")
	}
	if _, ok := surface.overlays[SeriesRSIOverLevel]; ok {
		t.Fatal("derived threshold still on surface after rsi removed")
	}
}

func TestSessionAcquisitionFailureDisposes(t *testing.T) {
	surface := newFakeSurface()
	if err := surface.Acquire("OTHER"); err != nil {
		t.Fatalf("pre-own surface: %v", err)
	}

	session := NewSession("SPY", surface, zerolog.Nop())
	err := session.ReplaceData(models.ChartData{Symbol: "SPY", Candles: testCandles(1)})
	if !errors.Is(err, errors.ErrSurfaceOwned) {
		t.Fatalf("err = %v, want ErrSurfaceOwned", err)
	}
	if session.State() != StateDisposed {
		t.Fatalf("state = %v, want disposed", session.State())
	}

	err = session.ReplaceData(models.ChartData{Symbol: "SPY", Candles: testCandles(1)})
	if !errors.Is(err, errors.ErrSessionDisposed) {
		t.Fatalf("err after disposal = %v, want ErrSessionDisposed", err)
	}
}

func TestSessionResizeOnlyWhileLive(t *testing.T) {
	surface := newFakeSurface()
	session := NewSession("SPY", surface, zerolog.Nop())

	if err := session.Resize(80); !errors.Is(err, errors.ErrSessionNotLive) {
		t.Fatalf("resize before live: err = %v, want ErrSessionNotLive", err)
	}

	if err := session.ReplaceData(models.ChartData{Symbol: "SPY", Candles: testCandles(1)}); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}
	if err := session.Resize(80); err != nil {
		t.Fatalf("resize while live: %v", err)
	}

	session.Dispose()
	if err := session.Resize(80); !errors.Is(err, errors.ErrSessionNotLive) {
		t.Fatalf("resize after disposal: err = %v, want ErrSessionNotLive", err)
	}
}

func TestSessionDisposeIsIdempotentAndReleasesOnce(t *testing.T) {
	surface := newFakeSurface()
	session := NewSession("SPY", surface, zerolog.Nop())

	if err := session.ReplaceData(models.ChartData{Symbol: "SPY", Candles: testCandles(1)}); err != nil {
		t.Fatalf("ReplaceData: %v", err)
	}

	session.Dispose()
	session.Dispose()
	session.Dispose()

	if surface.released != 1 {
		t.Fatalf("surface released %d times, want 1", surface.released)
	}
	if surface.owned {
		t.Fatal("surface still owned after disposal")
	}

	// A successor can now claim the same surface.
	next := NewSession("QQQ", surface, zerolog.Nop())
	if err := next.ReplaceData(models.ChartData{Symbol: "QQQ", Candles: testCandles(1)}); err != nil {
		t.Fatalf("successor ReplaceData: %v", err)
	}
	if next.State() != StateLive {
		t.Fatalf("successor state = %v, want live", next.State())
	}
}

func TestSessionDisposeBeforeLiveNeverTouchesSurface(t *testing.T) {
	surface := newFakeSurface()
	session := NewSession("SPY", surface, zerolog.Nop())

	session.Dispose()

	if surface.released != 0 {
		t.Fatalf("released an unacquired surface %d times", surface.released)
	}
	if session.State() != StateDisposed {
		t.Fatalf("state = %v, want disposed", session.State())
	}
}

func TestTermSurfaceOwnership(t *testing.T) {
	surface := NewTermSurface(100)

	if err := surface.Acquire("SPY"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if err := surface.Acquire("QQQ"); !errors.Is(err, errors.ErrSurfaceOwned) {
		t.Fatalf("second acquire: err = %v, want ErrSurfaceOwned", err)
	}

	surface.Release()
	if err := surface.Acquire("QQQ"); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
}

func TestTermSurfaceRendersCandlesAndPanes(t *testing.T) {
	surface := NewTermSurface(100)
	if err := surface.Acquire("SPY"); err != nil {
		t.Fatalf("acquire: %v", err)
	}

	candles := testCandles(5)
	surface.SetBase(candles)
	surface.SetOverlay(OverlaySeries{
		Name: SeriesVolume, Kind: OverlayHistogram,
		Points: seriesOver(candles, 5000),
	})
	surface.SetOverlay(OverlaySeries{
		Name: SeriesRSI, Kind: OverlayLine,
		Points: seriesOver(candles, 60),
	})

	out := surface.Render()
	if out == "" {
		t.Fatal("empty render")
	}
	for _, label := range []string{"SPY", "VOL", "RSI"} {
		if !strings.Contains(out, label) {
			t.Fatalf("render missing %q pane", label)
		}
	}

	surface.RemoveOverlay(SeriesRSI)
	if strings.Contains(surface.Render(), "RSI") {
		t.Fatal("rsi pane rendered after removal")
	}
}
