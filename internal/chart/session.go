// Package chart owns the lifecycle of live chart surfaces and their
// overlay series.
//
// A Session moves Uninitialized -> Live -> Disposed, never backwards.
// It enters Live on the first non-empty payload and leaves through a
// single disposal path that releases the surface, so a replacement
// session can never coexist with a live one on the same surface.
package chart

import (
	"sync"

	"github.com/rs/zerolog"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

// State is the lifecycle state of a chart session.
type State int

const (
	StateUninitialized State = iota
	StateLive
	StateDisposed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLive:
		return "live"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// OverlayKind determines how an overlay series is drawn.
type OverlayKind string

const (
	OverlayHistogram OverlayKind = "histogram" // volume, macd_hist
	OverlayBand      OverlayKind = "band"      // bollinger band lines
	OverlayLine      OverlayKind = "line"      // oscillator line (rsi)
	OverlayThreshold OverlayKind = "threshold" // derived constant level
)

// Overlay series names. Fetched overlays map 1:1 to indicator payload
// fields; threshold overlays are derived locally.
const (
	SeriesVolume       = "volume"
	SeriesBBUpper      = "bb_upper"
	SeriesBBMiddle     = "bb_middle"
	SeriesBBLower      = "bb_lower"
	SeriesRSI          = "rsi"
	SeriesMACDHist     = "macd_hist"
	SeriesRSIOverLevel = "rsi_overbought"
	SeriesRSISubLevel  = "rsi_oversold"
)

// Oscillator reference levels for the RSI pane.
const (
	rsiOverboughtLevel = 70.0
	rsiOversoldLevel   = 30.0
)

// OverlaySeries is one named visual layer attached to a session. Series
// are replaced wholesale on each data refresh, never mutated in place.
type OverlaySeries struct {
	Name   string
	Kind   OverlayKind
	Points []models.SeriesPoint
}

// Surface is the externally-owned drawing target a session renders to.
// Exactly one live session may own a surface at a time; Acquire fails
// while another owner holds it.
type Surface interface {
	Acquire(symbol string) error
	SetBase(candles []models.Candle)
	SetOverlay(series OverlaySeries)
	RemoveOverlay(name string)
	Resize(width int)
	Release()
}

// Session owns one live chart surface: a candlestick base series plus
// zero or more overlays derived from the shape of the fetched payload.
type Session struct {
	mu       sync.Mutex
	symbol   string
	surface  Surface
	state    State
	acquired bool
	overlays map[string]OverlaySeries
	logger   zerolog.Logger
}

// NewSession creates a session in the Uninitialized state. The surface is
// not acquired until the first non-empty payload arrives.
func NewSession(symbol string, surface Surface, logger zerolog.Logger) *Session {
	return &Session{
		symbol:   symbol,
		surface:  surface,
		overlays: make(map[string]OverlaySeries),
		logger:   logger.With().Str("symbol", symbol).Logger(),
	}
}

// Symbol returns the symbol this session charts.
func (s *Session) Symbol() string {
	return s.symbol
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OverlayNames returns the names of the currently attached overlays.
func (s *Session) OverlayNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.overlays))
	for name := range s.overlays {
		names = append(names, name)
	}
	return names
}

// ReplaceData fully replaces the base series and recomputes which overlays
// are present from the payload's indicator fields. The base series is
// written before any overlay so overlays never render against a mismatched
// timeline. An empty payload is ignored in every state, so it can never
// blank a working chart; a surface acquisition failure disposes the
// session.
func (s *Session) ReplaceData(data models.ChartData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisposed {
		return errors.ErrSessionDisposed
	}
	if data.Empty() {
		return nil
	}

	if s.state == StateUninitialized {
		if err := s.surface.Acquire(s.symbol); err != nil {
			s.state = StateDisposed
			s.logger.Warn().Err(err).Msg("Chart surface acquisition failed")
			return err
		}
		s.acquired = true
		s.state = StateLive
		s.logger.Debug().Msg("Chart session live")
	}

	s.surface.SetBase(data.Candles)
	s.applyOverlays(data)
	return nil
}

// Resize updates the surface width. Valid only while live; callers are
// expected to debounce to the hosting pane's observed size, since several
// sessions may coexist in different panes.
func (s *Session) Resize(width int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateLive {
		return errors.ErrSessionNotLive
	}
	s.surface.Resize(width)
	return nil
}

// Dispose releases the surface and moves the session to Disposed. This is
// the single disposal path; calling it again has no further effect.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateDisposed {
		return
	}
	if s.acquired {
		s.surface.Release()
		s.acquired = false
	}
	s.state = StateDisposed
	s.overlays = make(map[string]OverlaySeries)
	s.logger.Debug().Msg("Chart session disposed")
}

// applyOverlays reconciles attached overlays against the payload: every
// overlay backed by a present field is replaced wholesale, and overlays
// whose field is absent are removed rather than left stale.
func (s *Session) applyOverlays(data models.ChartData) {
	desired := make(map[string]OverlaySeries)

	if len(data.Volume) > 0 {
		desired[SeriesVolume] = OverlaySeries{
			Name:   SeriesVolume,
			Kind:   OverlayHistogram,
			Points: volumePoints(data.Volume),
		}
	}
	if len(data.Indicators.BBUpper) > 0 {
		desired[SeriesBBUpper] = OverlaySeries{Name: SeriesBBUpper, Kind: OverlayBand, Points: data.Indicators.BBUpper}
	}
	if len(data.Indicators.BBMiddle) > 0 {
		desired[SeriesBBMiddle] = OverlaySeries{Name: SeriesBBMiddle, Kind: OverlayBand, Points: data.Indicators.BBMiddle}
	}
	if len(data.Indicators.BBLower) > 0 {
		desired[SeriesBBLower] = OverlaySeries{Name: SeriesBBLower, Kind: OverlayBand, Points: data.Indicators.BBLower}
	}
	if len(data.Indicators.MACDHist) > 0 {
		desired[SeriesMACDHist] = OverlaySeries{Name: SeriesMACDHist, Kind: OverlayHistogram, Points: data.Indicators.MACDHist}
	}
	if len(data.Indicators.RSI) > 0 {
		desired[SeriesRSI] = OverlaySeries{Name: SeriesRSI, Kind: OverlayLine, Points: data.Indicators.RSI}
		// Reference levels are derived, not fetched: constant series
		// regenerated over the base series' current time domain.
		desired[SeriesRSIOverLevel] = OverlaySeries{
			Name:   SeriesRSIOverLevel,
			Kind:   OverlayThreshold,
			Points: constantSeries(rsiOverboughtLevel, data.Candles),
		}
		desired[SeriesRSISubLevel] = OverlaySeries{
			Name:   SeriesRSISubLevel,
			Kind:   OverlayThreshold,
			Points: constantSeries(rsiOversoldLevel, data.Candles),
		}
	}

	for name := range s.overlays {
		if _, keep := desired[name]; !keep {
			s.surface.RemoveOverlay(name)
		}
	}
	for _, series := range desired {
		s.surface.SetOverlay(series)
	}
	s.overlays = desired
}

func volumePoints(volume []models.VolumePoint) []models.SeriesPoint {
	points := make([]models.SeriesPoint, len(volume))
	for i, v := range volume {
		value := v.Value
		points[i] = models.SeriesPoint{Time: v.Time, Value: &value}
	}
	return points
}

func constantSeries(level float64, candles []models.Candle) []models.SeriesPoint {
	points := make([]models.SeriesPoint, len(candles))
	for i, c := range candles {
		value := level
		points[i] = models.SeriesPoint{Time: c.Time, Value: &value}
	}
	return points
}
