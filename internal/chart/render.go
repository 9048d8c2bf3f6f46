package chart

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"alphaquant-console/internal/errors"
	"alphaquant-console/internal/models"
)

const (
	minSurfaceWidth  = 40
	defaultWidth     = 100
	pricePaneHeight  = 14
	volumePaneHeight = 3
	oscPaneHeight    = 5
)

var (
	upStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	downStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	bandStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	oscStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	thresholdStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	axisStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	titleStyle     = lipgloss.NewStyle().Bold(true)
)

// TermSurface draws a candlestick chart with overlay panes into a
// fixed-width block of styled text. It satisfies Surface and additionally
// exposes Render for hosts that embed the chart into a larger layout.
type TermSurface struct {
	mu       sync.Mutex
	owner    string
	owned    bool
	width    int
	candles  []models.Candle
	overlays map[string]OverlaySeries
}

// NewTermSurface creates an unowned terminal surface.
func NewTermSurface(width int) *TermSurface {
	if width < minSurfaceWidth {
		width = defaultWidth
	}
	return &TermSurface{
		width:    width,
		overlays: make(map[string]OverlaySeries),
	}
}

// Acquire claims the surface for one session. Fails while another
// session holds it.
func (t *TermSurface) Acquire(symbol string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.owned {
		return errors.ErrSurfaceOwned
	}
	t.owned = true
	t.owner = symbol
	return nil
}

// SetBase replaces the candlestick base series.
func (t *TermSurface) SetBase(candles []models.Candle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.candles = candles
}

// SetOverlay replaces one overlay series.
func (t *TermSurface) SetOverlay(series OverlaySeries) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.overlays[series.Name] = series
}

// RemoveOverlay detaches one overlay series.
func (t *TermSurface) RemoveOverlay(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.overlays, name)
}

// Resize updates the drawing width.
func (t *TermSurface) Resize(width int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if width >= minSurfaceWidth {
		t.width = width
	}
}

// Release returns the surface to the unowned state and clears its series.
func (t *TermSurface) Release() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.owned = false
	t.owner = ""
	t.candles = nil
	t.overlays = make(map[string]OverlaySeries)
}

// Render draws the current series into a styled text block: price pane
// with band overlays, then a volume strip and an oscillator pane when
// those overlays are attached.
func (t *TermSurface) Render() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.owned || len(t.candles) == 0 {
		return axisStyle.Render("waiting for chart data...")
	}

	plotWidth := t.width - 12 // leave room for the value axis
	candles := tailCandles(t.candles, plotWidth)

	var b strings.Builder
	b.WriteString(t.renderHeader(candles))
	b.WriteByte('\n')
	b.WriteString(t.renderPricePane(candles))

	if vol, ok := t.overlays[SeriesVolume]; ok {
		b.WriteByte('\n')
		b.WriteString(renderHistogramPane("VOL", tailPoints(vol.Points, plotWidth), volumePaneHeight, false))
	}
	if rsi, ok := t.overlays[SeriesRSI]; ok {
		b.WriteByte('\n')
		b.WriteString(t.renderOscPane("RSI", tailPoints(rsi.Points, plotWidth)))
	}
	if hist, ok := t.overlays[SeriesMACDHist]; ok {
		b.WriteByte('\n')
		b.WriteString(renderHistogramPane("MACD", tailPoints(hist.Points, plotWidth), oscPaneHeight, true))
	}
	return b.String()
}

func (t *TermSurface) renderHeader(candles []models.Candle) string {
	last := candles[len(candles)-1]
	first := candles[0]
	change := last.Close - first.Open
	pct := 0.0
	if first.Open != 0 {
		pct = change / first.Open * 100
	}
	style := upStyle
	if change < 0 {
		style = downStyle
	}
	return titleStyle.Render(t.owner) + "  " +
		fmt.Sprintf("%.2f ", last.Close) +
		style.Render(fmt.Sprintf("%+.2f (%+.2f%%)", change, pct)) + "  " +
		axisStyle.Render(fmt.Sprintf("%s .. %s", first.Time, last.Time))
}

func (t *TermSurface) renderPricePane(candles []models.Candle) string {
	lo, hi := priceRange(candles)
	for _, name := range []string{SeriesBBUpper, SeriesBBMiddle, SeriesBBLower} {
		if band, ok := t.overlays[name]; ok {
			lo, hi = extendRange(lo, hi, tailPoints(band.Points, len(candles)))
		}
	}
	if hi <= lo {
		hi = lo + 1
	}

	grid := make([][]string, pricePaneHeight)
	for row := range grid {
		grid[row] = make([]string, len(candles))
		for col := range grid[row] {
			grid[row][col] = " "
		}
	}

	rowFor := func(value float64) int {
		frac := (value - lo) / (hi - lo)
		row := int(math.Round(float64(pricePaneHeight-1) * (1 - frac)))
		if row < 0 {
			row = 0
		}
		if row >= pricePaneHeight {
			row = pricePaneHeight - 1
		}
		return row
	}

	for _, name := range []string{SeriesBBUpper, SeriesBBMiddle, SeriesBBLower} {
		band, ok := t.overlays[name]
		if !ok {
			continue
		}
		for col, p := range tailPoints(band.Points, len(candles)) {
			if col >= len(candles) || p.Value == nil {
				continue
			}
			grid[rowFor(*p.Value)][col] = bandStyle.Render("·")
		}
	}

	for col, c := range candles {
		style := upStyle
		if c.Close < c.Open {
			style = downStyle
		}
		top, bottom := rowFor(c.High), rowFor(c.Low)
		bodyTop := rowFor(math.Max(c.Open, c.Close))
		bodyBottom := rowFor(math.Min(c.Open, c.Close))
		for row := top; row <= bottom; row++ {
			glyph := "│"
			if row >= bodyTop && row <= bodyBottom {
				glyph = "█"
			}
			grid[row][col] = style.Render(glyph)
		}
	}

	var b strings.Builder
	for row := 0; row < pricePaneHeight; row++ {
		value := hi - (hi-lo)*float64(row)/float64(pricePaneHeight-1)
		b.WriteString(axisStyle.Render(fmt.Sprintf("%10.2f ", value)))
		b.WriteString(strings.Join(grid[row], ""))
		if row < pricePaneHeight-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderOscPane draws a bounded oscillator with its threshold rows.
func (t *TermSurface) renderOscPane(label string, points []models.SeriesPoint) string {
	lo, hi := 0.0, 100.0
	grid := make([][]string, oscPaneHeight)
	for row := range grid {
		grid[row] = make([]string, len(points))
		for col := range grid[row] {
			grid[row][col] = " "
		}
	}

	rowFor := func(value float64) int {
		frac := (value - lo) / (hi - lo)
		row := int(math.Round(float64(oscPaneHeight-1) * (1 - frac)))
		if row < 0 {
			row = 0
		}
		if row >= oscPaneHeight {
			row = oscPaneHeight - 1
		}
		return row
	}

	for _, level := range []float64{rsiOverboughtLevel, rsiOversoldLevel} {
		row := rowFor(level)
		for col := range grid[row] {
			grid[row][col] = thresholdStyle.Render("┄")
		}
	}
	for col, p := range points {
		if p.Value == nil {
			continue
		}
		grid[rowFor(*p.Value)][col] = oscStyle.Render("•")
	}

	var b strings.Builder
	for row := 0; row < oscPaneHeight; row++ {
		prefix := "           "
		if row == 0 {
			prefix = axisStyle.Render(fmt.Sprintf("%10s ", label))
		}
		b.WriteString(prefix)
		b.WriteString(strings.Join(grid[row], ""))
		if row < oscPaneHeight-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// renderHistogramPane draws magnitude bars. Signed panes center on zero
// and color by sign; unsigned panes grow up from the baseline.
func renderHistogramPane(label string, points []models.SeriesPoint, height int, signed bool) string {
	maxAbs := 0.0
	for _, p := range points {
		if p.Value != nil && math.Abs(*p.Value) > maxAbs {
			maxAbs = math.Abs(*p.Value)
		}
	}
	if maxAbs == 0 {
		maxAbs = 1
	}

	grid := make([][]string, height)
	for row := range grid {
		grid[row] = make([]string, len(points))
		for col := range grid[row] {
			grid[row][col] = " "
		}
	}

	for col, p := range points {
		if p.Value == nil {
			continue
		}
		style := upStyle
		if signed && *p.Value < 0 {
			style = downStyle
		}
		bars := int(math.Ceil(math.Abs(*p.Value) / maxAbs * float64(height)))
		if bars < 1 {
			bars = 1
		}
		if signed {
			mid := height / 2
			if *p.Value >= 0 {
				for row := mid; row >= 0 && mid-row < bars; row-- {
					grid[row][col] = style.Render("█")
				}
			} else {
				for row := mid; row < height && row-mid < bars; row++ {
					grid[row][col] = style.Render("█")
				}
			}
		} else {
			for row := height - 1; row >= height-bars; row-- {
				grid[row][col] = style.Render("▐")
			}
		}
	}

	var b strings.Builder
	for row := 0; row < height; row++ {
		prefix := "           "
		if row == 0 {
			prefix = axisStyle.Render(fmt.Sprintf("%10s ", label))
		}
		b.WriteString(prefix)
		b.WriteString(strings.Join(grid[row], ""))
		if row < height-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func tailCandles(candles []models.Candle, n int) []models.Candle {
	if n <= 0 || len(candles) <= n {
		return candles
	}
	return candles[len(candles)-n:]
}

func tailPoints(points []models.SeriesPoint, n int) []models.SeriesPoint {
	if n <= 0 || len(points) <= n {
		return points
	}
	return points[len(points)-n:]
}

func priceRange(candles []models.Candle) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, c := range candles {
		lo = math.Min(lo, c.Low)
		hi = math.Max(hi, c.High)
	}
	return lo, hi
}

func extendRange(lo, hi float64, points []models.SeriesPoint) (float64, float64) {
	for _, p := range points {
		if p.Value == nil {
			continue
		}
		lo = math.Min(lo, *p.Value)
		hi = math.Max(hi, *p.Value)
	}
	return lo, hi
}
