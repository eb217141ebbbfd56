// Package chart renders the dashboard's release charts as SVG.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"labeldash/internal/catalog"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to plot.
var ErrNoData = errors.New("no data to chart")

const (
	DefaultWidth  = 600
	DefaultHeight = 400
)

// Scheme is a sequential colour ramp used to shade bars by count.
type Scheme []drawing.Color

var (
	Viridis = Scheme{
		drawing.ColorFromHex("440154"),
		drawing.ColorFromHex("3b528b"),
		drawing.ColorFromHex("21918c"),
		drawing.ColorFromHex("5ec962"),
		drawing.ColorFromHex("fde725"),
	}
	Plasma = Scheme{
		drawing.ColorFromHex("0d0887"),
		drawing.ColorFromHex("7e03a8"),
		drawing.ColorFromHex("cc4778"),
		drawing.ColorFromHex("f89540"),
		drawing.ColorFromHex("f0f921"),
	}
)

// At returns the ramp colour for t in [0,1].
func (s Scheme) At(t float64) drawing.Color {
	if len(s) == 0 {
		return chart.ColorBlue
	}
	if len(s) == 1 || t <= 0 {
		return s[0]
	}
	if t >= 1 {
		return s[len(s)-1]
	}
	pos := t * float64(len(s)-1)
	i := int(pos)
	return lerp(s[i], s[i+1], pos-float64(i))
}

func lerp(a, b drawing.Color, t float64) drawing.Color {
	mix := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return drawing.Color{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
}

// Bar describes a bar chart of grouped counts.
type Bar struct {
	Title  string
	YTitle string
	Counts []catalog.Count
	Scheme Scheme
	Width  int
	Height int
}

// Line describes a line chart of counts per year. Keys must be years.
type Line struct {
	Title  string
	XTitle string
	YTitle string
	Counts []catalog.Count
	Width  int
	Height int
}

// RenderBar writes b as SVG, one bar per count in the given order.
func RenderBar(w io.Writer, b Bar) error {
	if len(b.Counts) == 0 {
		return ErrNoData
	}
	width, height := size(b.Width, b.Height)
	max := maxCount(b.Counts)

	bars := make([]chart.Value, len(b.Counts))
	for i, c := range b.Counts {
		color := b.Scheme.At(float64(c.Count) / float64(max))
		bars[i] = chart.Value{
			Label: c.Key,
			Value: float64(c.Count),
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}

	slot := (width - 80) / len(bars)
	barWidth, spacing := slot*2/3, slot/3
	if barWidth < 4 {
		barWidth = 4
	}
	if spacing < 1 {
		spacing = 1
	}

	graph := chart.BarChart{
		Title:      b.Title,
		Width:      width,
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
		},
		YAxis: chart.YAxis{
			Name:  b.YTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: yMax(max)},
			ValueFormatter: func(v interface{}) string {
				return strconv.Itoa(int(v.(float64)))
			},
		},
		Bars: bars,
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render %q: %w", b.Title, err)
	}
	return nil
}

// RenderLine writes l as an SVG line chart with a dot per year.
func RenderLine(w io.Writer, l Line) error {
	if len(l.Counts) == 0 {
		return ErrNoData
	}
	width, height := size(l.Width, l.Height)

	xs := make([]float64, 0, len(l.Counts))
	ys := make([]float64, 0, len(l.Counts))
	ticks := make([]chart.Tick, 0, len(l.Counts))
	for _, c := range l.Counts {
		year, err := strconv.Atoi(c.Key)
		if err != nil {
			return fmt.Errorf("line chart key %q is not a year: %w", c.Key, err)
		}
		xs = append(xs, float64(year))
		ys = append(ys, float64(c.Count))
		ticks = append(ticks, chart.Tick{Value: float64(year), Label: c.Key})
	}

	graph := chart.Chart{
		Title:  l.Title,
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name:  l.XTitle,
			Range: &chart.ContinuousRange{Min: xs[0] - 0.5, Max: xs[len(xs)-1] + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  l.YTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: yMax(maxCount(l.Counts))},
			ValueFormatter: func(v interface{}) string {
				return strconv.Itoa(int(v.(float64)))
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    l.YTitle,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: chart.ColorBlue,
					StrokeWidth: 2,
					DotColor:    chart.ColorBlue,
					DotWidth:    4,
				},
			},
		},
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("render %q: %w", l.Title, err)
	}
	return nil
}

func size(w, h int) (int, int) {
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

func maxCount(counts []catalog.Count) int {
	max := 1
	for _, c := range counts {
		if c.Count > max {
			max = c.Count
		}
	}
	return max
}

func yMax(max int) float64 {
	return math.Ceil(float64(max) * 1.1)
}
