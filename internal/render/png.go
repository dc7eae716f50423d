// Package render draws grouped charts as PNG images.
package render

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/couchcryptid/water-quality-etl/internal/grouping"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 512
)

var (
	// ErrNoPanel is returned when the requested panel does not exist.
	ErrNoPanel = errors.New("chart panel out of range")
	// ErrNothingToPlot is returned when a panel has no points at all.
	ErrNothingToPlot = errors.New("chart has no readable values")
)

// Options sizes the image and picks which panel to draw. Zero sizes fall
// back to the defaults.
type Options struct {
	Panel  int
	Width  int
	Height int
}

// PNG draws one panel of c to w.
func PNG(w io.Writer, c grouping.Chart, opts Options) error {
	if opts.Panel < 0 || opts.Panel >= len(c.Panels) {
		return fmt.Errorf("%w: %d of %d", ErrNoPanel, opts.Panel, len(c.Panels))
	}
	ch, err := build(c, c.Panels[opts.Panel])
	if err != nil {
		return err
	}
	ch.Width = cmp.Or(opts.Width, DefaultWidth)
	ch.Height = cmp.Or(opts.Height, DefaultHeight)

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %q: %w", c.Key, err)
	}
	return nil
}

// build converts a panel to a go-chart chart. Both axes get explicit ranges so
// a panel with a single point still renders.
func build(c grouping.Chart, p grouping.Panel) (*chart.Chart, error) {
	lo, hi := math.Inf(1), math.Inf(-1)
	bottom, top := 0.0, 0.0
	labels := make(map[int]string)

	var series []chart.Series
	hasThreshold := false
	for i, s := range p.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, pt := range s.Points {
			xs[j], ys[j] = float64(pt.Index), pt.Value
			lo, hi = min(lo, xs[j]), max(hi, xs[j])
			bottom, top = min(bottom, pt.Value), max(top, pt.Value)
			if pt.Label != "" {
				labels[pt.Index] = pt.Label
			}
		}
		if s.Name == grouping.ThresholdSeries {
			hasThreshold = true
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style:   seriesStyle(s.Name, i),
		})
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNothingToPlot, c.Key)
	}

	if c.Reference != nil && !hasThreshold {
		ref := *c.Reference
		series = append(series, chart.ContinuousSeries{
			Name:    grouping.ThresholdSeries,
			XValues: []float64{lo, hi},
			YValues: []float64{ref, ref},
			Style:   thresholdStyle(),
		})
		top = max(top, ref)
	}
	if top <= bottom {
		top = bottom + 1
	}

	ticks := make([]chart.Tick, 0, len(labels))
	for _, idx := range slices.Sorted(maps.Keys(labels)) {
		ticks = append(ticks, chart.Tick{Value: float64(idx), Label: labels[idx]})
	}

	title := c.Title
	if p.Title != "" {
		title += " - " + p.Title
	}

	ch := &chart.Chart{
		Title:      title,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  p.XAxis,
			Range: &chart.ContinuousRange{Min: lo - 0.5, Max: hi + 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  c.Unit,
			Range: &chart.ContinuousRange{Min: bottom, Max: top * 1.1},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(ch)}
	return ch, nil
}

func seriesStyle(name string, i int) chart.Style {
	if name == grouping.ThresholdSeries {
		return thresholdStyle()
	}
	col := chart.GetDefaultColor(i)
	return chart.Style{
		StrokeColor: col,
		StrokeWidth: 2,
		DotColor:    col,
		DotWidth:    4,
	}
}

func thresholdStyle() chart.Style {
	return chart.Style{
		StrokeColor:     chart.ColorRed,
		StrokeWidth:     2,
		StrokeDashArray: []float64{6, 4},
	}
}
