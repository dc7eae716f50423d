package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/grouping"
)

func ptr(v float64) *float64 { return &v }

func monthChart() grouping.Chart {
	return grouping.Chart{
		Key:      "PFOS - 2024-02 (1)",
		Title:    "PFOS - 2024-02",
		Strategy: domain.StrategyMonthChunks,
		Unit:     "ug/l",
		Panels: []grouping.Panel{{
			XAxis: "Day and Time (dd - hh:mm:ss)",
			Series: []grouping.Series{
				{Name: "ABBEY MILLS", Points: []grouping.Point{
					{Index: 1, Label: "14 - 10:20:00", Value: 0.02},
					{Index: 2, Label: "15 - 09:00:00", Value: 0},
				}},
				{Name: "THAMES AT TEDDINGTON", Points: []grouping.Point{
					{Index: 1, Label: "14 - 10:20:00", Value: 0},
					{Index: 2, Label: "15 - 09:00:00", Value: 0.3},
				}},
			},
		}},
		Reference: ptr(0.1),
	}
}

func TestPNG_WritesImageOfRequestedSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, monthChart(), Options{Width: 640, Height: 320}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 640, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
}

func TestPNG_DefaultSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, monthChart(), Options{}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, DefaultWidth, img.Bounds().Dx())
	assert.Equal(t, DefaultHeight, img.Bounds().Dy())
}

func TestPNG_SinglePoint(t *testing.T) {
	c := grouping.Chart{
		Key:   "ABBEY MILLS - 2024-02-14T10:20:00",
		Title: "ABBEY MILLS - 2024-02-14T10:20:00",
		Panels: []grouping.Panel{{
			XAxis:  "Sample",
			Series: []grouping.Series{{Name: "Pollutant Levels", Points: []grouping.Point{{Index: 1, Value: 0.004}}}},
		}},
	}
	var buf bytes.Buffer
	require.NoError(t, PNG(&buf, c, Options{}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestPNG_PanelOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	err := PNG(&buf, monthChart(), Options{Panel: 1})
	require.ErrorIs(t, err, ErrNoPanel)
	assert.Zero(t, buf.Len())
}

func TestPNG_NothingToPlot(t *testing.T) {
	c := grouping.Chart{
		Key:    "empty",
		Panels: []grouping.Panel{{Series: []grouping.Series{{Name: "Pollutant Levels"}}}},
	}
	err := PNG(&bytes.Buffer{}, c, Options{})
	require.ErrorIs(t, err, ErrNothingToPlot)
}

func TestBuild_AddsReferenceLine(t *testing.T) {
	c := monthChart()
	ch, err := build(c, c.Panels[0])
	require.NoError(t, err)

	require.Len(t, ch.Series, 3)
	ref, ok := ch.Series[2].(chart.ContinuousSeries)
	require.True(t, ok)
	assert.Equal(t, grouping.ThresholdSeries, ref.Name)
	assert.Equal(t, []float64{1, 2}, ref.XValues)
	assert.Equal(t, []float64{0.1, 0.1}, ref.YValues)

	require.Len(t, ch.XAxis.Ticks, 2)
	assert.Equal(t, "14 - 10:20:00", ch.XAxis.Ticks[0].Label)
	assert.Equal(t, "PFOS - 2024-02", ch.Title)
	assert.Equal(t, "ug/l", ch.YAxis.Name)
}

func TestBuild_KeepsExistingThreshold(t *testing.T) {
	c := grouping.Chart{
		Key:   "k",
		Title: "k",
		Panels: []grouping.Panel{{
			Title: "Location: ABBEY MILLS",
			Series: []grouping.Series{
				{Name: "Pollutant Levels", Points: []grouping.Point{{Index: 1, Value: 2}, {Index: 2, Value: 4}}},
				{Name: grouping.ThresholdSeries, Points: []grouping.Point{{Index: 1, Value: 3}, {Index: 2, Value: 3}}},
			},
		}},
		Reference: ptr(3),
	}
	ch, err := build(c, c.Panels[0])
	require.NoError(t, err)
	assert.Len(t, ch.Series, 2)
	assert.Equal(t, "k - Location: ABBEY MILLS", ch.Title)
}
