package grouping

import (
	"maps"
	"slices"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
)

const levelsSeries = "Pollutant Levels"

// ThresholdSeries names the series that draws the reference line on point charts.
const ThresholdSeries = "Non-Compliant Threshold"

// groupByPoint buckets records by sampling point and sample time.
func groupByPoint(records []domain.Measurement) []Group {
	buckets := make(map[string]*Group)
	for _, r := range records {
		key := r.Location + " - " + r.Timestamp
		g, ok := buckets[key]
		if !ok {
			g = &Group{Key: key, Title: key, Timestamps: []string{r.Timestamp}}
			buckets[key] = g
		}
		g.Records = append(g.Records, r)
	}

	groups := make([]Group, 0, len(buckets))
	for _, key := range slices.Sorted(maps.Keys(buckets)) {
		g := *buckets[key]
		if sameAnalyte(g.Records) {
			g.Analyte = g.Records[0].Analyte
		}
		groups = append(groups, g)
	}
	return groups
}

func sameAnalyte(records []domain.Measurement) bool {
	for _, r := range records[1:] {
		if r.Analyte != records[0].Analyte {
			return false
		}
	}
	return true
}

// pointChart lays the group's records along one index axis. The first series
// joins every readable value; each analyte then gets its own series, and a
// flat threshold line spans the plotted index range.
func pointChart(g Group, ref float64, hasRef bool) Chart {
	levels := Series{Name: levelsSeries}
	byAnalyte := make(map[string][]Point)
	first, last := 0, 0
	for i, r := range g.Records {
		if !r.Reading.Valid {
			continue
		}
		p := Point{Index: i + 1, Label: r.Analyte, Value: r.Reading.Value}
		levels.Points = append(levels.Points, p)
		byAnalyte[r.Analyte] = append(byAnalyte[r.Analyte], p)
		if first == 0 {
			first = p.Index
		}
		last = p.Index
	}

	series := []Series{levels}
	for _, analyte := range slices.Sorted(maps.Keys(byAnalyte)) {
		series = append(series, Series{Name: analyte, Points: byAnalyte[analyte]})
	}
	if hasRef && first > 0 {
		series = append(series, Series{Name: ThresholdSeries, Points: []Point{
			{Index: first, Value: ref},
			{Index: last, Value: ref},
		}})
	}

	return Chart{Panels: []Panel{{
		Title:  g.Title,
		XAxis:  "Sample",
		Series: series,
	}}}
}
