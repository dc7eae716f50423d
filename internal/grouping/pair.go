package grouping

import (
	"maps"
	"slices"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
)

const pairSeparator = " | "

// groupByPair buckets records by analyte and water type with no chunking.
func groupByPair(records []domain.Measurement) []Group {
	buckets := make(map[string]*Group)
	times := make(map[string]map[string]struct{})
	for _, r := range records {
		key := r.Analyte + pairSeparator + r.WaterType
		g, ok := buckets[key]
		if !ok {
			g = &Group{Key: key, Title: key, Analyte: r.Analyte}
			buckets[key] = g
			times[key] = make(map[string]struct{})
		}
		g.Records = append(g.Records, r)
		times[key][r.Timestamp] = struct{}{}
	}

	groups := make([]Group, 0, len(buckets))
	for _, key := range slices.Sorted(maps.Keys(buckets)) {
		g := *buckets[key]
		g.Timestamps = slices.Sorted(maps.Keys(times[key]))
		groups = append(groups, g)
	}
	return groups
}

// pairChart draws one panel per location, each with the location's full
// history in timestamp order. Unreadable results are not plotted.
func pairChart(g Group) Chart {
	history := make(map[string]map[string]float64)
	for _, r := range g.Records {
		if !r.Reading.Valid {
			continue
		}
		if history[r.Location] == nil {
			history[r.Location] = make(map[string]float64)
		}
		history[r.Location][r.Timestamp] = r.Reading.Value
	}

	var panels []Panel
	for _, loc := range slices.Sorted(maps.Keys(history)) {
		byTime := history[loc]
		var points []Point
		for i, ts := range slices.Sorted(maps.Keys(byTime)) {
			points = append(points, Point{Index: i + 1, Label: monthDayLabel(ts), Value: byTime[ts]})
		}
		panels = append(panels, Panel{
			Title:  "Location: " + loc,
			XAxis:  "Date (MM:dd)",
			Series: []Series{{Name: "Results", Points: points}},
		})
	}
	return Chart{Panels: panels}
}

func monthDayLabel(ts string) string {
	t, ok := domain.ParseTimestamp(ts)
	if !ok {
		return ts
	}
	return t.Format("01:02")
}
