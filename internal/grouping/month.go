package grouping

import (
	"fmt"
	"maps"
	"slices"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
)

// ChunkSize is the most timestamps one month group shows at a time.
const ChunkSize = 10

const monthLayout = "2006-01"

// Chunk splits ordered timestamps into consecutive runs of at most size.
func Chunk(timestamps []string, size int) [][]string {
	if size <= 0 || len(timestamps) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(timestamps)+size-1)/size)
	for start := 0; start < len(timestamps); start += size {
		end := min(start+size, len(timestamps))
		chunks = append(chunks, timestamps[start:end:end])
	}
	return chunks
}

type monthBucket struct {
	analyte string
	times   map[string]struct{}
	records []domain.Measurement
}

// groupByMonth buckets records by analyte and month, then splits each bucket
// into numbered chunks of distinct sample times. Records whose timestamp does
// not parse have no month and are left out.
func groupByMonth(records []domain.Measurement) []Group {
	buckets := make(map[string]*monthBucket)
	for _, r := range records {
		t, ok := r.Time()
		if !ok {
			continue
		}
		base := r.Analyte + " - " + t.Format(monthLayout)
		b, ok := buckets[base]
		if !ok {
			b = &monthBucket{analyte: r.Analyte, times: make(map[string]struct{})}
			buckets[base] = b
		}
		b.times[r.Timestamp] = struct{}{}
		b.records = append(b.records, r)
	}

	var groups []Group
	for _, base := range slices.Sorted(maps.Keys(buckets)) {
		b := buckets[base]
		times := slices.Sorted(maps.Keys(b.times))
		for i, chunk := range Chunk(times, ChunkSize) {
			groups = append(groups, Group{
				Key:        fmt.Sprintf("%s (%d)", base, i+1),
				Title:      base,
				Analyte:    b.analyte,
				Timestamps: chunk,
				Records:    recordsAt(b.records, chunk),
			})
		}
	}
	return groups
}

func recordsAt(records []domain.Measurement, timestamps []string) []domain.Measurement {
	want := make(map[string]struct{}, len(timestamps))
	for _, ts := range timestamps {
		want[ts] = struct{}{}
	}
	var out []domain.Measurement
	for _, r := range records {
		if _, ok := want[r.Timestamp]; ok {
			out = append(out, r)
		}
	}
	return out
}

// monthChart draws one bar series per location across the chunk's timestamps.
// A location with no reading at a timestamp gets a zero bar so every series
// shares the same axis.
func monthChart(g Group) Chart {
	values := make(map[string]map[string]float64, len(g.Timestamps))
	locations := make(map[string]struct{})
	for _, r := range g.Records {
		if !r.Reading.Valid {
			continue
		}
		if values[r.Timestamp] == nil {
			values[r.Timestamp] = make(map[string]float64)
		}
		values[r.Timestamp][r.Location] = r.Reading.Value
		locations[r.Location] = struct{}{}
	}

	labels := make([]string, len(g.Timestamps))
	for i, ts := range g.Timestamps {
		labels[i] = dayTimeLabel(ts)
	}

	var series []Series
	for _, loc := range slices.Sorted(maps.Keys(locations)) {
		points := make([]Point, len(g.Timestamps))
		for i, ts := range g.Timestamps {
			points[i] = Point{Index: i + 1, Label: labels[i], Value: values[ts][loc]}
		}
		series = append(series, Series{Name: loc, Points: points})
	}

	return Chart{Panels: []Panel{{
		Title:  g.Title,
		XAxis:  "Day and Time (dd - hh:mm:ss)",
		Series: series,
	}}}
}

func dayTimeLabel(ts string) string {
	t, ok := domain.ParseTimestamp(ts)
	if !ok {
		return ts
	}
	return t.Format("02 - 15:04:05")
}
