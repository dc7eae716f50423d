package grouping

import "github.com/couchcryptid/water-quality-etl/internal/domain"

// Index holds the groups derived from one record collection, in the order
// they are offered for selection.
type Index struct {
	profile domain.Profile
	keys    []string
	groups  map[string]Group
}

// Build groups records using the profile's strategy. The index is immutable;
// a new collection needs a new index.
func Build(p domain.Profile, records []domain.Measurement) *Index {
	var groups []Group
	switch p.Strategy {
	case domain.StrategyMonthChunks:
		groups = groupByMonth(records)
	case domain.StrategyPair:
		groups = groupByPair(records)
	case domain.StrategyPoint:
		groups = groupByPoint(records)
	}

	idx := &Index{
		profile: p,
		keys:    make([]string, 0, len(groups)),
		groups:  make(map[string]Group, len(groups)),
	}
	for _, g := range groups {
		idx.keys = append(idx.keys, g.Key)
		idx.groups[g.Key] = g
	}
	return idx
}

// Keys returns the selectable keys in display order.
func (ix *Index) Keys() []string {
	out := make([]string, len(ix.keys))
	copy(out, ix.keys)
	return out
}

// Len returns the number of groups.
func (ix *Index) Len() int { return len(ix.keys) }

// Default returns the key selected when nothing has been chosen yet.
func (ix *Index) Default() (string, bool) {
	if len(ix.keys) == 0 {
		return "", false
	}
	return ix.keys[0], true
}

// Select returns the group for key.
func (ix *Index) Select(key string) (Group, bool) {
	g, ok := ix.groups[key]
	return g, ok
}

// Chart renders the group for key. It reports false for unknown keys.
func (ix *Index) Chart(key string) (Chart, bool) {
	g, ok := ix.groups[key]
	if !ok {
		return Chart{}, false
	}

	ref, hasRef := ix.reference(g)

	var c Chart
	switch ix.profile.Strategy {
	case domain.StrategyMonthChunks:
		c = monthChart(g)
	case domain.StrategyPair:
		c = pairChart(g)
	case domain.StrategyPoint:
		c = pointChart(g, ref, hasRef)
	}
	c.Key = g.Key
	c.Title = g.Title
	c.Strategy = ix.profile.Strategy
	c.Unit = unitOf(g.Records)
	if hasRef {
		c.Reference = &ref
	}
	return c, true
}

func (ix *Index) reference(g Group) (float64, bool) {
	if ix.profile.Rule == nil {
		return 0, false
	}
	analyte := g.Analyte
	if analyte == "" && len(g.Records) > 0 {
		analyte = g.Records[0].Analyte
	}
	return ix.profile.Rule.Reference(analyte)
}

func unitOf(records []domain.Measurement) string {
	for _, r := range records {
		if r.Reading.Valid {
			return r.Unit
		}
	}
	return domain.CanonicalUnit
}
