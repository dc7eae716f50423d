// Package table implements the read-side helpers behind the record tables:
// text search, single-field filters, filter option sets and verdict tallies.
package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
)

// ErrUnknownField is returned when a filter names a field that cannot be filtered on.
var ErrUnknownField = errors.New("unknown filter field")

// NoFilter is the option value that disables a filter.
const NoFilter = "None"

// Field names a filterable record column.
type Field string

const (
	FieldNone     Field = "none"
	FieldLocation Field = "location"
	FieldAnalyte  Field = "analyte"
	FieldVerdict  Field = "verdict"
)

// ParseField maps a request value to a Field. Empty and "None" disable filtering.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return FieldNone, nil
	case "location":
		return FieldLocation, nil
	case "analyte", "pollutant":
		return FieldAnalyte, nil
	case "verdict", "compliance", "compliance status":
		return FieldVerdict, nil
	}
	return FieldNone, fmt.Errorf("%w: %q", ErrUnknownField, s)
}

func (f Field) value(m domain.Measurement) string {
	switch f {
	case FieldLocation:
		return m.Location
	case FieldAnalyte:
		return m.Analyte
	case FieldVerdict:
		return string(m.Verdict)
	}
	return ""
}

// Columns returns the record as it is displayed in a table row.
func Columns(m domain.Measurement) []string {
	cols := []string{m.Location, m.Timestamp, m.Analyte, m.Reading.Display(), m.Unit}
	if m.WaterType != "" {
		cols = append(cols, m.WaterType)
	}
	return append(cols, string(m.Verdict))
}

// Search keeps records where any displayed column contains text, ignoring case.
// Blank text keeps everything.
func Search(records []domain.Measurement, text string) []domain.Measurement {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return records
	}

	var out []domain.Measurement
	for _, m := range records {
		for _, col := range Columns(m) {
			if strings.Contains(strings.ToLower(col), needle) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Filter keeps records whose field equals value exactly. FieldNone, an empty
// value or NoFilter keeps everything.
func Filter(records []domain.Measurement, field Field, value string) []domain.Measurement {
	if field == FieldNone || value == "" || value == NoFilter {
		return records
	}

	var out []domain.Measurement
	for _, m := range records {
		if field.value(m) == value {
			out = append(out, m)
		}
	}
	return out
}

// Options are the distinct values offered by a table's filter dropdowns.
type Options struct {
	Locations []string `json:"locations" yaml:"locations"`
	Analytes  []string `json:"analytes" yaml:"analytes"`
	Verdicts  []string `json:"verdicts" yaml:"verdicts"`
}

// BuildOptions collects distinct values, each sorted case-insensitively.
func BuildOptions(records []domain.Measurement) Options {
	return Options{
		Locations: distinct(records, FieldLocation),
		Analytes:  distinct(records, FieldAnalyte),
		Verdicts:  distinct(records, FieldVerdict),
	}
}

// For returns the option list for one field, led by NoFilter.
func (o Options) For(field Field) []string {
	var values []string
	switch field {
	case FieldLocation:
		values = o.Locations
	case FieldAnalyte:
		values = o.Analytes
	case FieldVerdict:
		values = o.Verdicts
	}
	return append([]string{NoFilter}, values...)
}

func distinct(records []domain.Measurement, f Field) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, m := range records {
		v := f.value(m)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.SortFunc(out, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return out
}

// Tally counts records by verdict.
type Tally struct {
	Total    int                    `json:"total" yaml:"total"`
	Verdicts map[domain.Verdict]int `json:"verdicts" yaml:"verdicts"`
}

// Count tallies records, seeding every verdict the rule can produce with zero.
func Count(rule domain.Rule, records []domain.Measurement) Tally {
	t := Tally{Total: len(records), Verdicts: make(map[domain.Verdict]int)}
	if rule != nil {
		for _, v := range rule.Verdicts() {
			t.Verdicts[v] = 0
		}
	}
	for _, m := range records {
		t.Verdicts[m.Verdict]++
	}
	return t
}

// Compliant returns the number of Compliant records.
func (t Tally) Compliant() int { return t.Verdicts[domain.Compliant] }
