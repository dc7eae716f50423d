// Package grouping buckets classified measurements into selectable groups and
// renders each group as chart-ready series.
package grouping

import "github.com/couchcryptid/water-quality-etl/internal/domain"

// Point is one value on a chart. Index is the 1-based position on the shared
// x axis; Label is how that position is captioned.
type Point struct {
	Index int     `json:"index" yaml:"index"`
	Label string  `json:"label" yaml:"label"`
	Value float64 `json:"value" yaml:"value"`
}

// Series is a named run of points, one bar set or line.
type Series struct {
	Name   string  `json:"name" yaml:"name"`
	Points []Point `json:"points" yaml:"points"`
}

// Panel is one plot. Most charts have a single panel; pair charts draw one
// panel per location.
type Panel struct {
	Title  string   `json:"title" yaml:"title"`
	XAxis  string   `json:"x_axis" yaml:"x_axis"`
	Series []Series `json:"series" yaml:"series"`
}

// Chart is the rendered form of one group.
type Chart struct {
	Key      string          `json:"key" yaml:"key"`
	Title    string          `json:"title" yaml:"title"`
	Strategy domain.Strategy `json:"strategy" yaml:"strategy"`
	Unit     string          `json:"unit" yaml:"unit"`
	Panels   []Panel         `json:"panels" yaml:"panels"`
	// Reference is the compliance threshold for the charted analyte, when one applies.
	Reference *float64 `json:"reference,omitempty" yaml:"reference,omitempty"`
}

// Group is one selectable bucket of records.
type Group struct {
	Key   string `json:"key" yaml:"key"`
	Title string `json:"title" yaml:"title"`
	// Analyte is set when every record in the group shares one analyte.
	Analyte string `json:"analyte,omitempty" yaml:"analyte,omitempty"`
	// Timestamps is the group's ordered x axis for time-bucketed strategies.
	Timestamps []string              `json:"timestamps" yaml:"timestamps"`
	Records    []domain.Measurement `json:"-" yaml:"-"`
}
