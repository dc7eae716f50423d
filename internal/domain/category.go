package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a category name matches no profile.
var ErrUnknownCategory = errors.New("unknown category")

// Category names one analysis view over the sample data.
type Category string

const (
	Pollutants  Category = "pollutants"
	POPs        Category = "pops"
	Litter      Category = "litter"
	Fluorinated Category = "fluorinated"
	Compliance  Category = "compliance"
)

// Strategy selects how a category's records are grouped for charting.
type Strategy string

const (
	// StrategyMonthChunks groups by analyte and month, split into chunks of timestamps.
	StrategyMonthChunks Strategy = "month-chunks"
	// StrategyPair groups by analyte and a secondary attribute, full history.
	StrategyPair Strategy = "pair"
	// StrategyPoint groups by location and sample time.
	StrategyPoint Strategy = "point"
)

const unused = -1

// Columns maps record fields to source column positions. Unused fields are -1.
type Columns struct {
	Location  int
	Timestamp int
	Analyte   int
	Result    int
	Unit      int
	WaterType int
	Flag      int
}

// Row is the subset of a parsed line a category needs.
type Row struct {
	Location  string
	Timestamp string
	Analyte   string
	Result    string
	Unit      string
	WaterType string
	Flag      string
}

// Profile bundles everything that distinguishes one category: which rows
// belong to it, where its columns are, how it classifies and how it groups.
type Profile struct {
	Category   Category
	Title      string
	MinColumns int
	Columns    Columns
	Match      func(analyte string) bool
	Rule       Rule
	Strategy   Strategy
	// SortByLocation orders the loaded table by sampling point.
	SortByLocation bool
}

const totalPCBLabel = "PCB : Total"

var namedPollutants = map[string]float64{
	"112TCEthan": 0.1,
	"Chloroform": 0.1,
	"Benzene":    1.0,
	"Toluene":    4.0,
}

var litterCodes = map[string]bool{
	"BWP - O.L.": true,
	"BWP - A.F.": true,
}

var profiles = []Profile{
	{
		Category:   Pollutants,
		Title:      "Pollutant Overview",
		MinColumns: 12,
		Columns:    Columns{Location: 3, Timestamp: 4, Analyte: 5, Result: 9, Unit: 11, WaterType: unused, Flag: unused},
		Match: func(analyte string) bool {
			_, ok := namedPollutants[analyte]
			return ok
		},
		Rule:           TieredRule{Limits: namedPollutants},
		Strategy:       StrategyMonthChunks,
		SortByLocation: true,
	},
	{
		Category:   POPs,
		Title:      "Persistent Organic Pollutants",
		MinColumns: 12,
		Columns:    Columns{Location: 3, Timestamp: 4, Analyte: 6, Result: 9, Unit: 11, WaterType: unused, Flag: unused},
		Match: func(analyte string) bool {
			if strings.EqualFold(analyte, totalPCBLabel) {
				return false
			}
			return containsFold(analyte, "PCB")
		},
		Rule:           CeilingRule{Limit: 0.001, Inclusive: true, Unreadable: Unknown},
		Strategy:       StrategyPoint,
		SortByLocation: true,
	},
	{
		Category:   Litter,
		Title:      "Environmental Litter Indicators",
		MinColumns: 13,
		Columns:    Columns{Location: 3, Timestamp: 4, Analyte: 5, Result: 9, Unit: 11, WaterType: 12, Flag: unused},
		Match:      func(analyte string) bool { return litterCodes[analyte] },
		Rule:       CeilingRule{Limit: 0.05, Inclusive: false, Unreadable: NonCompliant},
		Strategy:   StrategyPair,
	},
	{
		Category:       Fluorinated,
		Title:          "Fluorinated Compounds",
		MinColumns:     12,
		Columns:        Columns{Location: 3, Timestamp: 4, Analyte: 6, Result: 9, Unit: 11, WaterType: unused, Flag: unused},
		Match:          func(analyte string) bool { return containsFold(analyte, "fluoro") },
		Rule:           CeilingRule{Limit: 0.1, Inclusive: true, Unreadable: Unknown},
		Strategy:       StrategyPoint,
		SortByLocation: true,
	},
	{
		Category:   Compliance,
		Title:      "Compliance Dashboard",
		MinColumns: 14,
		Columns:    Columns{Location: 3, Timestamp: 4, Analyte: 5, Result: 9, Unit: 11, WaterType: unused, Flag: 13},
		Match:      func(string) bool { return true },
		Rule:       FlagRule{},
		Strategy:   StrategyMonthChunks,
	},
}

// Profiles returns every category profile in dashboard order.
func Profiles() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// LookupProfile finds the profile for a category name (case-insensitive).
func LookupProfile(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	for _, p := range profiles {
		if strings.EqualFold(string(p.Category), name) {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Extract returns the category's view of a parsed row, or false when the row
// is too short or its analyte does not belong to the category.
func (p Profile) Extract(fields []string) (Row, bool) {
	if len(fields) < p.MinColumns {
		return Row{}, false
	}

	row := Row{
		Location:  column(fields, p.Columns.Location),
		Timestamp: column(fields, p.Columns.Timestamp),
		Analyte:   column(fields, p.Columns.Analyte),
		Result:    column(fields, p.Columns.Result),
		Unit:      column(fields, p.Columns.Unit),
		WaterType: column(fields, p.Columns.WaterType),
		Flag:      column(fields, p.Columns.Flag),
	}
	if !p.Match(row.Analyte) {
		return Row{}, false
	}
	return row, true
}

// Build normalizes and classifies an extracted row into a Measurement.
func (p Profile) Build(row Row) Measurement {
	reading, unit := NormalizeReading(row.Result, row.Unit)
	return Measurement{
		ID:        generateID(p.Category, row.Location, row.Timestamp, row.Analyte, row.Result),
		Category:  p.Category,
		Location:  row.Location,
		Timestamp: row.Timestamp,
		Analyte:   row.Analyte,
		Reading:   reading,
		Unit:      unit,
		WaterType: row.WaterType,
		Verdict:   p.Rule.Classify(row.Analyte, reading, row.Flag),
	}
}

func column(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
