package table

import (
	"testing"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture() []domain.Measurement {
	return []domain.Measurement{
		{Location: "THAMES", Timestamp: "2024-02-14T10:20:00", Analyte: "PFOS", Reading: domain.Reading{Value: 50, Valid: true}, Unit: "ug/l", Verdict: domain.NonCompliant},
		{Location: "abbey mills", Timestamp: "2024-02-14T11:00:00", Analyte: "PFOA", Reading: domain.Reading{Value: 0.02, Valid: true}, Unit: "ug/l", Verdict: domain.Compliant},
		{Location: "ABBEY MILLS", Timestamp: "2024-02-14T11:00:00", Analyte: "PFBS", Reading: domain.Reading{Raw: "n/a"}, Unit: "ug/l", Verdict: domain.Unknown},
		{Location: "BEACH", Timestamp: "2024-05-20T08:00:00", Analyte: "BWP - O.L.", Reading: domain.Reading{Value: 0.2, Valid: true}, Unit: "count", WaterType: "SEA WATER", Verdict: domain.NonCompliant},
	}
}

func TestSearch(t *testing.T) {
	records := fixture()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"blank keeps all", "  ", 4},
		{"location case-insensitive", "abbey", 2},
		{"verdict", "non-compliant", 2},
		{"displayed value", "50.00000", 1},
		{"unreadable displays N/A", "n/a", 1},
		{"water type", "sea water", 1},
		{"no match", "benzene", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Search(records, tt.text), tt.want)
		})
	}
}

func TestFilter(t *testing.T) {
	records := fixture()

	assert.Len(t, Filter(records, FieldNone, "THAMES"), 4)
	assert.Len(t, Filter(records, FieldLocation, NoFilter), 4)
	assert.Len(t, Filter(records, FieldLocation, ""), 4)
	assert.Len(t, Filter(records, FieldLocation, "ABBEY MILLS"), 1, "location match is exact")
	assert.Len(t, Filter(records, FieldAnalyte, "PFOS"), 1)
	assert.Len(t, Filter(records, FieldVerdict, "Non-Compliant"), 2)
}

func TestParseField(t *testing.T) {
	tests := []struct {
		in   string
		want Field
	}{
		{"", FieldNone},
		{"None", FieldNone},
		{"Location", FieldLocation},
		{"pollutant", FieldAnalyte},
		{"analyte", FieldAnalyte},
		{"Compliance Status", FieldVerdict},
		{"verdict", FieldVerdict},
	}
	for _, tt := range tests {
		got, err := ParseField(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseField("unit")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestBuildOptions(t *testing.T) {
	opts := BuildOptions(fixture())

	assert.Equal(t, []string{"ABBEY MILLS", "abbey mills", "BEACH", "THAMES"}, opts.Locations)
	assert.Equal(t, []string{"BWP - O.L.", "PFBS", "PFOA", "PFOS"}, opts.Analytes)
	assert.Equal(t, []string{"Compliant", "Non-Compliant", "Unknown"}, opts.Verdicts)
	assert.Equal(t, []string{NoFilter, "Compliant", "Non-Compliant", "Unknown"}, opts.For(FieldVerdict))
	assert.Equal(t, []string{NoFilter}, opts.For(FieldNone))
}

func TestBuildOptions_Empty(t *testing.T) {
	opts := BuildOptions(nil)
	assert.Empty(t, opts.Locations)
	assert.NotNil(t, opts.Locations)
}

func TestCount(t *testing.T) {
	tally := Count(domain.CeilingRule{Limit: 0.1, Inclusive: true, Unreadable: domain.Unknown}, fixture())

	assert.Equal(t, 4, tally.Total)
	assert.Equal(t, 1, tally.Compliant())
	assert.Equal(t, map[domain.Verdict]int{
		domain.Compliant:    1,
		domain.NonCompliant: 2,
		domain.Unknown:      1,
	}, tally.Verdicts)
}

func TestCount_SeedsVerdictsWithZero(t *testing.T) {
	tally := Count(domain.TieredRule{}, nil)

	assert.Zero(t, tally.Total)
	assert.Equal(t, map[domain.Verdict]int{
		domain.Compliant: 0,
		domain.Caution:   0,
		domain.Exceeds:   0,
		domain.Unknown:   0,
	}, tally.Verdicts)
}
