package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleFields builds a 14-column source row with the given analyte in both
// the label (5) and definition (6) columns.
func sampleFields(label, definition, result, unit string) []string {
	return []string{
		"http://environment.data.gov.uk/water-quality/data/measurement/TH-1",
		"http://environment.data.gov.uk/water-quality/id/sampling-point/TH-PTTR0017",
		"TH-PTTR0017",
		"THAMES AT TEDDINGTON",
		"2024-02-14T10:20:00",
		label,
		definition,
		"0123",
		"",
		result,
		"",
		unit,
		"RIVER / RUNNING SURFACE WATER",
		"true",
	}
}

func mustProfile(t *testing.T, name string) Profile {
	t.Helper()
	p, err := LookupProfile(name)
	require.NoError(t, err)
	return p
}

func TestLookupProfile(t *testing.T) {
	p := mustProfile(t, "POPS")
	assert.Equal(t, POPs, p.Category)

	_, err := LookupProfile("radiation")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestProfiles_DashboardOrder(t *testing.T) {
	var names []Category
	for _, p := range Profiles() {
		names = append(names, p.Category)
	}
	assert.Equal(t, []Category{Pollutants, POPs, Litter, Fluorinated, Compliance}, names)
}

func TestProfile_Extract_Filters(t *testing.T) {
	tests := []struct {
		name     string
		category string
		fields   []string
		accepted bool
	}{
		{"fluoro substring", "fluorinated", sampleFields("PFOA", "Perfluorooctanoic acid", "0.01", "ug/l"), true},
		{"fluoro case-insensitive", "fluorinated", sampleFields("X", "PERFLUOROBUTANE", "0.01", "ug/l"), true},
		{"fluoro rejects other", "fluorinated", sampleFields("Benzene", "Benzene", "0.01", "ug/l"), false},
		{"named pollutant", "pollutants", sampleFields("Chloroform", "Trichloromethane", "0.01", "ug/l"), true},
		{"named pollutant exact only", "pollutants", sampleFields("benzene", "Benzene", "0.01", "ug/l"), false},
		{"pcb congener", "pops", sampleFields("PCB028", "PCB - 028", "0.0001", "ug/l"), true},
		{"pcb lowercase", "pops", sampleFields("x", "pcb - 052", "0.0001", "ug/l"), true},
		{"pcb total excluded", "pops", sampleFields("PCBTOT", "PCB : Total", "0.0001", "ug/l"), false},
		{"litter code", "litter", sampleFields("BWP - O.L.", "Bathing water litter", "0.2", "count"), true},
		{"litter other code", "litter", sampleFields("BWP - X", "Bathing water litter", "0.2", "count"), false},
		{"compliance accepts all", "compliance", sampleFields("Zinc", "Zinc", "3", "ug/l"), true},
		{"compliance needs 14 columns", "compliance", sampleFields("Zinc", "Zinc", "3", "ug/l")[:13], false},
		{"litter needs 13 columns", "litter", sampleFields("BWP - A.F.", "x", "3", "")[:12], false},
		{"pollutants needs 12 columns", "pollutants", sampleFields("Benzene", "x", "3", "")[:11], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := mustProfile(t, tt.category).Extract(tt.fields)
			assert.Equal(t, tt.accepted, ok)
		})
	}
}

func TestProfile_Extract_Columns(t *testing.T) {
	row, ok := mustProfile(t, "litter").Extract(sampleFields("BWP - O.L.", "Bathing water litter", "0.2", "count"))
	require.True(t, ok)

	assert.Equal(t, Row{
		Location:  "THAMES AT TEDDINGTON",
		Timestamp: "2024-02-14T10:20:00",
		Analyte:   "BWP - O.L.",
		Result:    "0.2",
		Unit:      "count",
		WaterType: "RIVER / RUNNING SURFACE WATER",
	}, row)

	row, ok = mustProfile(t, "compliance").Extract(sampleFields("Zinc", "Zinc", "3", "ug/l"))
	require.True(t, ok)
	assert.Equal(t, "true", row.Flag)
	assert.Empty(t, row.WaterType)
}

func TestProfile_Build_EndToEnd(t *testing.T) {
	p := mustProfile(t, "fluorinated")
	row, ok := p.Extract(sampleFields("PFOS", "Perfluorooctane sulphonate", "<0.05", "mg/l"))
	require.True(t, ok)

	m := p.Build(row)
	assert.InDelta(t, 50.0, m.Reading.Value, 1e-9)
	assert.True(t, m.Reading.Valid)
	assert.True(t, m.Reading.Censored)
	assert.Equal(t, "ug/l", m.Unit)
	assert.Equal(t, NonCompliant, m.Verdict)
	assert.Equal(t, Fluorinated, m.Category)
	assert.Equal(t, "Perfluorooctane sulphonate", m.Analyte)
}

func TestProfile_Build_ComplianceFlag(t *testing.T) {
	p := mustProfile(t, "compliance")
	fields := sampleFields("Zinc", "Zinc", "not-a-number", "ug/l")
	fields[13] = "False"

	row, ok := p.Extract(fields)
	require.True(t, ok)
	m := p.Build(row)
	assert.Equal(t, NonCompliant, m.Verdict)
	assert.False(t, m.Reading.Valid)
}

func TestProfile_Reference(t *testing.T) {
	limit, ok := mustProfile(t, "fluorinated").Rule.Reference("PFOS")
	assert.True(t, ok)
	assert.InDelta(t, 0.1, limit, 1e-12)

	limit, ok = mustProfile(t, "pollutants").Rule.Reference("Toluene")
	assert.True(t, ok)
	assert.InDelta(t, 4.0, limit, 1e-12)
}
