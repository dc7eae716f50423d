package domain

import (
	"fmt"
	"strings"
)

const defaultPCBNote = "Health Risk: Unknown.\nMonitoring: Not specified.\nSafety Level: General ≤ 0.001 µg/L."

var pcbNotes = map[string]string{
	"PCB - 028":   "Health Risk: Potential endocrine disruptor.\nMonitoring: High priority in water sources due to persistence and bioaccumulation.",
	"PCB - 052":   "Health Risk: May cause liver toxicity.\nMonitoring: Regular assessment in industrial areas; prevalent in soil and water.",
	"PCB - 101":   "Health Risk: Possible reproductive toxicity.\nMonitoring: Essential in urban runoff; frequent checks in aquatic systems.",
	"PCB - 105":   "Health Risk: Can impair immune function.\nMonitoring: High priority in marine environments; bioaccumulates in fish.",
	"PCB - 118":   "Health Risk: Suspected endocrine disruptor.\nMonitoring: Found in indoor dust; necessitates indoor air quality assessments.",
	"PCB - 138":   "Health Risk: Potential neurotoxin.\nMonitoring: Persistent in sediments; requires sediment and biota sampling.",
	"PCB - 153":   "Health Risk: Linked to developmental delays.\nMonitoring: Critical in human biomonitoring; detected in breast milk.",
	"PCB - 156":   "Health Risk: May disrupt thyroid function.\nMonitoring: Important due to dioxin-like toxicity; analyze air and food products.",
	"PCB - 180":   "Health Risk: Associated with skin conditions.\nMonitoring: Necessary in agriculture; can accumulate in crops.",
	totalPCBLabel: "Health Risk: Includes cancer and developmental issues.\nMonitoring: Mandated under EU/UK regulations; comprehensive environmental monitoring required.",
}

// PollutantNotes returns health-risk and monitoring notes for a PCB congener.
// Unlisted congeners get a generic note.
func PollutantNotes(analyte string) string {
	note, ok := pcbNotes[analyte]
	if !ok {
		return defaultPCBNote
	}
	return note + "\nSafety Level: ≤ 0.001 µg/L."
}

// Details renders the info-panel text for one record.
func Details(m Measurement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\nDate: %s\nPollutant: %s\nResult: %s %s\nCompliance: %s",
		m.Location, m.Timestamp, m.Analyte, m.Reading.Display(), m.Unit, m.Verdict)

	if m.Category == POPs {
		b.WriteString("\n")
		b.WriteString(PollutantNotes(m.Analyte))
	}
	if m.Verdict == NonCompliant || m.Verdict == Exceeds {
		b.WriteString("\nPossible Causes: Elevated pollutant levels detected.")
	}
	return b.String()
}
