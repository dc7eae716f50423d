// Package domain models water-quality sample records and the compliance rules
// applied to them.
//
// # Data Source
//
// Input files are the annual water-quality sampling exports published by the
// Environment Agency (one CSV per year, e.g. "Y-2024.csv"). Each row is one
// determinand result for one sample at one sampling point. The first line is
// a header and is always discarded.
//
// # Column Layout
//
// Columns are addressed by position, not by header name:
//
//	 3  sample.samplingPoint.label        sampling point (location)
//	 4  sample.sampleDateTime             "2006-01-02T15:04:05"
//	 5  determinand.label                 short code, e.g. "112TCEthan", "BWP - O.L."
//	 6  determinand.definition            long name, e.g. "PCB - 028", "Perfluorooctanoic acid"
//	 9  result                            numeric, optionally "<"-prefixed
//	11  determinand.unit.label            e.g. "ug/l", "mg/l"
//	12  sample.sampledMaterialType.label  water type (litter only)
//	13  sample.isComplianceSample         "true" / "false"
//
// Which analyte column a category reads (5 or 6) and how many columns a row
// must carry (12, 13 or 14) depend on the category; see [Profiles].
//
// # Results
//
// A leading "<" marks a detection-limit-bounded result: the true value is
// below the reported number. The number itself is used for classification
// and the marker is kept as [Reading.Censored]. Results that do not parse as
// a finite number are unreadable and classify as "Unknown" where the
// category has that verdict.
//
// Units are normalized to micrograms per litre before classification:
// "mg/l" values are multiplied by 1000 and relabelled "ug/l". Any other unit
// passes through untouched.
//
// # Compliance Thresholds
//
// All thresholds are in ug/l:
//
//	Fluorinated:  <= 0.1 Compliant | > 0.1 Non-Compliant
//	Pollutants:   112TCEthan, Chloroform 0.1 | Benzene 1.0 | Toluene 4.0
//	              below Compliant | at Caution | above Exceeds
//	POPs (PCB):   <= 0.001 Compliant | > 0.001 Non-Compliant
//	Litter:       < 0.05 Compliant | >= 0.05 Non-Compliant
//	Compliance:   taken from isComplianceSample, no threshold
//
// Comparisons against a threshold use a relative tolerance so that values
// produced by unit conversion (0.0001 mg/l -> 0.1 ug/l) land on the boundary.
//
// # ID Generation
//
// Record IDs are deterministic SHA-256 hashes of
// category|location|timestamp|analyte|result so that reloading the same file
// republishes the same keys. See [generateID].
package domain
