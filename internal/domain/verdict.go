package domain

import (
	"math"
	"strings"
)

// Verdict is the outcome of comparing a normalized reading against a rule.
type Verdict string

const (
	Compliant    Verdict = "Compliant"
	NonCompliant Verdict = "Non-Compliant"
	Caution      Verdict = "Caution"
	Exceeds      Verdict = "Exceeds"
	Unknown      Verdict = "Unknown"
)

// Rule classifies one record. The flag argument carries the source-provided
// compliance column for categories that have one and is empty otherwise.
type Rule interface {
	Classify(analyte string, r Reading, flag string) Verdict
	// Verdicts lists every verdict the rule can produce, in display order.
	Verdicts() []Verdict
	// Reference returns the threshold drawn next to charts of the analyte.
	Reference(analyte string) (float64, bool)
}

// CeilingRule splits readings at a single limit.
// Inclusive limits count a value on the limit as Compliant.
type CeilingRule struct {
	Limit     float64
	Inclusive bool
	// Unreadable is the verdict for readings that failed to parse.
	Unreadable Verdict
}

func (c CeilingRule) Classify(_ string, r Reading, _ string) Verdict {
	if !r.Valid {
		return c.Unreadable
	}
	if r.Value < c.Limit && !fuzzyEqual(r.Value, c.Limit) {
		return Compliant
	}
	if c.Inclusive && fuzzyEqual(r.Value, c.Limit) {
		return Compliant
	}
	return NonCompliant
}

func (c CeilingRule) Verdicts() []Verdict {
	if c.Unreadable == Unknown {
		return []Verdict{Compliant, NonCompliant, Unknown}
	}
	return []Verdict{Compliant, NonCompliant}
}

func (c CeilingRule) Reference(string) (float64, bool) { return c.Limit, true }

// TieredRule gives each named analyte its own limit and a three-way split:
// below the limit, on it (within tolerance) and above it.
type TieredRule struct {
	Limits map[string]float64
}

func (t TieredRule) Classify(analyte string, r Reading, _ string) Verdict {
	limit, ok := t.Limits[analyte]
	if !ok || !r.Valid {
		return Unknown
	}
	switch {
	case fuzzyEqual(r.Value, limit):
		return Caution
	case r.Value < limit:
		return Compliant
	default:
		return Exceeds
	}
}

func (TieredRule) Verdicts() []Verdict {
	return []Verdict{Compliant, Caution, Exceeds, Unknown}
}

func (t TieredRule) Reference(analyte string) (float64, bool) {
	limit, ok := t.Limits[analyte]
	return limit, ok
}

// FlagRule takes the verdict verbatim from the source compliance column.
type FlagRule struct{}

func (FlagRule) Classify(_ string, _ Reading, flag string) Verdict {
	if strings.EqualFold(strings.TrimSpace(flag), "true") {
		return Compliant
	}
	return NonCompliant
}

func (FlagRule) Verdicts() []Verdict { return []Verdict{Compliant, NonCompliant} }

func (FlagRule) Reference(string) (float64, bool) { return 0, false }

// fuzzyEqual reports whether a and b are equal to within a relative tolerance
// of one part in 10^12.
func fuzzyEqual(a, b float64) bool {
	return math.Abs(a-b)*1e12 <= math.Min(math.Abs(a), math.Abs(b))
}
