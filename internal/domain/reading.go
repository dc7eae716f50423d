package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	// CanonicalUnit is the unit every threshold is expressed in.
	CanonicalUnit = "ug/l"

	// TimestampLayout is the sampleDateTime format used by the source files.
	TimestampLayout = "2006-01-02T15:04:05"

	milligramsPerLitre = "mg/l"
	belowLimitPrefix   = "<"
)

// Reading is a normalized numeric result.
type Reading struct {
	Raw      string  `json:"raw"`
	Value    float64 `json:"value"`
	Valid    bool    `json:"valid"`
	Censored bool    `json:"below_detection_limit,omitempty"`
}

// NormalizeReading parses a raw result and converts it to the canonical unit.
// It returns the reading and the unit the value is now expressed in. When the
// result does not parse, the reading is invalid and the unit is returned as-is.
func NormalizeReading(raw, unit string) (Reading, string) {
	r := Reading{Raw: raw}

	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, belowLimitPrefix) {
		r.Censored = true
		s = strings.TrimPrefix(s, belowLimitPrefix)
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return r, unit
	}

	if unit == milligramsPerLitre {
		v *= 1000
		unit = CanonicalUnit
	}

	r.Value = v
	r.Valid = true
	return r, unit
}

// Display renders the reading the way result tables show it: five decimals, or
// "N/A" when unreadable.
func (r Reading) Display() string {
	if !r.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(r.Value, 'f', 5, 64)
}

// ParseTimestamp parses a sampleDateTime value.
func ParseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
