package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Measurement is one classified sample result. Values are never patched after
// construction; a changed source means a full reload.
type Measurement struct {
	ID        string   `json:"id"`
	Category  Category `json:"category"`
	Location  string   `json:"location"`
	Timestamp string   `json:"timestamp"`
	Analyte   string   `json:"analyte"`
	Reading   Reading  `json:"reading"`
	Unit      string   `json:"unit"`
	WaterType string   `json:"water_type,omitempty"`
	Verdict   Verdict  `json:"verdict"`
}

// Time parses the measurement timestamp.
func (m Measurement) Time() (time.Time, bool) {
	return ParseTimestamp(m.Timestamp)
}

// Load identifies one load operation for one category.
type Load struct {
	ID       string    `json:"id"`
	Category Category  `json:"category"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}

// NewLoad stamps a new load of source for category c.
func NewLoad(c Category, source string) Load {
	return Load{
		ID:       uuid.NewString(),
		Category: c,
		Source:   source,
		LoadedAt: clock.Now().UTC(),
	}
}

// generateID produces a deterministic record ID from the fields that identify
// a result in the source file.
func generateID(c Category, location, timestamp, analyte, result string) string {
	input := fmt.Sprintf("%s|%s|%s|%s|%s", c, location, timestamp, analyte, result)
	hash := sha256.Sum256([]byte(input))
	return string(c) + "-" + hex.EncodeToString(hash[:8])
}
