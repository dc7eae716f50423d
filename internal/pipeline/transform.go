package pipeline

import (
	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/grouping"
	"github.com/couchcryptid/water-quality-etl/internal/loader"
	"github.com/couchcryptid/water-quality-etl/internal/table"
)

// Snapshot is everything derived from one load of one category. Snapshots are
// never modified; a reload builds new ones.
type Snapshot struct {
	Load      domain.Load
	Profile   domain.Profile
	Records   []domain.Measurement
	Stats     loader.Stats
	Options   table.Options
	Tally     table.Tally
	Groups    *grouping.Index
	SourceErr error
}

// transform derives the read-side views of a loaded category.
func transform(res loader.Result) *Snapshot {
	return &Snapshot{
		Load:      domain.NewLoad(res.Profile.Category, res.Source),
		Profile:   res.Profile,
		Records:   res.Records,
		Stats:     res.Stats,
		Options:   table.BuildOptions(res.Records),
		Tally:     table.Count(res.Profile.Rule, res.Records),
		Groups:    grouping.Build(res.Profile, res.Records),
		SourceErr: res.SourceErr,
	}
}

// Record finds a record by ID.
func (s *Snapshot) Record(id string) (domain.Measurement, bool) {
	for _, m := range s.Records {
		if m.ID == id {
			return m, true
		}
	}
	return domain.Measurement{}, false
}
