package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/grouping"
	"github.com/couchcryptid/water-quality-etl/internal/loader"
	"github.com/couchcryptid/water-quality-etl/internal/observability"
	"github.com/couchcryptid/water-quality-etl/internal/table"
)

var (
	// ErrNotLoaded is returned when a category has no data from the current load.
	ErrNotLoaded = errors.New("category not loaded")
	// ErrUnknownGroup is returned when a chart is requested for a key the
	// current grouping does not contain.
	ErrUnknownGroup = errors.New("unknown group key")
	// ErrRecordNotFound is returned when no record in the category has the ID.
	ErrRecordNotFound = errors.New("record not found")
)

// Extractor reads one source for one category.
type Extractor interface {
	Load(path string, p domain.Profile) loader.Result
}

// BatchLoader writes a category's classified records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, load domain.Load, records []domain.Measurement) error
}

// Pipeline owns the current record collections and every view derived from
// them. Reloads are serialized and replace the whole state at once; readers
// always see either the old state or the new one.
type Pipeline struct {
	extractor Extractor
	publisher BatchLoader
	logger    *slog.Logger
	metrics   *observability.Metrics
	cache     *chartCache
	ready     atomic.Bool

	loadMu    sync.Mutex
	mu        sync.RWMutex
	source    string
	snapshots map[domain.Category]*Snapshot
}

// New creates a Pipeline. A nil publisher disables publishing.
func New(e Extractor, publisher BatchLoader, logger *slog.Logger, metrics *observability.Metrics, cacheSize int) *Pipeline {
	return &Pipeline{
		extractor: e,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		cache:     newChartCache(cacheSize),
		snapshots: make(map[domain.Category]*Snapshot),
	}
}

// CheckReadiness returns nil once the first reload has finished.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no data has been loaded yet")
	}
	return nil
}

// CategoryReport summarizes one category of a reload.
type CategoryReport struct {
	Category     domain.Category        `json:"category" yaml:"category"`
	LoadID       string                 `json:"load_id" yaml:"load_id"`
	Lines        int                    `json:"lines" yaml:"lines"`
	Accepted     int                    `json:"accepted" yaml:"accepted"`
	Verdicts     map[domain.Verdict]int `json:"verdicts" yaml:"verdicts"`
	SourceError  string                 `json:"source_error,omitempty" yaml:"source_error,omitempty"`
	PublishError string                 `json:"publish_error,omitempty" yaml:"publish_error,omitempty"`
}

// Report is the outcome of a reload.
type Report struct {
	Source     string           `json:"source" yaml:"source"`
	Categories []CategoryReport `json:"categories" yaml:"categories"`
}

// Reload reads path for every requested category (all categories when none are
// named) and replaces the entire current state with the result. Categories not
// requested are dropped. A source that cannot be read leaves its categories
// empty and is reported, not returned as an error; only an unknown category
// name fails the call, before any state changes.
func (p *Pipeline) Reload(ctx context.Context, path string, categories []domain.Category) (Report, error) {
	profiles, err := resolve(categories)
	if err != nil {
		return Report{}, err
	}

	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	start := time.Now()
	next := make(map[domain.Category]*Snapshot, len(profiles))
	report := Report{Source: path}
	for _, prof := range profiles {
		snap := transform(p.extractor.Load(path, prof))
		next[prof.Category] = snap
		p.observe(snap)
		report.Categories = append(report.Categories, newCategoryReport(snap))
	}

	p.mu.Lock()
	p.source = path
	p.snapshots = next
	p.mu.Unlock()
	p.cache.purge()

	p.metrics.RecordsLoaded.Reset()
	for c, snap := range next {
		p.metrics.RecordsLoaded.WithLabelValues(string(c)).Set(float64(len(snap.Records)))
	}

	if p.publisher != nil {
		for i, prof := range profiles {
			if err := p.publish(ctx, next[prof.Category]); err != nil {
				report.Categories[i].PublishError = err.Error()
			}
		}
	}

	p.metrics.LoadsCompleted.Inc()
	p.metrics.LoadDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("reload complete", "path", path, "categories", len(profiles), "duration", time.Since(start))

	return report, nil
}

func resolve(categories []domain.Category) ([]domain.Profile, error) {
	if len(categories) == 0 {
		return domain.Profiles(), nil
	}
	profiles := make([]domain.Profile, 0, len(categories))
	seen := make(map[domain.Category]bool, len(categories))
	for _, c := range categories {
		prof, err := domain.LookupProfile(string(c))
		if err != nil {
			return nil, err
		}
		if seen[prof.Category] {
			continue
		}
		seen[prof.Category] = true
		profiles = append(profiles, prof)
	}
	return profiles, nil
}

func (p *Pipeline) observe(snap *Snapshot) {
	c := string(snap.Profile.Category)
	p.metrics.RowsRead.WithLabelValues(c).Add(float64(snap.Stats.Lines))
	for _, m := range snap.Records {
		p.metrics.RecordsClassified.WithLabelValues(c, string(m.Verdict)).Inc()
	}
	if snap.SourceErr != nil {
		p.metrics.SourceFailures.WithLabelValues(c).Inc()
	}
	p.logger.Info("category loaded",
		"category", c,
		"load_id", snap.Load.ID,
		"lines", snap.Stats.Lines,
		"accepted", snap.Stats.Accepted,
		"groups", snap.Groups.Len(),
	)
}

func (p *Pipeline) publish(ctx context.Context, snap *Snapshot) error {
	if len(snap.Records) == 0 {
		return nil
	}
	if err := p.publisher.LoadBatch(ctx, snap.Load, snap.Records); err != nil {
		p.metrics.PublishErrors.Inc()
		p.logger.Warn("publish failed",
			"category", snap.Profile.Category,
			"load_id", snap.Load.ID,
			"records", len(snap.Records),
			"error", err,
		)
		return err
	}
	p.metrics.RecordsPublished.Add(float64(len(snap.Records)))
	return nil
}

func newCategoryReport(snap *Snapshot) CategoryReport {
	r := CategoryReport{
		Category: snap.Profile.Category,
		LoadID:   snap.Load.ID,
		Lines:    snap.Stats.Lines,
		Accepted: snap.Stats.Accepted,
		Verdicts: snap.Tally.Verdicts,
	}
	if snap.SourceErr != nil {
		r.SourceError = snap.SourceErr.Error()
	}
	return r
}

// Snapshot returns the current state of category c.
func (p *Pipeline) Snapshot(c domain.Category) (*Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	snap, ok := p.snapshots[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotLoaded, c)
	}
	return snap, nil
}

// Query narrows a category's record table.
type Query struct {
	Text  string
	Field table.Field
	Value string
}

// Records returns the category's records that match q, in table order.
func (p *Pipeline) Records(c domain.Category, q Query) ([]domain.Measurement, error) {
	snap, err := p.Snapshot(c)
	if err != nil {
		return nil, err
	}
	return table.Search(table.Filter(snap.Records, q.Field, q.Value), q.Text), nil
}

// Record returns one record and its details text.
func (p *Pipeline) Record(c domain.Category, id string) (domain.Measurement, string, error) {
	snap, err := p.Snapshot(c)
	if err != nil {
		return domain.Measurement{}, "", err
	}
	m, ok := snap.Record(id)
	if !ok {
		return domain.Measurement{}, "", fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return m, domain.Details(m), nil
}

// Options returns the category's filter option sets.
func (p *Pipeline) Options(c domain.Category) (table.Options, error) {
	snap, err := p.Snapshot(c)
	if err != nil {
		return table.Options{}, err
	}
	return snap.Options, nil
}

// GroupList is the ordered set of selectable chart keys for a category.
type GroupList struct {
	Keys    []string `json:"keys" yaml:"keys"`
	Default string   `json:"default,omitempty" yaml:"default,omitempty"`
}

// Groups returns the category's group keys and its default selection.
func (p *Pipeline) Groups(c domain.Category) (GroupList, error) {
	snap, err := p.Snapshot(c)
	if err != nil {
		return GroupList{}, err
	}
	def, _ := snap.Groups.Default()
	return GroupList{Keys: snap.Groups.Keys(), Default: def}, nil
}

// Chart renders the group selected by key. An unknown key is logged and
// reported with ErrUnknownGroup; nothing else changes.
func (p *Pipeline) Chart(c domain.Category, key string) (grouping.Chart, error) {
	snap, err := p.Snapshot(c)
	if err != nil {
		return grouping.Chart{}, err
	}

	cacheKey := string(c) + "|" + snap.Load.ID + "|" + key
	if chart, ok := p.cache.get(cacheKey); ok {
		p.metrics.SeriesCache.WithLabelValues("hit").Inc()
		return chart, nil
	}

	chart, ok := snap.Groups.Chart(key)
	if !ok {
		p.metrics.InvalidSelections.WithLabelValues(string(c)).Inc()
		p.logger.Warn("invalid group selection", "category", c, "key", key)
		return grouping.Chart{}, fmt.Errorf("%w: %q", ErrUnknownGroup, key)
	}
	p.metrics.SeriesCache.WithLabelValues("miss").Inc()
	p.cache.put(cacheKey, chart)
	return chart, nil
}

// CategorySummary is one dashboard card.
type CategorySummary struct {
	Category  domain.Category        `json:"category" yaml:"category"`
	Title     string                 `json:"title" yaml:"title"`
	LoadID    string                 `json:"load_id" yaml:"load_id"`
	LoadedAt  time.Time              `json:"loaded_at" yaml:"loaded_at"`
	Total     int                    `json:"total" yaml:"total"`
	Compliant int                    `json:"compliant" yaml:"compliant"`
	Verdicts  map[domain.Verdict]int `json:"verdicts" yaml:"verdicts"`
}

// Summary returns one card per loaded category, in dashboard order.
func (p *Pipeline) Summary() []CategorySummary {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := []CategorySummary{}
	for _, prof := range domain.Profiles() {
		snap, ok := p.snapshots[prof.Category]
		if !ok {
			continue
		}
		out = append(out, CategorySummary{
			Category:  prof.Category,
			Title:     prof.Title,
			LoadID:    snap.Load.ID,
			LoadedAt:  snap.Load.LoadedAt,
			Total:     snap.Tally.Total,
			Compliant: snap.Tally.Compliant(),
			Verdicts:  snap.Tally.Verdicts,
		})
	}
	return out
}

// Source returns the path of the current load.
func (p *Pipeline) Source() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.source
}
