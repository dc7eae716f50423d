// Package loader reads sample files into classified measurement collections.
package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
)

// ErrSourceUnavailable wraps failures to open an input source.
var ErrSourceUnavailable = errors.New("source unavailable")

const maxLineBytes = 1 << 20

// Stats counts lines seen during one load.
type Stats struct {
	Lines    int `json:"lines"`
	Accepted int `json:"accepted"`
}

// Result is the outcome of loading one source for one category. SourceErr is
// set when the source could not be read; Records then holds whatever was read
// before the failure, possibly nothing. It is informational, never fatal.
type Result struct {
	Profile   domain.Profile
	Source    string
	Records   []domain.Measurement
	Stats     Stats
	SourceErr error
}

// Loader turns delimited sample files into measurement collections.
type Loader struct {
	logger *slog.Logger
}

// New creates a Loader.
func New(logger *slog.Logger) *Loader {
	return &Loader{logger: logger}
}

// Load reads path and returns the records belonging to p's category. A source
// that cannot be opened is logged and yields an empty result.
func (l *Loader) Load(path string, p domain.Profile) Result {
	f, err := os.Open(path)
	if err != nil {
		l.logger.Warn("unable to open source file",
			"path", path,
			"category", p.Category,
			"error", err,
		)
		return Result{
			Profile:   p,
			Source:    path,
			SourceErr: fmt.Errorf("%w: %w", ErrSourceUnavailable, err),
		}
	}
	defer f.Close()

	return l.LoadReader(f, path, p)
}

// LoadReader reads delimited text from r. The first line is always treated as
// a header and discarded.
func (l *Loader) LoadReader(r io.Reader, source string, p domain.Profile) Result {
	res := Result{Profile: p, Source: source}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	header := true
	for scanner.Scan() {
		if header {
			header = false
			continue
		}
		res.Stats.Lines++

		line := strings.TrimSuffix(scanner.Text(), "\r")
		row, ok := p.Extract(domain.ParseLine(line, domain.Delimiter))
		if !ok {
			continue
		}
		res.Records = append(res.Records, p.Build(row))
	}

	if err := scanner.Err(); err != nil {
		l.logger.Warn("source read stopped early",
			"path", source,
			"category", p.Category,
			"lines", res.Stats.Lines,
			"error", err,
		)
		res.SourceErr = fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	if p.SortByLocation {
		sort.SliceStable(res.Records, func(i, j int) bool {
			return res.Records[i].Location < res.Records[j].Location
		})
	}

	res.Stats.Accepted = len(res.Records)
	return res
}
