package ranking

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/colormatch/colorspace"
	"github.com/poiesic/colormatch/core"
)

// Skip reasons reported to a Monitor.
const (
	SkipReference = "reference"
	SkipNoColor   = "no color"
)

// Match is a ranked candidate and its distance to the reference color.
type Match struct {
	Item     *core.CatalogItem
	Distance float64
}

// Ranker orders candidates by color proximity.
type Ranker struct {
	converter colorspace.Converter
	logger    *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithRounding selects the Lab rounding mode used for distances.
// Default is colorspace.RoundLegacy.
func WithRounding(rounding colorspace.Rounding) Option {
	return func(r *Ranker) error {
		r.converter = colorspace.Converter{Rounding: rounding}
		return nil
	}
}

// NewRanker creates a new Ranker.
func NewRanker(opts ...Option) (*Ranker, error) {
	r := &Ranker{logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

var defaultRanker = &Ranker{logger: slog.Default()}

// Rank returns up to n candidates closest to reference using legacy rounding.
func Rank(reference *core.CatalogItem, candidates []*core.CatalogItem, n int) ([]Match, error) {
	return defaultRanker.Rank(reference, candidates, n)
}

// Rank returns up to n candidates closest to reference.
func (r *Ranker) Rank(reference *core.CatalogItem, candidates []*core.CatalogItem, n int) ([]Match, error) {
	return r.RankWithMonitor(reference, candidates, n, nil)
}

// RankWithMonitor ranks like Rank and reports each stage to monitor.
//
// It fails with core.ErrMissingColor when reference has no color and with
// ErrInvalidLimit when n is negative. An out-of-range reference color fails
// with core.ErrInvalidColor even when n == 0, which otherwise yields an empty
// result. A candidate carrying an out-of-range color fails the whole query with
// core.ErrInvalidColor.
func (r *Ranker) RankWithMonitor(reference *core.CatalogItem, candidates []*core.CatalogItem, n int, monitor Monitor) ([]Match, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if reference == nil {
		return nil, ErrReferenceRequired
	}
	if !reference.HasColor() {
		return nil, fmt.Errorf("%w: item %s", core.ErrMissingColor, reference.ID)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}

	refLab, err := r.converter.ToLab(*reference.Color)
	if err != nil {
		return nil, fmt.Errorf("reference %s: %w", reference.ID, err)
	}

	monitor.Start(reference, len(candidates))
	if n == 0 {
		matches := []Match{}
		monitor.Finish(matches)
		return matches, nil
	}

	matches := make([]Match, 0, len(candidates))
	for _, candidate := range candidates {
		switch {
		case candidate == nil:
			continue
		case candidate.ID == reference.ID:
			monitor.CandidateSkipped(candidate, SkipReference)
			continue
		case !candidate.HasColor():
			monitor.CandidateSkipped(candidate, SkipNoColor)
			continue
		}
		lab, err := r.converter.ToLab(*candidate.Color)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", candidate.ID, err)
		}
		matches = append(matches, Match{Item: candidate, Distance: colorspace.LabDistance(refLab, lab)})
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.Item.ID, b.Item.ID)
	})
	if len(matches) > n {
		matches = matches[:n]
	}

	r.logger.Debug("ranked candidates", "reference", reference.ID, "candidates", len(candidates), "matches", len(matches))
	monitor.Finish(matches)
	return matches, nil
}

// IDs extracts the item identities from matches, preserving order.
func IDs(matches []Match) []string {
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.Item.ID
	}
	return ids
}
