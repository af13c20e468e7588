package features

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"PriceLabeler/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"
)

// ErrDegenerateTarget is returned when the target has fewer than two classes.
var ErrDegenerateTarget = errors.New("target has fewer than two classes")

// DefaultTopN is how many formulas the pipeline prints.
const DefaultTopN = 10

// Synthesizer generates derived features and ranks them against a label target.
type Synthesizer interface {
	Fit(series *model.PriceSeries, target []model.Label) ([]model.Feature, error)
}

// Options configures Search.
type Options struct {
	Lookbacks   []int   // rolling window lengths, in bars
	MinCoverage float64 // minimum share of finite rows a candidate needs
}

// Search enumerates unary, rolling and pairwise transforms of the base
// columns and ranks them by correlation ratio with the target.
type Search struct {
	opts   Options
	logger zerolog.Logger
}

// NewSearch creates a Search, filling defaults for unset options.
func NewSearch(opts Options) *Search {
	if len(opts.Lookbacks) == 0 {
		opts.Lookbacks = []int{5, 15, 60}
	}
	if opts.MinCoverage <= 0 {
		opts.MinCoverage = 0.5
	}
	return &Search{opts: opts, logger: log.With().Str("component", "features").Logger()}
}

type candidate struct {
	formula string
	values  []float64
}

// Fit returns every scorable candidate ranked best first.
func (s *Search) Fit(series *model.PriceSeries, target []model.Label) ([]model.Feature, error) {
	if len(target) != series.Len() {
		return nil, fmt.Errorf("target has %d rows, series has %d", len(target), series.Len())
	}
	classes, counts := encodeTarget(target)
	if len(counts) < 2 {
		return nil, fmt.Errorf("%w: %d distinct labels", ErrDegenerateTarget, len(counts))
	}

	base, err := baseColumns(series)
	if err != nil {
		return nil, err
	}
	cands, err := expand(base, s.opts.Lookbacks)
	if err != nil {
		return nil, err
	}

	minRows := int(math.Ceil(s.opts.MinCoverage * float64(len(target))))
	ranked := make([]model.Feature, 0, len(cands))
	for _, c := range cands {
		score, ok := correlationRatio(c.values, classes, len(counts), minRows)
		if !ok {
			continue
		}
		ranked = append(ranked, model.Feature{Formula: c.formula, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Formula < ranked[j].Formula
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	s.logger.Info().
		Int("candidates", len(cands)).
		Int("scored", len(ranked)).
		Int("classes", len(counts)).
		Msg("feature search done")
	return ranked, nil
}

// encodeTarget maps labels to dense class ids in first-seen order.
func encodeTarget(target []model.Label) ([]int, []int) {
	ids := make(map[model.Label]int)
	classes := make([]int, len(target))
	var counts []int
	for i, l := range target {
		id, ok := ids[l]
		if !ok {
			id = len(counts)
			ids[l] = id
			counts = append(counts, 0)
		}
		classes[i] = id
		counts[id]++
	}
	return classes, counts
}

// correlationRatio computes eta squared: between-class over total sum of squares,
// over the rows where x is finite.
func correlationRatio(x []float64, classes []int, k, minRows int) (float64, bool) {
	vals := make([]float64, 0, len(x))
	byClass := make([][]float64, k)
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		vals = append(vals, v)
		byClass[classes[i]] = append(byClass[classes[i]], v)
	}
	if len(vals) < minRows || len(vals) < 2 {
		return 0, false
	}
	present := 0
	for _, c := range byClass {
		if len(c) > 0 {
			present++
		}
	}
	if present < 2 {
		return 0, false
	}

	mean, variance := stat.MeanVariance(vals, nil)
	ssTotal := variance * float64(len(vals)-1)
	if ssTotal <= 0 || math.IsNaN(ssTotal) || math.IsInf(ssTotal, 0) {
		return 0, false
	}
	ssBetween := 0.0
	for _, c := range byClass {
		if len(c) == 0 {
			continue
		}
		d := stat.Mean(c, nil) - mean
		ssBetween += float64(len(c)) * d * d
	}
	eta := ssBetween / ssTotal
	if eta > 1 {
		eta = 1
	}
	return eta, true
}
