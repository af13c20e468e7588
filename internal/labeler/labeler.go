package labeler

import (
	"errors"
	"fmt"
	"time"

	"PriceLabeler/internal/calculator"
	"PriceLabeler/internal/model"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrUnordered is returned when bar timestamps go backwards.
var ErrUnordered = errors.New("bars are not in chronological order")

// DefaultWindow is the labeling window used when none is configured.
const DefaultWindow = 12 * time.Hour

// ExtremaFinder locates the max and min close of each time window.
type ExtremaFinder interface {
	WindowExtrema(bars []model.Bar, size time.Duration, origin time.Time) ([]calculator.Extremum, error)
}

// ExtremaFunc adapts a plain function to ExtremaFinder.
type ExtremaFunc func(bars []model.Bar, size time.Duration, origin time.Time) ([]calculator.Extremum, error)

func (f ExtremaFunc) WindowExtrema(bars []model.Bar, size time.Duration, origin time.Time) ([]calculator.Extremum, error) {
	return f(bars, size, origin)
}

// Options configures a Labeler.
type Options struct {
	Window    time.Duration
	Origin    time.Time
	TiePolicy model.TiePolicy
}

// Summary describes the outcome of one labeling pass.
type Summary struct {
	Windows    int
	Longs      int
	Shorts     int
	Collisions int // windows whose max and min share a bar
}

// Labeler marks each window's highest close Short and lowest close Long.
type Labeler struct {
	Finder ExtremaFinder
	opts   Options
	logger zerolog.Logger
}

// New creates a Labeler backed by calculator.WindowExtrema.
func New(opts Options) (*Labeler, error) {
	if opts.Window == 0 {
		opts.Window = DefaultWindow
	}
	if opts.Window < 0 {
		return nil, fmt.Errorf("window must be positive, got %s", opts.Window)
	}
	if opts.Origin.IsZero() {
		opts.Origin = time.Unix(0, 0).UTC()
	}
	if opts.TiePolicy == "" {
		opts.TiePolicy = model.TieLongWins
	}
	if !opts.TiePolicy.Valid() {
		return nil, fmt.Errorf("unknown tie policy %q", opts.TiePolicy)
	}
	return &Labeler{
		Finder: ExtremaFunc(calculator.WindowExtrema),
		opts:   opts,
		logger: log.With().Str("component", "labeler").Logger(),
	}, nil
}

// Options returns the effective options.
func (l *Labeler) Options() Options { return l.opts }

// Label returns a copy of series with a fresh label column. Existing labels are ignored.
func (l *Labeler) Label(series *model.PriceSeries) (*model.PriceSeries, Summary, error) {
	var sum Summary
	out := series.Clone()
	out.Labels = make([]model.Label, len(out.Bars))

	for i := 1; i < len(out.Bars); i++ {
		if out.Bars[i].Time.Before(out.Bars[i-1].Time) {
			return nil, sum, fmt.Errorf("%w: bar %d at %s precedes bar %d", ErrUnordered, i, out.Bars[i].Time.Format(time.RFC3339), i-1)
		}
	}

	extrema, err := l.Finder.WindowExtrema(out.Bars, l.opts.Window, l.opts.Origin)
	if err != nil {
		return nil, sum, fmt.Errorf("window extrema: %w", err)
	}

	for _, e := range extrema {
		l.assign(out.Labels, e)
		sum.Windows++
		if e.Collides() {
			sum.Collisions++
			l.logger.Debug().
				Time("window", e.Window.Start).
				Int("bars", e.Count).
				Str("kept", out.Labels[e.MaxIdx].String()).
				Msg("max and min share a bar")
		}
	}
	for _, lb := range out.Labels {
		switch lb {
		case model.LabelLong:
			sum.Longs++
		case model.LabelShort:
			sum.Shorts++
		}
	}

	l.logger.Info().
		Int("bars", len(out.Bars)).
		Int("windows", sum.Windows).
		Int("long", sum.Longs).
		Int("short", sum.Shorts).
		Int("collisions", sum.Collisions).
		Msg("series labeled")
	return out, sum, nil
}

// assign writes the two labels in policy order; the second write wins on a shared bar.
func (l *Labeler) assign(labels []model.Label, e calculator.Extremum) {
	if l.opts.TiePolicy == model.TieShortWins {
		labels[e.MinIdx] = model.LabelLong
		labels[e.MaxIdx] = model.LabelShort
		return
	}
	labels[e.MaxIdx] = model.LabelShort
	labels[e.MinIdx] = model.LabelLong
}
