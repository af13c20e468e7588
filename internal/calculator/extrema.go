package calculator

import (
	"errors"
	"fmt"
	"math"
	"time"

	"PriceLabeler/internal/model"
)

// ErrNoValidClose is returned when a non-empty window holds only NaN closes.
var ErrNoValidClose = errors.New("window has no valid close")

// Window is a half-open [Start, End) slice of absolute time.
type Window struct {
	Start time.Time
	End   time.Time
}

// Extremum holds the positions of a window's highest and lowest close.
type Extremum struct {
	Window Window
	MaxIdx int
	MinIdx int
	Count  int
}

// Collides reports whether max and min fall on the same bar.
func (e Extremum) Collides() bool { return e.MaxIdx == e.MinIdx }

// WindowStart returns the start of the window containing t.
// Boundaries depend only on origin and size, never on the data.
func WindowStart(t time.Time, size time.Duration, origin time.Time) time.Time {
	d := t.Sub(origin)
	n := d / size
	if d%size < 0 {
		n--
	}
	return origin.Add(n * size)
}

// WindowExtrema groups bars into consecutive windows of the given size and
// returns the first-occurrence max and min close of every non-empty window.
// Bars must be in chronological order. NaN closes are skipped.
func WindowExtrema(bars []model.Bar, size time.Duration, origin time.Time) ([]Extremum, error) {
	if size <= 0 {
		return nil, errors.New("window size must be positive")
	}
	out := make([]Extremum, 0)
	var (
		cur    *Extremum
		hi, lo float64
	)
	flush := func() error {
		if cur == nil {
			return nil
		}
		if cur.MaxIdx < 0 {
			return fmt.Errorf("%w: %s", ErrNoValidClose, cur.Window.Start.Format(time.RFC3339))
		}
		out = append(out, *cur)
		return nil
	}

	for i, b := range bars {
		start := WindowStart(b.Time, size, origin)
		if cur == nil || !start.Equal(cur.Window.Start) {
			if err := flush(); err != nil {
				return nil, err
			}
			cur = &Extremum{Window: Window{Start: start, End: start.Add(size)}, MaxIdx: -1, MinIdx: -1}
			hi, lo = math.Inf(-1), math.Inf(1)
		}
		cur.Count++
		c := b.Close
		if math.IsNaN(c) {
			continue
		}
		// strict comparisons keep the first occurrence on ties
		if cur.MaxIdx < 0 || c > hi {
			hi = c
			cur.MaxIdx = i
		}
		if cur.MinIdx < 0 || c < lo {
			lo = c
			cur.MinIdx = i
		}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return out, nil
}
