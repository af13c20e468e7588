package model

import "time"

// Bar represents a single candlestick bar.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries holds a chronological run of bars and the label column attached to them.
type PriceSeries struct {
	Symbol string
	Bars   []Bar
	Labels []Label // parallel to Bars
}

// Len returns the number of bars.
func (s *PriceSeries) Len() int { return len(s.Bars) }

// Closes returns the close column.
func (s *PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Clone returns a deep copy of the series.
func (s *PriceSeries) Clone() *PriceSeries {
	c := &PriceSeries{Symbol: s.Symbol}
	c.Bars = append(make([]Bar, 0, len(s.Bars)), s.Bars...)
	if s.Labels != nil {
		c.Labels = append(make([]Label, 0, len(s.Labels)), s.Labels...)
	}
	return c
}

// Indices returns the positions of all bars carrying the given label.
func (s *PriceSeries) Indices(l Label) []int {
	var out []int
	for i, v := range s.Labels {
		if v == l {
			out = append(out, i)
		}
	}
	return out
}
