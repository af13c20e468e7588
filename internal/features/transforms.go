package features

import (
	"fmt"
	"math"

	"PriceLabeler/internal/calculator"
	"PriceLabeler/internal/model"

	"gonum.org/v1/gonum/stat"
)

type column struct {
	name   string
	values []float64
}

// baseColumns extracts the raw bar fields plus a couple of standard indicators.
// Columns that are constant (e.g. a source with no volume) are left out.
func baseColumns(series *model.PriceSeries) ([]column, error) {
	n := series.Len()
	open := make([]float64, n)
	high := make([]float64, n)
	low := make([]float64, n)
	vol := make([]float64, n)
	for i, b := range series.Bars {
		open[i], high[i], low[i], vol[i] = b.Open, b.High, b.Low, b.Volume
	}
	closes := series.Closes()

	rsi, err := calculator.RSISeries(closes, 14)
	if err != nil {
		return nil, fmt.Errorf("rsi14: %w", err)
	}
	sma, err := calculator.SMASeries(closes, 20)
	if err != nil {
		return nil, fmt.Errorf("sma20: %w", err)
	}

	all := []column{
		{"open", open},
		{"high", high},
		{"low", low},
		{"close", closes},
		{"volume", vol},
		{"rsi14", rsi},
		{"sma20", sma},
	}
	out := all[:0]
	for _, c := range all {
		if !constant(c.values) {
			out = append(out, c)
		}
	}
	return out, nil
}

func constant(v []float64) bool {
	first := math.NaN()
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		if math.IsNaN(first) {
			first = x
			continue
		}
		if x != first {
			return false
		}
	}
	return true
}

var unaryOps = []struct {
	name string
	fn   func(float64) float64
}{
	{"abs", math.Abs},
	{"log", math.Log},
	{"sqrt", math.Sqrt},
	{"square", func(x float64) float64 { return x * x }},
}

var binaryOps = []struct {
	name        string
	commutative bool
	infix       bool
	fn          func(a, b float64) float64
}{
	{"+", true, true, func(a, b float64) float64 { return a + b }},
	{"*", true, true, func(a, b float64) float64 { return a * b }},
	{"-", false, true, func(a, b float64) float64 { return a - b }},
	{"/", false, true, func(a, b float64) float64 { return a / b }},
	{"max", true, false, math.Max},
	{"min", true, false, math.Min},
}

// expand builds the candidate set: base columns, elementwise unary transforms,
// differences, z-scores, rolling statistics and pairwise combinations.
func expand(base []column, lookbacks []int) ([]candidate, error) {
	var out []candidate
	for _, c := range base {
		out = append(out, candidate{c.name, c.values})

		for _, op := range unaryOps {
			out = append(out, candidate{fmt.Sprintf("%s(%s)", op.name, c.name), mapValues(c.values, op.fn)})
		}
		out = append(out, candidate{fmt.Sprintf("diff(%s)", c.name), diff(c.values)})
		out = append(out, candidate{fmt.Sprintf("pct_change(%s)", c.name), pctChange(c.values)})
		out = append(out, candidate{fmt.Sprintf("zscore(%s)", c.name), zscore(c.values)})

		for _, n := range lookbacks {
			mean, err := calculator.SMASeries(c.values, n)
			if err != nil {
				return nil, fmt.Errorf("rolling mean %d: %w", n, err)
			}
			std, err := calculator.StdSeries(c.values, n)
			if err != nil {
				return nil, fmt.Errorf("rolling std %d: %w", n, err)
			}
			out = append(out,
				candidate{fmt.Sprintf("Rolling%dMean(%s)", n, c.name), mean},
				candidate{fmt.Sprintf("Rolling%dStd(%s)", n, c.name), std},
			)
		}
	}

	for i := range base {
		for j := range base {
			if i == j {
				continue
			}
			a, b := base[i], base[j]
			for _, op := range binaryOps {
				if op.commutative && j < i {
					continue
				}
				formula := fmt.Sprintf("%s(%s,%s)", op.name, a.name, b.name)
				if op.infix {
					formula = fmt.Sprintf("(%s%s%s)", a.name, op.name, b.name)
				}
				out = append(out, candidate{formula, zipValues(a.values, b.values, op.fn)})
			}
		}
	}
	return out, nil
}

func mapValues(v []float64, fn func(float64) float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = fn(x)
	}
	return out
}

func zipValues(a, b []float64, fn func(a, b float64) float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = fn(a[i], b[i])
	}
	return out
}

func diff(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) > 0 {
		out[0] = math.NaN()
	}
	for i := 1; i < len(v); i++ {
		out[i] = v[i] - v[i-1]
	}
	return out
}

func pctChange(v []float64) []float64 {
	out := make([]float64, len(v))
	if len(v) > 0 {
		out[0] = math.NaN()
	}
	for i := 1; i < len(v); i++ {
		out[i] = (v[i] - v[i-1]) / v[i-1]
	}
	return out
}

// zscore standardizes v against the mean and sample deviation of its finite
// values. Non-finite inputs stay NaN; a column with no spread is all NaN.
func zscore(v []float64) []float64 {
	finite := make([]float64, 0, len(v))
	for _, x := range v {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			finite = append(finite, x)
		}
	}
	out := make([]float64, len(v))
	mean, std := math.NaN(), 0.0
	if len(finite) > 1 {
		mean, std = stat.MeanStdDev(finite, nil)
	}
	for i, x := range v {
		if std == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			out[i] = math.NaN()
			continue
		}
		out[i] = (x - mean) / std
	}
	return out
}
