package calculator

import (
	"errors"
	"math"
)

// SMASeries returns the rolling simple moving average for every position.
// The first period-1 values are NaN, as is any window containing a NaN.
func SMASeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	sum := 0.0
	nans := 0
	for i, p := range prices {
		if math.IsNaN(p) {
			nans++
		} else {
			sum += p
		}
		if i >= period {
			if old := prices[i-period]; math.IsNaN(old) {
				nans--
			} else {
				sum -= old
			}
		}
		if i < period-1 || nans > 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out, nil
}

// StdSeries returns the rolling population standard deviation. The first period-1 values are NaN.
func StdSeries(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	for i := range prices {
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		mean := 0.0
		for j := i - period + 1; j <= i; j++ {
			mean += prices[j]
		}
		mean /= float64(period)
		v := 0.0
		for j := i - period + 1; j <= i; j++ {
			d := prices[j] - mean
			v += d * d
		}
		out[i] = math.Sqrt(v / float64(period))
	}
	return out, nil
}
