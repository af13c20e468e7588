package calculator

import (
	"errors"
	"math"
)

// RSISeries computes the Wilder-smoothed RSI at every position.
// Positions before the first `period` valid changes are NaN. A change that
// touches a NaN close is skipped: the averages carry over and only that
// position is NaN.
func RSISeries(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}

	var avgGain, avgLoss float64
	seeded := 0
	for i := 1; i < len(closes); i++ {
		if math.IsNaN(closes[i]) || math.IsNaN(closes[i-1]) {
			continue
		}
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}

		// Initial average gain/loss over the first `period` changes
		if seeded < period {
			avgGain += gain
			avgLoss += loss
			seeded++
			if seeded < period {
				continue
			}
			avgGain /= float64(period)
			avgLoss /= float64(period)
			out[i] = rsiValue(avgGain, avgLoss)
			continue
		}

		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out, nil
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs)
}
