package ta

import "math"

// RSI over the last period deltas, using simple averages of gains and loss
// magnitudes. A window with gains and no losses is 100; a flat window is 50.
func RSI(closes []float64, period int) float64 {
	if len(closes) < period+1 || period <= 0 {
		return math.NaN()
	}
	gain, loss := 0.0, 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		if d > 0 {
			gain += d
		} else {
			loss -= d
		}
	}
	if gain == 0 && loss == 0 {
		return 50.0
	}
	if loss == 0 {
		return 100.0
	}
	rs := (gain / float64(period)) / (loss / float64(period))
	return clamp(100.0-(100.0/(1.0+rs)), 0, 100)
}

// EMA seeds with the first close and smooths left to right with
// alpha = 2/(period+1). Only the final value is returned.
func EMA(closes []float64, period int) float64 {
	if len(closes) < period || period <= 0 {
		return math.NaN()
	}
	alpha := 2.0 / float64(period+1)
	ema := closes[0]
	for _, c := range closes[1:] {
		ema = alpha*c + (1-alpha)*ema
	}
	return ema
}

// ChangePercent is the last close's move relative to the one before it.
func ChangePercent(closes []float64) float64 {
	if len(closes) < 2 {
		return math.NaN()
	}
	prev := closes[len(closes)-2]
	if prev == 0 {
		return math.NaN()
	}
	return (closes[len(closes)-1] - prev) / prev * 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
