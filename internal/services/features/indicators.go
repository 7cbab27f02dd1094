package features

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// All indicators return a slice aligned with their input. Positions without enough
// trailing history hold NaN.

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func defined(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// SimpleReturns computes r_t = C_t / C_{t-1} - 1. The first position is undefined.
func SimpleReturns(closes []float64) []float64 {
	out := nanSlice(len(closes))
	for i := 1; i < len(closes); i++ {
		prev := closes[i-1]
		if prev == 0 {
			continue
		}
		out[i] = closes[i]/prev - 1
	}
	return out
}

// window returns xs[i-n+1 : i+1] when it is fully defined.
func window(xs []float64, i, n int) ([]float64, bool) {
	if n <= 0 || i-n+1 < 0 {
		return nil, false
	}
	w := xs[i-n+1 : i+1]
	for _, v := range w {
		if !defined(v) {
			return nil, false
		}
	}
	return w, true
}

// RollingMean is the simple moving average over n observations.
func RollingMean(xs []float64, n int) []float64 {
	out := nanSlice(len(xs))
	for i := range xs {
		if w, ok := window(xs, i, n); ok {
			out[i] = stat.Mean(w, nil)
		}
	}
	return out
}

// RollingStdDev is the moving standard deviation over n observations.
// population selects the n denominator; otherwise the sample (n-1) estimator is used.
func RollingStdDev(xs []float64, n int, population bool) []float64 {
	out := nanSlice(len(xs))
	for i := range xs {
		w, ok := window(xs, i, n)
		if !ok {
			continue
		}
		if population {
			out[i] = stat.PopStdDev(w, nil)
		} else if n > 1 {
			out[i] = stat.StdDev(w, nil)
		}
	}
	return out
}

// AnnualizedVolatility scales the rolling sample deviation of returns by sqrt(periodsPerYear).
func AnnualizedVolatility(returns []float64, n int, periodsPerYear float64) []float64 {
	out := RollingStdDev(returns, n, false)
	scale := math.Sqrt(periodsPerYear)
	for i, v := range out {
		if defined(v) {
			out[i] = v * scale
		}
	}
	return out
}

// EMA is an exponential moving average with alpha = 2/(span+1), seeded with the
// simple mean of the first span defined values.
func EMA(xs []float64, span int) []float64 {
	out := nanSlice(len(xs))
	if span <= 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	prev := math.NaN()
	for i := range xs {
		if !defined(prev) {
			if w, ok := window(xs, i, span); ok {
				prev = stat.Mean(w, nil)
				out[i] = prev
			}
			continue
		}
		if !defined(xs[i]) {
			continue
		}
		prev = alpha*xs[i] + (1-alpha)*prev
		out[i] = prev
	}
	return out
}

// WilderRSI computes the relative strength index with Wilder smoothing. The first
// average gain/loss is the simple mean of the first period changes.
func WilderRSI(closes []float64, period int) []float64 {
	out := nanSlice(len(closes))
	if period <= 0 || len(closes) <= period {
		return out
	}
	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	p := float64(period)
	avgGain /= p
	avgLoss /= p
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitChange(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}
	return out
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, -change
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACD returns the MACD line (EMA fast - EMA slow) and its signal line.
func MACD(closes []float64, fast, slow, signal int) (line, sig []float64) {
	ef := EMA(closes, fast)
	es := EMA(closes, slow)
	line = nanSlice(len(closes))
	for i := range closes {
		if defined(ef[i]) && defined(es[i]) {
			line[i] = ef[i] - es[i]
		}
	}
	return line, EMA(line, signal)
}

// Bollinger returns bands at middle ± k population standard deviations over n closes.
func Bollinger(closes []float64, n int, k float64) (upper, middle, lower []float64) {
	middle = RollingMean(closes, n)
	sd := RollingStdDev(closes, n, true)
	upper = nanSlice(len(closes))
	lower = nanSlice(len(closes))
	for i := range closes {
		if defined(middle[i]) && defined(sd[i]) {
			upper[i] = middle[i] + k*sd[i]
			lower[i] = middle[i] - k*sd[i]
		}
	}
	return upper, middle, lower
}
