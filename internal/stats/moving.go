package stats

import "github.com/moznion/go-optional"

// SMAUpdate recomputes a simple moving average after the window slides by
// one observation. Given the previous average and the previous window
// contents it is an O(1) update: drop the oldest value, add the newest. It
// falls back to a full mean when no prior average is available (first step
// of a trial) or when the window is not yet a full slide of the previous
// one. The incremental form matters: recomputing every indicator from
// scratch at each simulation step dominates trial cost.
func SMAUpdate(window []float64, n int, lastAverage optional.Option[float64], lastWindow []float64) float64 {
	if lastAverage.IsNone() || len(window) != n || len(lastWindow) != n {
		return Mean(window)
	}

	newest := window[len(window)-1]
	oldest := lastWindow[0]

	return lastAverage.Unwrap() + (newest-oldest)/float64(n)
}

// EMAAlpha returns the exponential moving average smoothing factor
// smoothing / (1 + n). The conventional smoothing constant is 2, giving the
// familiar alpha = 2/(n+1).
func EMAAlpha(n int, smoothing float64) float64 {
	return smoothing / (1 + float64(n))
}

// EMA computes an exponential moving average over values (oldest first),
// seeding with the simple average of the first n values and then applying
// the recurrence ema = value*alpha + ema*(1-alpha). With fewer than n
// values it degrades to the simple mean.
func EMA(values []float64, n int, alpha float64) float64 {
	if len(values) == 0 {
		return 0
	}

	if len(values) < n {
		return Mean(values)
	}

	ema := Mean(values[:n])
	for _, v := range values[n:] {
		ema = EMAUpdate(v, alpha, ema)
	}

	return ema
}

// EMAUpdate folds one new observation into an existing exponential moving
// average in O(1).
func EMAUpdate(value float64, alpha float64, lastEMA float64) float64 {
	return value*alpha + lastEMA*(1-alpha)
}
