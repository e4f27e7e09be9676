package indicator

import (
	"math"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// rollingMean returns the simple moving average of every full window.
// Element k covers values[k : k+window], so it belongs to index k+window-1.
//
// Each mean is taken relative to the first value of its window, which keeps a
// constant input exactly constant.
func rollingMean(values []float64, window int) ([]float64, error) {
	if window <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "window must be a positive integer, got %d", window)
	}

	if len(values) < window {
		return nil, errors.NewInsufficientDataErrorf(window, len(values), "", "insufficient data points for moving average: required %d, got %d", window, len(values))
	}

	means := make([]float64, len(values)-window+1)
	for k := range means {
		means[k] = windowMean(values[k : k+window])
	}

	return means, nil
}

// rollingStdDev returns the sample standard deviation (n-1 denominator) of every full window,
// aligned like rollingMean.
func rollingStdDev(values []float64, window int) ([]float64, error) {
	if window < 2 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "standard deviation window must be at least 2, got %d", window)
	}

	if len(values) < window {
		return nil, errors.NewInsufficientDataErrorf(window, len(values), "", "insufficient data points for standard deviation: required %d, got %d", window, len(values))
	}

	stds := make([]float64, len(values)-window+1)

	for k := range stds {
		w := values[k : k+window]
		mean := windowMean(w)

		var squaredDiffSum float64

		for _, v := range w {
			diff := v - mean
			squaredDiffSum += diff * diff
		}

		stds[k] = math.Sqrt(squaredDiffSum / float64(window-1))
	}

	return stds, nil
}

func windowMean(w []float64) float64 {
	anchor := w[0]

	var offset float64
	for _, v := range w {
		offset += v - anchor
	}

	return anchor + offset/float64(len(w))
}
