package indicator

import "github.com/rxtech-lab/argo-backtest/pkg/errors"

// exponentialMovingAverage returns the recursive EMA of values for the given span,
// with alpha = 2/(span+1) and the first value as seed. Every index has a value.
//
// The update is written as prev + alpha*(x-prev) so a constant input stays exactly constant.
func exponentialMovingAverage(values []float64, span int) ([]float64, error) {
	if span <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "span must be a positive integer, got %d", span)
	}

	if len(values) == 0 {
		return nil, errors.NewInsufficientDataError(1, 0, "", "insufficient data points for EMA: required 1, got 0")
	}

	alpha := 2.0 / float64(span+1)

	ema := make([]float64, len(values))
	ema[0] = values[0]

	for i := 1; i < len(values); i++ {
		ema[i] = ema[i-1] + alpha*(values[i]-ema[i-1])
	}

	return ema, nil
}
