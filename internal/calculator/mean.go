package calculator

import (
	"errors"

	"PulseBeacon/internal/model"
)

// Mean computes the arithmetic mean of values.
func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values for mean calculation")
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values)), nil
}

// TrailingMean returns the mean of the last period values.
func TrailingMean(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, errors.New("not enough data for trailing mean")
	}
	return Mean(values[len(values)-period:])
}

func extractValues(readings []model.Reading) []float64 {
	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Value
	}
	return values
}
