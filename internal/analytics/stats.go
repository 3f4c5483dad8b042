package analytics

import (
	"gonum.org/v1/gonum/stat"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// sampleStdDev is the n-1 standard deviation; ok is false below two observations.
func sampleStdDev(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	return stat.StdDev(values, nil), true
}

func popStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.PopStdDev(values, nil)
}

func pctChange(from, to float64) *float64 {
	if from == 0 {
		return nil
	}
	change := (to - from) / from * 100
	return &change
}
