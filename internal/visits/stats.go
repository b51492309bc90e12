package visits

import "math"

// populationStdDev computes mean and population standard deviation (divisor n,
// not n-1) from pre-aggregated scalars: n rows, sum of values, sum of squared
// values. The max-with-zero guard absorbs floating-point rounding that can
// push the variance a hair below zero.
func populationStdDev(n int, sumV, sumV2 float64) (mean, stdDev float64) {
	if n <= 0 {
		return 0, 0
	}
	mean = sumV / float64(n)
	variance := math.Max(sumV2/float64(n)-mean*mean, 0)
	return mean, math.Sqrt(variance)
}

// growthPercent computes the rounded percentage change between two annual
// totals. A zero start total is defined as 0% growth, never a division error.
func growthPercent(startTotal, endTotal int) int {
	if startTotal == 0 {
		return 0
	}
	return int(math.Round(float64(endTotal-startTotal) * 100.0 / float64(startTotal)))
}

// percentAbove computes how far above the scope average a total sits, as a
// rounded percentage. Zero (or negative) averages are defined as 0%.
func percentAbove(total, average int) int {
	if average <= 0 {
		return 0
	}
	return int(math.Round(float64(total-average) / float64(average) * 100.0))
}

func roundToInt(v float64) int {
	return int(math.Round(v))
}
