// Copyright 2025
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package stats computes descriptive statistics over closing-price series.
package stats

import (
	"errors"
	"math"
)

// MinObservations is the threshold below which no statistics are computed.
// A series must have strictly more observations than this to qualify.
const MinObservations = 10

var ErrTooFewObservations = errors.New("not enough observations to compute statistics")

// Summary holds descriptive statistics for one closing-price series.
type Summary struct {
	Mean             float64
	StdDev           float64
	Skewness         float64
	Kurtosis         float64
	Min              float64
	Max              float64
	ReturnVolatility float64
	NumObs           int
}

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}

	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation (n-1 denominator) of xs.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}

	mean := Mean(xs)

	var sum float64
	for _, x := range xs {
		d := x - mean
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(xs)-1))
}

// Skewness returns the population skewness (third standardized moment) of xs.
func Skewness(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}

	mean := Mean(xs)
	n := float64(len(xs))

	var m2, m3 float64
	for _, x := range xs {
		d := x - mean
		m2 += d * d
		m3 += d * d * d
	}
	m2 /= n
	m3 /= n

	if m2 == 0 {
		return 0
	}

	return m3 / math.Pow(m2, 1.5)
}

// Kurtosis returns the excess kurtosis (Fisher definition, normal = 0) of xs.
func Kurtosis(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}

	mean := Mean(xs)
	n := float64(len(xs))

	var m2, m4 float64
	for _, x := range xs {
		d := x - mean
		m2 += d * d
		m4 += d * d * d * d
	}
	m2 /= n
	m4 /= n

	if m2 == 0 {
		return 0
	}

	return m4/(m2*m2) - 3
}

// Returns computes simple percentage-change returns, dropping the first
// observation.
func Returns(xs []float64) []float64 {
	if len(xs) < 2 {
		return nil
	}

	returns := make([]float64, 0, len(xs)-1)
	for i := 1; i < len(xs); i++ {
		if xs[i-1] == 0 {
			continue
		}
		returns = append(returns, xs[i]/xs[i-1]-1)
	}

	return returns
}

// Summarize computes the full set of descriptive statistics over a
// closing-price series. It returns ErrTooFewObservations unless the series
// has strictly more than MinObservations values; partial statistics are
// never produced.
func Summarize(closes []float64) (*Summary, error) {
	if len(closes) <= MinObservations {
		return nil, ErrTooFewObservations
	}

	summary := &Summary{
		Mean:     Mean(closes),
		StdDev:   StdDev(closes),
		Skewness: Skewness(closes),
		Kurtosis: Kurtosis(closes),
		Min:      closes[0],
		Max:      closes[0],
		NumObs:   len(closes),
	}

	for _, c := range closes {
		summary.Min = math.Min(summary.Min, c)
		summary.Max = math.Max(summary.Max, c)
	}

	summary.ReturnVolatility = StdDev(Returns(closes))

	return summary, nil
}
