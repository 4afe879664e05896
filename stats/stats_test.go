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
package stats_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/finquery/finquery/stats"
)

var _ = Describe("descriptive statistics", func() {
	series := []float64{1, 2, 3, 4, 5}

	It("computes the arithmetic mean", func() {
		Expect(stats.Mean(series)).To(BeNumerically("~", 3.0, 1e-12))
	})

	It("computes the sample standard deviation", func() {
		Expect(stats.StdDev(series)).To(BeNumerically("~", math.Sqrt(2.5), 1e-12))
	})

	It("reports zero skewness for a symmetric series", func() {
		Expect(stats.Skewness(series)).To(BeNumerically("~", 0.0, 1e-12))
	})

	It("reports positive skewness for a right-tailed series", func() {
		Expect(stats.Skewness([]float64{1, 1, 1, 1, 10})).To(BeNumerically(">", 0))
	})

	It("computes excess kurtosis with the Fisher definition", func() {
		// a uniform 1..5 series is platykurtic
		Expect(stats.Kurtosis(series)).To(BeNumerically("~", -1.3, 1e-12))
	})

	It("returns NaN for series too small to measure spread", func() {
		Expect(math.IsNaN(stats.StdDev([]float64{42}))).To(BeTrue())
		Expect(math.IsNaN(stats.Mean(nil))).To(BeTrue())
	})

	It("returns zero skewness for a constant series", func() {
		Expect(stats.Skewness([]float64{7, 7, 7})).To(BeZero())
		Expect(stats.Kurtosis([]float64{7, 7, 7})).To(BeZero())
	})
})

var _ = Describe("percentage-change returns", func() {
	It("drops the first observation", func() {
		returns := stats.Returns([]float64{100, 110, 99})
		Expect(returns).To(HaveLen(2))
		Expect(returns[0]).To(BeNumerically("~", 0.10, 1e-12))
		Expect(returns[1]).To(BeNumerically("~", -0.10, 1e-12))
	})

	It("skips observations whose predecessor is zero", func() {
		returns := stats.Returns([]float64{0, 5, 10})
		Expect(returns).To(HaveLen(1))
		Expect(returns[0]).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("returns nil for series shorter than two observations", func() {
		Expect(stats.Returns([]float64{100})).To(BeNil())
	})
})

var _ = Describe("Summarize", func() {
	It("refuses a series of exactly the minimum length", func() {
		closes := make([]float64, stats.MinObservations)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}
		_, err := stats.Summarize(closes)
		Expect(err).To(MatchError(stats.ErrTooFewObservations))
	})

	It("summarizes a series with more than the minimum observations", func() {
		closes := make([]float64, stats.MinObservations+1)
		for i := range closes {
			closes[i] = 100 + float64(i)
		}

		summary, err := stats.Summarize(closes)
		Expect(err).NotTo(HaveOccurred())
		Expect(summary.NumObs).To(Equal(len(closes)))
		Expect(summary.Min).To(Equal(100.0))
		Expect(summary.Max).To(Equal(110.0))
		Expect(summary.Mean).To(BeNumerically("~", 105.0, 1e-12))
		Expect(summary.StdDev).To(BeNumerically(">", 0))
		Expect(summary.ReturnVolatility).To(BeNumerically(">", 0))
	})
})
