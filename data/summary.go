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
package data

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// SummaryStats holds descriptive statistics over a security's closing
// prices for the fetched date range. One row per ticker, overwritten
// wholesale on each run.
type SummaryStats struct {
	Ticker           string
	MeanClose        float64
	StdDevClose      float64
	Skewness         float64
	Kurtosis         float64
	MinClose         float64
	MaxClose         float64
	ReturnVolatility float64
	NumObs           int
}

// SaveDB replaces the statistics row for the ticker.
func (stats *SummaryStats) SaveDB(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `INSERT INTO summary_stats (
		"ticker",
		"mean_close",
		"stddev_close",
		"skewness",
		"kurtosis",
		"min_close",
		"max_close",
		"return_volatility",
		"num_obs",
		"computed_at"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, now()
	) ON CONFLICT ON CONSTRAINT summary_stats_pkey
	DO UPDATE SET
		mean_close = EXCLUDED.mean_close,
		stddev_close = EXCLUDED.stddev_close,
		skewness = EXCLUDED.skewness,
		kurtosis = EXCLUDED.kurtosis,
		min_close = EXCLUDED.min_close,
		max_close = EXCLUDED.max_close,
		return_volatility = EXCLUDED.return_volatility,
		num_obs = EXCLUDED.num_obs,
		computed_at = EXCLUDED.computed_at`,
		stats.Ticker, stats.MeanClose, stats.StdDevClose, stats.Skewness,
		stats.Kurtosis, stats.MinClose, stats.MaxClose,
		stats.ReturnVolatility, stats.NumObs)
	return err
}
