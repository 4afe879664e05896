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
	"time"

	"github.com/jackc/pgx/v5"
)

// Price is one daily OHLCV bar for a security. At most one bar exists per
// (ticker, event_date); re-ingestion replaces field values in place.
type Price struct {
	Ticker    string
	EventDate time.Time
	Open      *float64
	High      *float64
	Low       *float64
	Close     *float64
	Volume    *int64
}

// SaveDB upserts the bar keyed by (ticker, event_date). A conflicting
// write replaces prior field values, which keeps ingestion idempotent.
func (price *Price) SaveDB(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `INSERT INTO eod_prices (
		"ticker",
		"event_date",
		"open",
		"high",
		"low",
		"close",
		"volume"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	) ON CONFLICT ON CONSTRAINT eod_prices_pkey
	DO UPDATE SET
		open = EXCLUDED.open,
		high = EXCLUDED.high,
		low = EXCLUDED.low,
		close = EXCLUDED.close,
		volume = EXCLUDED.volume`,
		price.Ticker, price.EventDate, price.Open, price.High, price.Low,
		price.Close, price.Volume)
	return err
}
