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
package provider

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrStatus        = errors.New("provider returned an invalid HTTP status")
	ErrNoData        = errors.New("provider returned no data for symbol")
	ErrUnknownPeriod = errors.New("unknown trailing period")
)

// Profile holds the descriptive metadata a provider reports for a symbol.
// Every field besides the ticker may be absent; absence never aborts a run.
type Profile struct {
	Ticker    string
	Name      *string
	Sector    *string
	Industry  *string
	Employees *int64
}

// Bar is one OHLCV observation for one date. Prices and volume are nullable
// because providers report gaps as nulls.
type Bar struct {
	Date   time.Time
	Open   *float64
	High   *float64
	Low    *float64
	Close  *float64
	Volume *int64
}

// Statement is one dated row of a financial statement table, transposed to
// a date-indexed orientation. Fields the provider omitted are simply missing
// from the map.
type Statement struct {
	EndDate time.Time
	Fields  map[string]*float64
}

// Value returns the named field or nil when the provider omitted it.
func (statement *Statement) Value(name string) *float64 {
	return statement.Fields[name]
}

// Sum adds the named fields, treating missing values as zero. It returns
// nil when every named field is absent.
func (statement *Statement) Sum(names ...string) *float64 {
	var (
		total float64
		found bool
	)

	for _, name := range names {
		if v := statement.Fields[name]; v != nil {
			total += *v
			found = true
		}
	}

	if !found {
		return nil
	}

	return &total
}

// MarketData is the capability interface for an equity market-data vendor.
// Any concrete vendor client satisfying these contracts is substitutable.
type MarketData interface {
	// Metadata fetches descriptive metadata for a symbol.
	Metadata(ctx context.Context, symbol string) (*Profile, error)

	// History fetches a daily OHLCV time series over [start, end).
	History(ctx context.Context, symbol string, start, end time.Time, interval string) ([]*Bar, error)

	// BalanceSheet, IncomeStatement and CashFlow fetch small time-indexed
	// tables of annual financial fields.
	BalanceSheet(ctx context.Context, symbol string) ([]*Statement, error)
	IncomeStatement(ctx context.Context, symbol string) ([]*Statement, error)
	CashFlow(ctx context.Context, symbol string) ([]*Statement, error)
}

// ParsePeriod resolves a trailing period selector (e.g. "3mo", "1y", "max")
// to a start date relative to now.
func ParsePeriod(period string, now time.Time) (time.Time, error) {
	switch period {
	case "1mo":
		return now.AddDate(0, -1, 0), nil
	case "3mo":
		return now.AddDate(0, -3, 0), nil
	case "6mo":
		return now.AddDate(0, -6, 0), nil
	case "1y":
		return now.AddDate(-1, 0, 0), nil
	case "2y":
		return now.AddDate(-2, 0, 0), nil
	case "5y":
		return now.AddDate(-5, 0, 0), nil
	case "10y":
		return now.AddDate(-10, 0, 0), nil
	case "ytd":
		return time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location()), nil
	case "max":
		return time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), nil
	}

	return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownPeriod, period)
}
