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
package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/finquery/finquery/library"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/testutil"
)

// fakeMarket serves scripted data instead of calling a vendor.
type fakeMarket struct {
	profiles   map[string]*provider.Profile
	bars       map[string][]*provider.Bar
	balance    map[string][]*provider.Statement
	income     map[string][]*provider.Statement
	cashflow   map[string][]*provider.Statement
	incomeErrs map[string]error
}

func (m *fakeMarket) Metadata(_ context.Context, symbol string) (*provider.Profile, error) {
	profile, ok := m.profiles[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrNoData, symbol)
	}
	return profile, nil
}

func (m *fakeMarket) History(_ context.Context, symbol string, _, _ time.Time, _ string) ([]*provider.Bar, error) {
	bars, ok := m.bars[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", provider.ErrNoData, symbol)
	}
	return bars, nil
}

func (m *fakeMarket) BalanceSheet(_ context.Context, symbol string) ([]*provider.Statement, error) {
	statements, ok := m.balance[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s balance sheet", provider.ErrNoData, symbol)
	}
	return statements, nil
}

func (m *fakeMarket) IncomeStatement(_ context.Context, symbol string) ([]*provider.Statement, error) {
	if err := m.incomeErrs[symbol]; err != nil {
		return nil, err
	}
	statements, ok := m.income[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s income statement", provider.ErrNoData, symbol)
	}
	return statements, nil
}

func (m *fakeMarket) CashFlow(_ context.Context, symbol string) ([]*provider.Statement, error) {
	statements, ok := m.cashflow[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s cash flow", provider.ErrNoData, symbol)
	}
	return statements, nil
}

func strPtr(s string) *string { return &s }
func f64Ptr(v float64) *float64 { return &v }
func i64Ptr(v int64) *int64 { return &v }

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func bar(date time.Time, close float64, volume int64) *provider.Bar {
	return &provider.Bar{
		Date:   date,
		Open:   f64Ptr(close - 1),
		High:   f64Ptr(close + 1),
		Low:    f64Ptr(close - 2),
		Close:  f64Ptr(close),
		Volume: i64Ptr(volume),
	}
}

func statement(endDate time.Time, fields map[string]float64) *provider.Statement {
	s := &provider.Statement{EndDate: endDate, Fields: make(map[string]*float64, len(fields))}
	for name, value := range fields {
		v := value
		s.Fields[name] = &v
	}
	return s
}

func appleMarket() *fakeMarket {
	return &fakeMarket{
		profiles: map[string]*provider.Profile{
			"AAPL": {
				Ticker:    "AAPL",
				Name:      strPtr("Apple Inc."),
				Sector:    strPtr("Technology"),
				Employees: i64Ptr(164000),
			},
		},
		bars: map[string][]*provider.Bar{
			"AAPL": {
				bar(day(2024, 1, 2), 150.00, 1000),
				bar(day(2024, 1, 3), 151.30, 1100),
				bar(day(2024, 1, 4), 149.80, 900),
			},
		},
		balance: map[string][]*provider.Statement{
			"AAPL": {statement(day(2023, 9, 30), map[string]float64{
				"totalAssets":  352755000000,
				"longTermDebt": 95281000000,
			})},
		},
		income: map[string][]*provider.Statement{
			"AAPL": {statement(day(2023, 9, 30), map[string]float64{
				"netIncome":    96995000000,
				"totalRevenue": 383285000000,
			})},
		},
		cashflow: map[string][]*provider.Statement{
			"AAPL": {statement(day(2023, 9, 30), map[string]float64{
				"totalCashFromOperatingActivities": 110543000000,
			})},
		},
	}
}

func countRows(t *testing.T, lib *library.Library, query string, args ...any) int {
	t.Helper()
	var n int
	if err := lib.Pool.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("count query %q: %v", query, err)
	}
	return n
}

func TestIngestPricesAndReingest(t *testing.T) {
	lib := testutil.SetupLibrary(t)
	ctx := context.Background()
	market := appleMarket()

	cfg := Config{
		Symbols:   []string{"AAPL"},
		StartDate: day(2024, 1, 1),
		EndDate:   day(2024, 1, 5),
	}

	report := NewRunner(lib, market, cfg).Run(ctx)
	if failed := report.FailedSymbols(); len(failed) != 0 {
		t.Fatalf("failed symbols = %v", failed)
	}

	if n := countRows(t, lib, `SELECT count(*) FROM securities`); n != 1 {
		t.Errorf("securities = %d, want 1", n)
	}
	if n := countRows(t, lib, `SELECT count(*) FROM eod_prices WHERE ticker = 'AAPL'`); n != 3 {
		t.Errorf("eod_prices = %d, want 3", n)
	}

	var close float64
	err := lib.Pool.QueryRow(ctx,
		`SELECT close FROM eod_prices WHERE ticker = 'AAPL' AND event_date = '2024-01-02'`).Scan(&close)
	if err != nil {
		t.Fatalf("select close: %v", err)
	}
	if close != 150.00 {
		t.Errorf("close = %v, want 150.00", close)
	}

	// the vendor restates the first close; re-ingesting updates in place
	market.bars["AAPL"][0].Close = f64Ptr(151.00)

	NewRunner(lib, market, cfg).Run(ctx)

	if n := countRows(t, lib, `SELECT count(*) FROM eod_prices WHERE ticker = 'AAPL'`); n != 3 {
		t.Errorf("eod_prices after re-ingest = %d, want 3 (no duplicates)", n)
	}
	err = lib.Pool.QueryRow(ctx,
		`SELECT close FROM eod_prices WHERE ticker = 'AAPL' AND event_date = '2024-01-02'`).Scan(&close)
	if err != nil {
		t.Fatalf("select close: %v", err)
	}
	if close != 151.00 {
		t.Errorf("close after re-ingest = %v, want 151.00", close)
	}
}

func TestIngestNullFields(t *testing.T) {
	lib := testutil.SetupLibrary(t)
	ctx := context.Background()

	market := appleMarket()
	// a halted trading day arrives with null close and volume
	market.bars["AAPL"] = append(market.bars["AAPL"], &provider.Bar{Date: day(2024, 1, 5)})

	report := NewRunner(lib, market, Config{Symbols: []string{"AAPL"}}).Run(ctx)
	if failed := report.FailedSymbols(); len(failed) != 0 {
		t.Fatalf("failed symbols = %v", failed)
	}

	var (
		close  *float64
		volume *int64
	)
	err := lib.Pool.QueryRow(ctx,
		`SELECT close, volume FROM eod_prices WHERE ticker = 'AAPL' AND event_date = '2024-01-05'`).Scan(&close, &volume)
	if err != nil {
		t.Fatalf("select gap row: %v", err)
	}
	if close != nil {
		t.Errorf("close = %v, want NULL", *close)
	}
	if volume != nil {
		t.Errorf("volume = %v, want NULL (never a sentinel)", *volume)
	}
}

func TestFundamentalsFailureIsolation(t *testing.T) {
	lib := testutil.SetupLibrary(t)
	ctx := context.Background()

	fy2023 := day(2023, 12, 31)
	market := &fakeMarket{
		profiles: map[string]*provider.Profile{
			"TSLA": {Ticker: "TSLA", Name: strPtr("Tesla, Inc.")},
			"MSFT": {Ticker: "MSFT", Name: strPtr("Microsoft Corporation")},
		},
		bars: map[string][]*provider.Bar{
			"TSLA": {bar(day(2024, 1, 2), 248.42, 5000)},
			"MSFT": {bar(day(2024, 1, 2), 370.87, 4000)},
		},
		balance: map[string][]*provider.Statement{
			"TSLA": {statement(fy2023, map[string]float64{"totalAssets": 106618000000})},
			"MSFT": {statement(fy2023, map[string]float64{"totalAssets": 411976000000})},
		},
		income: map[string][]*provider.Statement{
			"MSFT": {statement(fy2023, map[string]float64{"netIncome": 72361000000, "totalRevenue": 211915000000})},
		},
		cashflow: map[string][]*provider.Statement{
			"TSLA": {statement(fy2023, map[string]float64{"totalCashFromOperatingActivities": 13256000000})},
			"MSFT": {statement(fy2023, map[string]float64{"totalCashFromOperatingActivities": 87582000000})},
		},
		incomeErrs: map[string]error{
			"TSLA": errors.New("malformed income statement payload"),
		},
	}

	report := NewRunner(lib, market, Config{Symbols: []string{"TSLA", "MSFT"}}).Run(ctx)

	// the TSLA income failure shows up in the report
	var tslaIncomeFailed bool
	for _, stage := range report.Stages {
		if stage.Symbol == "TSLA" && stage.Stage == StageIncomeStatement {
			tslaIncomeFailed = stage.Status == StatusFailed
		}
	}
	if !tslaIncomeFailed {
		t.Error("expected failed income statement stage for TSLA")
	}

	// TSLA's other statements land despite the income failure
	if n := countRows(t, lib, `SELECT count(*) FROM income_statement WHERE ticker = 'TSLA'`); n != 0 {
		t.Errorf("TSLA income rows = %d, want 0", n)
	}
	if n := countRows(t, lib, `SELECT count(*) FROM balance_sheet WHERE ticker = 'TSLA'`); n != 1 {
		t.Errorf("TSLA balance rows = %d, want 1", n)
	}
	if n := countRows(t, lib, `SELECT count(*) FROM cash_flow WHERE ticker = 'TSLA'`); n != 1 {
		t.Errorf("TSLA cash flow rows = %d, want 1", n)
	}

	// and MSFT is completely unaffected
	if n := countRows(t, lib, `SELECT count(*) FROM income_statement WHERE ticker = 'MSFT'`); n != 1 {
		t.Errorf("MSFT income rows = %d, want 1", n)
	}

	var netIncome int64
	err := lib.Pool.QueryRow(ctx,
		`SELECT net_income FROM income_statement WHERE ticker = 'MSFT'`).Scan(&netIncome)
	if err != nil {
		t.Fatalf("select net_income: %v", err)
	}
	if netIncome != 72361000000 {
		t.Errorf("net_income = %d, want 72361000000", netIncome)
	}
}

func TestTransactionRollbackLeavesNoRows(t *testing.T) {
	lib := testutil.SetupLibrary(t)
	ctx := context.Background()

	market := appleMarket()
	runner := NewRunner(lib, market, Config{Symbols: []string{"AAPL"}})
	runner.Run(ctx)

	boom := errors.New("mid-transform failure")
	err := runner.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO balance_sheet (ticker, event_date, total_assets)
			VALUES ('AAPL', '2022-09-24', 352755000000)`)
		if err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want injected failure", err)
	}

	if n := countRows(t, lib,
		`SELECT count(*) FROM balance_sheet WHERE ticker = 'AAPL' AND event_date = '2022-09-24'`); n != 0 {
		t.Errorf("rows for rolled-back snapshot = %d, want 0", n)
	}
}

func TestStatsVariantThreshold(t *testing.T) {
	lib := testutil.SetupLibrary(t)
	ctx := context.Background()

	metaBars := make([]*provider.Bar, 0, 5)
	for i := 0; i < 5; i++ {
		metaBars = append(metaBars, bar(day(2024, 1, 2+i), 350+float64(i), 1000))
	}
	nvdaBars := make([]*provider.Bar, 0, 12)
	for i := 0; i < 12; i++ {
		nvdaBars = append(nvdaBars, bar(day(2024, 1, 2+i), 480+float64(i), 2000))
	}

	market := &fakeMarket{
		profiles: map[string]*provider.Profile{
			"META": {Ticker: "META", Name: strPtr("Meta Platforms, Inc.")},
			"NVDA": {Ticker: "NVDA", Name: strPtr("NVIDIA Corporation")},
		},
		bars: map[string][]*provider.Bar{
			"META": metaBars,
			"NVDA": nvdaBars,
		},
	}

	report := NewRunner(lib, market, Config{
		Symbols: []string{"META", "NVDA"},
		Variant: VariantStats,
	}).Run(ctx)

	// five observations are below the threshold: skipped, nothing written
	if n := countRows(t, lib, `SELECT count(*) FROM summary_stats WHERE ticker = 'META'`); n != 0 {
		t.Errorf("META stats rows = %d, want 0", n)
	}
	var metaSkipped bool
	for _, stage := range report.Stages {
		if stage.Symbol == "META" && stage.Stage == StageStatistics {
			metaSkipped = stage.Status == StatusSkipped
		}
	}
	if !metaSkipped {
		t.Error("expected skipped statistics stage for META")
	}

	var numObs int
	err := lib.Pool.QueryRow(ctx,
		`SELECT num_obs FROM summary_stats WHERE ticker = 'NVDA'`).Scan(&numObs)
	if err != nil {
		t.Fatalf("select NVDA stats: %v", err)
	}
	if numObs != 12 {
		t.Errorf("num_obs = %d, want 12", numObs)
	}

	// prices still load in the stats variant, fundamentals do not
	if n := countRows(t, lib, `SELECT count(*) FROM eod_prices WHERE ticker = 'NVDA'`); n != 12 {
		t.Errorf("NVDA price rows = %d, want 12", n)
	}
	if n := countRows(t, lib, `SELECT count(*) FROM balance_sheet`); n != 0 {
		t.Errorf("balance rows = %d, want 0 in stats variant", n)
	}
}
