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

// Package ingest runs the market-data ingestion pipeline: for each
// configured symbol it resolves the security's identity record, loads the
// daily price history, and then either loads the three fundamental
// statement tables or computes summary statistics, depending on the
// configured variant. Symbols are processed strictly one at a time; a
// failure in one stage is logged, rolled back, and never stops the rest
// of the run.
package ingest

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/finquery/finquery/data"
	"github.com/finquery/finquery/library"
	"github.com/finquery/finquery/provider"
	"github.com/finquery/finquery/stats"
)

// Variant selects what runs after the price load for each symbol.
type Variant string

const (
	// VariantFundamentals loads balance sheet, income statement and cash
	// flow tables after prices.
	VariantFundamentals Variant = "fundamentals"

	// VariantStats computes summary statistics over the fetched closing
	// prices instead of loading fundamentals.
	VariantStats Variant = "stats"
)

// Config is the explicit configuration passed to a Runner. There is no
// package-level state; callers own the symbol list and date range.
type Config struct {
	Symbols   []string
	StartDate time.Time
	EndDate   time.Time
	Interval  string
	Variant   Variant
}

// Runner executes the ingestion pipeline against a library database.
type Runner struct {
	lib    *library.Library
	market provider.MarketData
	cfg    Config
}

func NewRunner(lib *library.Library, market provider.MarketData, cfg Config) *Runner {
	if cfg.Interval == "" {
		cfg.Interval = "1d"
	}
	if cfg.Variant == "" {
		cfg.Variant = VariantFundamentals
	}
	return &Runner{lib: lib, market: market, cfg: cfg}
}

// Run processes every configured symbol in listed order. There is no
// retry, no backoff, and no parallelism; idempotent upserts make a rerun
// after a partial failure safe.
func (runner *Runner) Run(ctx context.Context) *RunReport {
	report := &RunReport{
		StartTime: time.Now(),
		Symbols:   runner.cfg.Symbols,
	}

	for _, symbol := range runner.cfg.Symbols {
		logger := log.With().Str("Symbol", symbol).Logger()
		runner.processSymbol(ctx, symbol, logger, report)
	}

	report.EndTime = time.Now()
	return report
}

func (runner *Runner) processSymbol(ctx context.Context, symbol string, logger zerolog.Logger, report *RunReport) {
	// metadata first: without an identity record nothing else can load
	if err := runner.resolveMetadata(ctx, symbol); err != nil {
		logger.Error().Err(err).Msg("could not resolve security metadata; skipping symbol")
		report.append(symbol, StageMetadata, StatusFailed, 0, err)
		return
	}
	report.append(symbol, StageMetadata, StatusOK, 1, nil)

	bars, err := runner.loadPrices(ctx, symbol)
	if err != nil {
		logger.Error().Err(err).Msg("could not load prices; skipping symbol")
		report.append(symbol, StagePrices, StatusFailed, 0, err)
		return
	}
	report.append(symbol, StagePrices, StatusOK, len(bars), nil)
	logger.Info().Int("NumBars", len(bars)).Msg("loaded price records")

	switch runner.cfg.Variant {
	case VariantStats:
		runner.computeStatistics(ctx, symbol, bars, logger, report)
	default:
		runner.loadFundamentals(ctx, symbol, logger, report)
	}
}

// resolveMetadata ensures a Security record exists for the symbol. A
// provider response with no usable identity fields still creates the
// record with nulls in the optional fields.
func (runner *Runner) resolveMetadata(ctx context.Context, symbol string) error {
	profile, err := runner.market.Metadata(ctx, symbol)
	if err != nil {
		return err
	}

	security := &data.Security{
		Ticker:      symbol,
		CompanyName: profile.Name,
		Sector:      profile.Sector,
		Industry:    profile.Industry,
		Employees:   profile.Employees,
	}

	return runner.lib.EnsureSecurity(ctx, security)
}

// loadPrices fetches the OHLCV series and upserts one bar per date inside
// a single transaction. The fetched series is returned for downstream
// statistics computation.
func (runner *Runner) loadPrices(ctx context.Context, symbol string) ([]*provider.Bar, error) {
	if err := runner.lib.SecurityExists(ctx, symbol); err != nil {
		return nil, err
	}

	bars, err := runner.market.History(ctx, symbol, runner.cfg.StartDate, runner.cfg.EndDate, runner.cfg.Interval)
	if err != nil {
		return nil, err
	}

	err = runner.inTx(ctx, func(tx pgx.Tx) error {
		for _, bar := range bars {
			price := &data.Price{
				Ticker:    symbol,
				EventDate: bar.Date,
				Open:      data.SafeFloat(bar.Open),
				High:      data.SafeFloat(bar.High),
				Low:       data.SafeFloat(bar.Low),
				Close:     data.SafeFloat(bar.Close),
				Volume:    bar.Volume,
			}
			if err := price.SaveDB(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return bars, nil
}

// loadFundamentals runs the three statement loaders. Each loader gets its
// own transaction so a failure rolls back only that (symbol, statement)
// pair and the run moves on.
func (runner *Runner) loadFundamentals(ctx context.Context, symbol string, logger zerolog.Logger, report *RunReport) {
	loaders := []struct {
		stage string
		run   func(context.Context, string) (int, error)
	}{
		{StageBalanceSheet, runner.loadBalanceSheet},
		{StageIncomeStatement, runner.loadIncomeStatement},
		{StageCashFlow, runner.loadCashFlow},
	}

	for _, loader := range loaders {
		rows, err := loader.run(ctx, symbol)
		if err != nil {
			logger.Error().Err(err).Str("Stage", loader.stage).Msg("fundamentals load failed; continuing")
			report.append(symbol, loader.stage, StatusFailed, 0, err)
			continue
		}
		report.append(symbol, loader.stage, StatusOK, rows, nil)
	}
}

func (runner *Runner) loadBalanceSheet(ctx context.Context, symbol string) (int, error) {
	if err := runner.lib.SecurityExists(ctx, symbol); err != nil {
		return 0, err
	}

	statements, err := runner.market.BalanceSheet(ctx, symbol)
	if err != nil {
		return 0, err
	}

	err = runner.inTx(ctx, func(tx pgx.Tx) error {
		for _, statement := range statements {
			sheet := &data.BalanceSheet{
				Ticker:             symbol,
				EventDate:          statement.EndDate,
				TotalDebt:          data.SafeInt(statement.Sum("longTermDebt", "shortLongTermDebt")),
				StockholdersEquity: data.SafeInt(statement.Value("totalStockholderEquity")),
				CurrentAssets:      data.SafeInt(statement.Value("totalCurrentAssets")),
				CurrentLiabilities: data.SafeInt(statement.Value("totalCurrentLiabilities")),
				CommonStockEquity:  data.SafeInt(statement.Value("commonStock")),
				SharesIssued:       data.SafeInt(statement.Value("ordinarySharesNumber")),
				InvestedCapital:    data.SafeInt(statement.Value("investedCapital")),
				TotalAssets:        data.SafeInt(statement.Value("totalAssets")),
			}
			if err := sheet.SaveDB(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(statements), nil
}

func (runner *Runner) loadIncomeStatement(ctx context.Context, symbol string) (int, error) {
	if err := runner.lib.SecurityExists(ctx, symbol); err != nil {
		return 0, err
	}

	statements, err := runner.market.IncomeStatement(ctx, symbol)
	if err != nil {
		return 0, err
	}

	err = runner.inTx(ctx, func(tx pgx.Tx) error {
		for _, statement := range statements {
			stmt := &data.IncomeStatement{
				Ticker:          symbol,
				EventDate:       statement.EndDate,
				NetIncome:       data.SafeInt(statement.Value("netIncome")),
				TotalRevenue:    data.SafeInt(statement.Value("totalRevenue")),
				EBIT:            data.SafeInt(statement.Value("ebit")),
				EBITDA:          data.SafeInt(statement.Value("ebitda")),
				OperatingIncome: data.SafeInt(statement.Value("operatingIncome")),
				GrossProfit:     data.SafeInt(statement.Value("grossProfit")),
			}
			if err := stmt.SaveDB(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(statements), nil
}

func (runner *Runner) loadCashFlow(ctx context.Context, symbol string) (int, error) {
	if err := runner.lib.SecurityExists(ctx, symbol); err != nil {
		return 0, err
	}

	statements, err := runner.market.CashFlow(ctx, symbol)
	if err != nil {
		return 0, err
	}

	err = runner.inTx(ctx, func(tx pgx.Tx) error {
		for _, statement := range statements {
			flow := &data.CashFlow{
				Ticker:                      symbol,
				EventDate:                   statement.EndDate,
				OperatingCashflow:           data.SafeInt(statement.Value("totalCashFromOperatingActivities")),
				CapitalExpenditure:          data.SafeInt(statement.Value("capitalExpenditures")),
				ChangesInCash:               data.SafeInt(statement.Value("changeInCash")),
				IssuanceOfDebt:              data.SafeInt(statement.Value("netBorrowings")),
				CommonStockIssuance:         data.SafeInt(statement.Value("issuanceOfStock")),
				DepreciationAndAmortization: data.SafeInt(statement.Value("depreciation")),
			}
			if err := flow.SaveDB(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(statements), nil
}

// computeStatistics summarizes the non-null closing prices. Below the
// observation threshold nothing is written; partial statistics are never
// persisted.
func (runner *Runner) computeStatistics(ctx context.Context, symbol string, bars []*provider.Bar, logger zerolog.Logger, report *RunReport) {
	closes := make([]float64, 0, len(bars))
	for _, bar := range bars {
		if c := data.SafeFloat(bar.Close); c != nil {
			closes = append(closes, *c)
		}
	}

	summary, err := stats.Summarize(closes)
	if err != nil {
		logger.Info().Int("NumObs", len(closes)).Msg("too few observations; skipping statistics")
		report.append(symbol, StageStatistics, StatusSkipped, 0, nil)
		return
	}

	err = runner.inTx(ctx, func(tx pgx.Tx) error {
		row := &data.SummaryStats{
			Ticker:           symbol,
			MeanClose:        summary.Mean,
			StdDevClose:      summary.StdDev,
			Skewness:         summary.Skewness,
			Kurtosis:         summary.Kurtosis,
			MinClose:         summary.Min,
			MaxClose:         summary.Max,
			ReturnVolatility: summary.ReturnVolatility,
			NumObs:           summary.NumObs,
		}
		return row.SaveDB(ctx, tx)
	})
	if err != nil {
		logger.Error().Err(err).Msg("could not save summary statistics")
		report.append(symbol, StageStatistics, StatusFailed, 0, err)
		return
	}

	report.append(symbol, StageStatistics, StatusOK, 1, nil)
}

// inTx runs fn inside one transaction on a freshly acquired connection,
// rolling back on any error. No transaction ever spans more than one
// (symbol, stage) pair.
func (runner *Runner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	conn, err := runner.lib.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if err2 := tx.Rollback(ctx); err2 != nil {
			log.Error().Err(err2).Msg("error rolling back tx")
		}
		return err
	}

	return tx.Commit(ctx)
}
