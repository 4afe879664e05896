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
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// Yahoo fetches equity data from the public Yahoo Finance endpoints:
// the v8 chart API for OHLCV history and the v10 quoteSummary API for
// metadata and financial statements.
type Yahoo struct {
	client  *resty.Client
	limiter *rate.Limiter
	nyc     *time.Location
}

type YahooOption func(*Yahoo)

// WithBaseURL points the client at a different host (used in tests).
func WithBaseURL(url string) YahooOption {
	return func(yahoo *Yahoo) {
		yahoo.client.SetBaseURL(strings.TrimRight(url, "/"))
	}
}

// WithRateLimit caps requests per minute against the provider.
func WithRateLimit(perMinute int) YahooOption {
	return func(yahoo *Yahoo) {
		if perMinute > 0 {
			yahoo.limiter = rate.NewLimiter(rate.Limit(float64(perMinute)/61.0), 1)
		}
	}
}

func NewYahoo(opts ...YahooOption) *Yahoo {
	nyc, err := time.LoadLocation("America/New_York")
	if err != nil {
		nyc = time.UTC
	}

	yahoo := &Yahoo{
		client: resty.New().
			SetBaseURL("https://query1.finance.yahoo.com").
			SetHeader("User-Agent", "finquery/1.0"),
		limiter: rate.NewLimiter(rate.Limit(60.0/61.0), 1),
		nyc:     nyc,
	}

	for _, opt := range opts {
		opt(yahoo)
	}

	return yahoo
}

// Private interface

type yahooValue struct {
	Raw *float64 `json:"raw"`
}

type yahooStatement map[string]yahooValue

type yahooStatementContainer struct {
	BalanceSheetStatements []yahooStatement `json:"balanceSheetStatements"`
	IncomeStatements       []yahooStatement `json:"incomeStatementHistory"`
	CashflowStatements     []yahooStatement `json:"cashflowStatements"`
}

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			AssetProfile *struct {
				Sector            *string `json:"sector"`
				Industry          *string `json:"industry"`
				FullTimeEmployees *int64  `json:"fullTimeEmployees"`
			} `json:"assetProfile"`
			Price *struct {
				Symbol    string  `json:"symbol"`
				LongName  *string `json:"longName"`
				ShortName *string `json:"shortName"`
			} `json:"price"`
			BalanceSheetHistory    *yahooStatementContainer `json:"balanceSheetHistory"`
			IncomeStatementHistory *yahooStatementContainer `json:"incomeStatementHistory"`
			CashflowStatementHistory *yahooStatementContainer `json:"cashflowStatementHistory"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"quoteSummary"`
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// yahooTicker reformats a symbol the way Yahoo expects (BRK.A -> BRK-A).
func yahooTicker(symbol string) string {
	return strings.ReplaceAll(symbol, ".", "-")
}

func (yahoo *Yahoo) quoteSummary(ctx context.Context, symbol string, modules string) (*yahooQuoteSummary, error) {
	if err := yahoo.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	respContent := &yahooQuoteSummary{}
	resp, err := yahoo.client.R().
		SetContext(ctx).
		SetQueryParam("modules", modules).
		SetResult(respContent).
		Get(fmt.Sprintf("/v10/finance/quoteSummary/%s", yahooTicker(symbol)))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: %d for %s", ErrStatus, resp.StatusCode(), symbol)
	}

	if apiErr := respContent.QuoteSummary.Error; apiErr != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoData, symbol, apiErr.Description)
	}

	if len(respContent.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	return respContent, nil
}

// Metadata fetches the security profile for a symbol. Missing identity
// fields are returned as nils, never an error.
func (yahoo *Yahoo) Metadata(ctx context.Context, symbol string) (*Profile, error) {
	respContent, err := yahoo.quoteSummary(ctx, symbol, "assetProfile,price")
	if err != nil {
		return nil, err
	}

	result := respContent.QuoteSummary.Result[0]
	profile := &Profile{Ticker: symbol}

	if result.Price != nil {
		if result.Price.LongName != nil {
			profile.Name = result.Price.LongName
		} else {
			profile.Name = result.Price.ShortName
		}
	}

	if result.AssetProfile != nil {
		profile.Sector = result.AssetProfile.Sector
		profile.Industry = result.AssetProfile.Industry
		profile.Employees = result.AssetProfile.FullTimeEmployees
	}

	return profile, nil
}

// History fetches daily OHLCV bars over [start, end). NaN fields arrive as
// JSON nulls and stay nil; volume is coerced to an integer.
func (yahoo *Yahoo) History(ctx context.Context, symbol string, start, end time.Time, interval string) ([]*Bar, error) {
	if err := yahoo.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if interval == "" {
		interval = "1d"
	}

	respContent := &yahooChart{}
	resp, err := yahoo.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"period1":  fmt.Sprintf("%d", start.Unix()),
			"period2":  fmt.Sprintf("%d", end.Unix()),
			"interval": interval,
		}).
		SetResult(respContent).
		Get(fmt.Sprintf("/v8/finance/chart/%s", yahooTicker(symbol)))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: %d for %s", ErrStatus, resp.StatusCode(), symbol)
	}

	if apiErr := respContent.Chart.Error; apiErr != nil {
		return nil, fmt.Errorf("%w: %s (%s)", ErrNoData, symbol, apiErr.Description)
	}

	if len(respContent.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	result := respContent.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	quote := result.Indicators.Quote[0]
	bars := make([]*Bar, 0, len(result.Timestamp))

	for idx, ts := range result.Timestamp {
		quoteDate := time.Unix(ts, 0).In(yahoo.nyc)
		bar := &Bar{
			Date: time.Date(quoteDate.Year(), quoteDate.Month(), quoteDate.Day(), 0, 0, 0, 0, time.UTC),
		}

		if idx < len(quote.Open) {
			bar.Open = quote.Open[idx]
		}
		if idx < len(quote.High) {
			bar.High = quote.High[idx]
		}
		if idx < len(quote.Low) {
			bar.Low = quote.Low[idx]
		}
		if idx < len(quote.Close) {
			bar.Close = quote.Close[idx]
		}
		if idx < len(quote.Volume) && quote.Volume[idx] != nil {
			vol := int64(*quote.Volume[idx])
			bar.Volume = &vol
		}

		bars = append(bars, bar)
	}

	return bars, nil
}

// BalanceSheet fetches the annual balance sheet table for a symbol.
func (yahoo *Yahoo) BalanceSheet(ctx context.Context, symbol string) ([]*Statement, error) {
	respContent, err := yahoo.quoteSummary(ctx, symbol, "balanceSheetHistory")
	if err != nil {
		return nil, err
	}

	container := respContent.QuoteSummary.Result[0].BalanceSheetHistory
	if container == nil {
		return nil, fmt.Errorf("%w: %s balance sheet", ErrNoData, symbol)
	}

	return yahoo.parseStatements(container.BalanceSheetStatements), nil
}

// IncomeStatement fetches the annual income statement table for a symbol.
func (yahoo *Yahoo) IncomeStatement(ctx context.Context, symbol string) ([]*Statement, error) {
	respContent, err := yahoo.quoteSummary(ctx, symbol, "incomeStatementHistory")
	if err != nil {
		return nil, err
	}

	container := respContent.QuoteSummary.Result[0].IncomeStatementHistory
	if container == nil {
		return nil, fmt.Errorf("%w: %s income statement", ErrNoData, symbol)
	}

	return yahoo.parseStatements(container.IncomeStatements), nil
}

// CashFlow fetches the annual cash flow table for a symbol.
func (yahoo *Yahoo) CashFlow(ctx context.Context, symbol string) ([]*Statement, error) {
	respContent, err := yahoo.quoteSummary(ctx, symbol, "cashflowStatementHistory")
	if err != nil {
		return nil, err
	}

	container := respContent.QuoteSummary.Result[0].CashflowStatementHistory
	if container == nil {
		return nil, fmt.Errorf("%w: %s cash flow", ErrNoData, symbol)
	}

	return yahoo.parseStatements(container.CashflowStatements), nil
}

// parseStatements transposes the provider's report rows into date-indexed
// statements. Rows without a usable end date are skipped; missing fields
// stay missing rather than becoming sentinels.
func (yahoo *Yahoo) parseStatements(rows []yahooStatement) []*Statement {
	statements := make([]*Statement, 0, len(rows))

	for _, row := range rows {
		endDate, ok := row["endDate"]
		if !ok || endDate.Raw == nil {
			continue
		}

		reportDate := time.Unix(int64(*endDate.Raw), 0).UTC()
		statement := &Statement{
			EndDate: time.Date(reportDate.Year(), reportDate.Month(), reportDate.Day(), 0, 0, 0, 0, time.UTC),
			Fields:  make(map[string]*float64, len(row)),
		}

		for name, value := range row {
			if name == "endDate" || value.Raw == nil {
				continue
			}
			statement.Fields[name] = value.Raw
		}

		statements = append(statements, statement)
	}

	return statements
}
