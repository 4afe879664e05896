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

// BalanceSheet is one dated balance-sheet snapshot for a security. All
// metric fields are nullable; the provider frequently omits fields per
// symbol and absence must not reject the row.
type BalanceSheet struct {
	Ticker             string
	EventDate          time.Time
	TotalDebt          *int64
	StockholdersEquity *int64
	CurrentAssets      *int64
	CurrentLiabilities *int64
	CommonStockEquity  *int64
	SharesIssued       *int64
	InvestedCapital    *int64
	TotalAssets        *int64
}

func (sheet *BalanceSheet) SaveDB(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `INSERT INTO balance_sheet (
		"ticker",
		"event_date",
		"total_debt",
		"stockholders_equity",
		"current_assets",
		"current_liabilities",
		"common_stock_equity",
		"shares_issued",
		"invested_capital",
		"total_assets"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10
	) ON CONFLICT ON CONSTRAINT balance_sheet_pkey
	DO UPDATE SET
		total_debt = EXCLUDED.total_debt,
		stockholders_equity = EXCLUDED.stockholders_equity,
		current_assets = EXCLUDED.current_assets,
		current_liabilities = EXCLUDED.current_liabilities,
		common_stock_equity = EXCLUDED.common_stock_equity,
		shares_issued = EXCLUDED.shares_issued,
		invested_capital = EXCLUDED.invested_capital,
		total_assets = EXCLUDED.total_assets`,
		sheet.Ticker, sheet.EventDate, sheet.TotalDebt,
		sheet.StockholdersEquity, sheet.CurrentAssets,
		sheet.CurrentLiabilities, sheet.CommonStockEquity,
		sheet.SharesIssued, sheet.InvestedCapital, sheet.TotalAssets)
	return err
}

// IncomeStatement is one dated income-statement snapshot for a security.
type IncomeStatement struct {
	Ticker          string
	EventDate       time.Time
	NetIncome       *int64
	TotalRevenue    *int64
	EBIT            *int64
	EBITDA          *int64
	OperatingIncome *int64
	GrossProfit     *int64
}

func (stmt *IncomeStatement) SaveDB(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `INSERT INTO income_statement (
		"ticker",
		"event_date",
		"net_income",
		"total_revenue",
		"ebit",
		"ebitda",
		"operating_income",
		"gross_profit"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	) ON CONFLICT ON CONSTRAINT income_statement_pkey
	DO UPDATE SET
		net_income = EXCLUDED.net_income,
		total_revenue = EXCLUDED.total_revenue,
		ebit = EXCLUDED.ebit,
		ebitda = EXCLUDED.ebitda,
		operating_income = EXCLUDED.operating_income,
		gross_profit = EXCLUDED.gross_profit`,
		stmt.Ticker, stmt.EventDate, stmt.NetIncome, stmt.TotalRevenue,
		stmt.EBIT, stmt.EBITDA, stmt.OperatingIncome, stmt.GrossProfit)
	return err
}

// CashFlow is one dated cash-flow snapshot for a security.
type CashFlow struct {
	Ticker                      string
	EventDate                   time.Time
	OperatingCashflow           *int64
	CapitalExpenditure          *int64
	ChangesInCash               *int64
	IssuanceOfDebt              *int64
	CommonStockIssuance         *int64
	DepreciationAndAmortization *int64
}

func (flow *CashFlow) SaveDB(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `INSERT INTO cash_flow (
		"ticker",
		"event_date",
		"operating_cashflow",
		"capital_expenditure",
		"changes_in_cash",
		"issuance_of_debt",
		"common_stock_issuance",
		"depreciation_and_amortization"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8
	) ON CONFLICT ON CONSTRAINT cash_flow_pkey
	DO UPDATE SET
		operating_cashflow = EXCLUDED.operating_cashflow,
		capital_expenditure = EXCLUDED.capital_expenditure,
		changes_in_cash = EXCLUDED.changes_in_cash,
		issuance_of_debt = EXCLUDED.issuance_of_debt,
		common_stock_issuance = EXCLUDED.common_stock_issuance,
		depreciation_and_amortization = EXCLUDED.depreciation_and_amortization`,
		flow.Ticker, flow.EventDate, flow.OperatingCashflow,
		flow.CapitalExpenditure, flow.ChangesInCash, flow.IssuanceOfDebt,
		flow.CommonStockIssuance, flow.DepreciationAndAmortization)
	return err
}
