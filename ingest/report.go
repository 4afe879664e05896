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

import "time"

// Stage names used in run reports.
const (
	StageMetadata        = "metadata"
	StagePrices          = "prices"
	StageBalanceSheet    = "balance-sheet"
	StageIncomeStatement = "income-statement"
	StageCashFlow        = "cash-flow"
	StageStatistics      = "statistics"
)

// Stage outcome statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// StageResult records the outcome of one (symbol, stage) pair.
type StageResult struct {
	Symbol string `json:"symbol"`
	Stage  string `json:"stage"`
	Status string `json:"status"`
	Rows   int    `json:"rows"`
	Error  string `json:"error,omitempty"`
}

// RunReport collects per-stage outcomes for a whole ingestion run instead
// of leaving them scattered across console logs.
type RunReport struct {
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Symbols   []string      `json:"symbols"`
	Stages    []StageResult `json:"stages"`
}

func (report *RunReport) append(symbol, stage, status string, rows int, err error) {
	result := StageResult{
		Symbol: symbol,
		Stage:  stage,
		Status: status,
		Rows:   rows,
	}
	if err != nil {
		result.Error = err.Error()
	}
	report.Stages = append(report.Stages, result)
}

// RowsWritten returns the total number of rows upserted across all stages.
func (report *RunReport) RowsWritten() int64 {
	var total int64
	for _, stage := range report.Stages {
		total += int64(stage.Rows)
	}
	return total
}

// FailedSymbols returns the distinct symbols with at least one failed stage.
func (report *RunReport) FailedSymbols() []string {
	seen := make(map[string]bool)
	var failed []string

	for _, stage := range report.Stages {
		if stage.Status == StatusFailed && !seen[stage.Symbol] {
			seen[stage.Symbol] = true
			failed = append(failed, stage.Symbol)
		}
	}

	return failed
}
