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
package library_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/finquery/finquery/data"
	"github.com/finquery/finquery/library"
	"github.com/finquery/finquery/testutil"
)

func TestEnsureSecurityNeverOverwrites(t *testing.T) {
	myLibrary := testutil.SetupLibrary(t)
	ctx := context.Background()

	name := "Apple Inc."
	if err := myLibrary.EnsureSecurity(ctx, &data.Security{Ticker: "AAPL", CompanyName: &name}); err != nil {
		t.Fatalf("ensure security: %v", err)
	}

	// A second encounter with different metadata must leave the original row alone
	other := "Apple Computer"
	if err := myLibrary.EnsureSecurity(ctx, &data.Security{Ticker: "AAPL", CompanyName: &other}); err != nil {
		t.Fatalf("ensure security again: %v", err)
	}

	total, err := myLibrary.TotalSecurities(ctx)
	if err != nil {
		t.Fatalf("total securities: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 security, got %d", total)
	}

	var companyName string
	err = myLibrary.Pool.QueryRow(ctx, "SELECT company_name FROM securities WHERE ticker = 'AAPL'").Scan(&companyName)
	if err != nil {
		t.Fatalf("query security: %v", err)
	}
	if companyName != "Apple Inc." {
		t.Errorf("expected original company name to survive, got %q", companyName)
	}
}

func TestSecurityExists(t *testing.T) {
	myLibrary := testutil.SetupLibrary(t)
	ctx := context.Background()

	if err := myLibrary.EnsureSecurity(ctx, &data.Security{Ticker: "MSFT"}); err != nil {
		t.Fatalf("ensure security: %v", err)
	}

	if err := myLibrary.SecurityExists(ctx, "MSFT"); err != nil {
		t.Errorf("expected MSFT to exist: %v", err)
	}

	err := myLibrary.SecurityExists(ctx, "ZZZZ")
	if !errors.Is(err, library.ErrSecurityNotFound) {
		t.Errorf("expected ErrSecurityNotFound for unknown ticker, got %v", err)
	}
}

func TestSaveRunAndRecentRuns(t *testing.T) {
	myLibrary := testutil.SetupLibrary(t)
	ctx := context.Background()

	report := map[string]string{"AAPL": "success"}

	first := &library.IngestRun{
		ID:               uuid.New(),
		StartedAt:        time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC),
		FinishedAt:       time.Date(2024, 1, 2, 9, 5, 0, 0, time.UTC),
		SymbolsRequested: 2,
		SymbolsFailed:    1,
		RowsWritten:      250,
	}
	second := &library.IngestRun{
		ID:               uuid.New(),
		StartedAt:        time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC),
		FinishedAt:       time.Date(2024, 1, 3, 9, 4, 0, 0, time.UTC),
		SymbolsRequested: 1,
		RowsWritten:      125,
	}

	if err := myLibrary.SaveRun(ctx, first, report); err != nil {
		t.Fatalf("save first run: %v", err)
	}
	if err := myLibrary.SaveRun(ctx, second, report); err != nil {
		t.Fatalf("save second run: %v", err)
	}

	runs, err := myLibrary.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != second.ID {
		t.Errorf("expected newest run first, got %s", runs[0].ID)
	}
	if runs[0].RowsWritten != 125 {
		t.Errorf("expected 125 rows written, got %d", runs[0].RowsWritten)
	}
	if !strings.Contains(string(runs[1].Report), "AAPL") {
		t.Errorf("expected report JSON to round-trip, got %s", runs[1].Report)
	}

	lastUpdated, err := myLibrary.LastUpdated(ctx)
	if err != nil {
		t.Fatalf("last updated: %v", err)
	}
	if !lastUpdated.Equal(second.FinishedAt) {
		t.Errorf("expected last updated %s, got %s", second.FinishedAt, lastUpdated)
	}
}

func TestSummaryEmptyLibrary(t *testing.T) {
	myLibrary := testutil.SetupLibrary(t)

	summary, err := myLibrary.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if !strings.Contains(summary, "# test library") {
		t.Errorf("expected library name heading, got:\n%s", summary)
	}
	if !strings.Contains(summary, "Last Updated: Never") {
		t.Errorf("expected never-updated marker, got:\n%s", summary)
	}
	if !strings.Contains(summary, "No runs recorded.") {
		t.Errorf("expected empty run list marker, got:\n%s", summary)
	}
}
