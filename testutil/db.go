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

// Package testutil provides helpers for database integration tests. Tests
// using it skip unless TEST_DATABASE_URL points at a disposable PostgreSQL
// database.
package testutil

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/finquery/finquery/db"
	"github.com/finquery/finquery/library"
)

// SetupLibrary connects to the test database, applies migrations, and wipes
// table contents so each test starts from an empty library.
func SetupLibrary(t *testing.T) *library.Library {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration test")
	}

	migrateURL := strings.Replace(dsn, "postgres://", "pgx5://", 1)
	if err := db.Migrate(migrateURL); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	myLibrary := &library.Library{DBUrl: dsn, Name: "test library", Owner: "tester"}
	ctx := context.Background()
	if err := myLibrary.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(myLibrary.Close)

	tables := []string{
		"ingest_runs", "summary_stats", "cash_flow", "income_statement",
		"balance_sheet", "eod_prices", "securities", "library",
	}
	for _, table := range tables {
		if _, err := myLibrary.Pool.Exec(ctx, "DELETE FROM "+table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}

	if err := myLibrary.SaveDB(ctx); err != nil {
		t.Fatalf("save library row: %v", err)
	}

	return myLibrary
}
