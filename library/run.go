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
package library

import (
	"context"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// IngestRun is the bookkeeping record written after each ingestion run.
// The report column holds the per-symbol stage outcomes as JSON.
type IngestRun struct {
	ID               uuid.UUID
	StartedAt        time.Time
	FinishedAt       time.Time
	SymbolsRequested int
	SymbolsFailed    int
	RowsWritten      int64
	Report           []byte
}

// SaveRun records an ingest run and its report.
func (myLibrary *Library) SaveRun(ctx context.Context, run *IngestRun, report any) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return err
	}

	_, err = conn.Exec(ctx, `INSERT INTO ingest_runs (
		"id",
		"started_at",
		"finished_at",
		"symbols_requested",
		"symbols_failed",
		"rows_written",
		"report"
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7
	)`, run.ID, run.StartedAt, run.FinishedAt, run.SymbolsRequested,
		run.SymbolsFailed, run.RowsWritten, reportJSON)
	return err
}

// RecentRuns returns the most recent ingest runs, newest first.
func (myLibrary *Library) RecentRuns(ctx context.Context, limit int) ([]*IngestRun, error) {
	var runs []*IngestRun
	err := pgxscan.Select(ctx, myLibrary.Pool, &runs,
		`SELECT id, started_at, finished_at, symbols_requested, symbols_failed,
rows_written, report FROM ingest_runs ORDER BY started_at DESC LIMIT $1`, limit)
	return runs, err
}
