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
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/finquery/finquery/data"
)

var ErrSecurityNotFound = errors.New("security not found in library")

type Library struct {
	DBUrl string
	Name  string
	Owner string

	Pool *pgxpool.Pool
}

// Connect to the database configured for the library
func (myLibrary *Library) Connect(ctx context.Context) error {
	if myLibrary.Pool != nil {
		return nil
	}

	pool, err := pgxpool.New(ctx, myLibrary.DBUrl)
	if err != nil {
		return err
	}
	myLibrary.Pool = pool

	return nil
}

// Close the database pool
func (myLibrary *Library) Close() {
	myLibrary.Pool.Close()
}

// NewFromDB creates a new library object with values from the database
func NewFromDB(ctx context.Context, dbURL string) (*Library, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Release()

	myLibrary := Library{
		DBUrl: dbURL,
		Pool:  pool,
	}

	if err := conn.QueryRow(ctx, "SELECT name, owner FROM library").Scan(&myLibrary.Name, &myLibrary.Owner); err != nil {
		return nil, err
	}

	return &myLibrary, nil
}

// SaveDB creates a new record in the library table for this library
func (myLibrary *Library) SaveDB(ctx context.Context) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `INSERT INTO library ("name", "owner") VALUES ($1, $2)`, myLibrary.Name, myLibrary.Owner)
	return err
}

// EnsureSecurity makes sure an identity record exists for the profile's
// ticker, creating it with whatever fields the provider supplied. Existing
// records are never overwritten.
func (myLibrary *Library) EnsureSecurity(ctx context.Context, security *data.Security) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}

	if err := security.SaveDB(ctx, tx); err != nil {
		if err2 := tx.Rollback(ctx); err2 != nil {
			return err2
		}
		return err
	}

	return tx.Commit(ctx)
}

// SecurityExists resolves a ticker to its identity record. A missing
// record is a hard error that aborts the symbol's processing.
func (myLibrary *Library) SecurityExists(ctx context.Context, ticker string) error {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	count := 0
	if err := conn.QueryRow(ctx, "SELECT count(*) FROM securities WHERE ticker=$1", ticker).Scan(&count); err != nil {
		return err
	}

	if count == 0 {
		return fmt.Errorf("%w: %s", ErrSecurityNotFound, ticker)
	}

	return nil
}

// TotalSecurities returns the total number of securities in the library
func (myLibrary *Library) TotalSecurities(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM securities").Scan(&count)
	return count, err
}

// TotalPrices returns the total number of price bars in the library
func (myLibrary *Library) TotalPrices(ctx context.Context) (int, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Release()

	count := 0
	err = conn.QueryRow(ctx, "SELECT count(*) FROM eod_prices").Scan(&count)
	return count, err
}

// PriceDateRange returns the first and last trading dates stored in the
// library, or zero times when no prices exist.
func (myLibrary *Library) PriceDateRange(ctx context.Context) (time.Time, time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	defer conn.Release()

	var first, last time.Time
	err = conn.QueryRow(ctx, `SELECT coalesce(min(event_date), '0001-01-01'::date),
coalesce(max(event_date), '0001-01-01'::date) FROM eod_prices`).Scan(&first, &last)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return first, last, nil
}

// LastUpdated returns the date that the library was last updated by an
// ingest run.
func (myLibrary *Library) LastUpdated(ctx context.Context) (time.Time, error) {
	conn, err := myLibrary.Pool.Acquire(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer conn.Release()

	var lastUpdated time.Time
	err = conn.QueryRow(ctx, "SELECT coalesce(max(finished_at), '0001-01-01'::timestamp) FROM ingest_runs").Scan(&lastUpdated)
	if err != nil {
		return time.Time{}, err
	}

	return lastUpdated, nil
}
