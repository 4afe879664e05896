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

// Security is the identity record for a traded instrument. The ticker is
// the natural key; records are created on first encounter and never updated
// afterwards, so stale metadata is accepted.
type Security struct {
	Ticker      string
	CompanyName *string
	Sector      *string
	Industry    *string
	Employees   *int64
	CreatedAt   time.Time
}

// SaveDB inserts the security if it does not already exist. Existing
// records are left untouched.
func (security *Security) SaveDB(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx, `INSERT INTO securities (
		"ticker",
		"company_name",
		"sector",
		"industry",
		"employees"
	) VALUES (
		$1, $2, $3, $4, $5
	) ON CONFLICT ON CONSTRAINT securities_pkey DO NOTHING`,
		security.Ticker, security.CompanyName, security.Sector,
		security.Industry, security.Employees)
	return err
}
