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
	"fmt"
	"strings"
	"time"

	"github.com/xeonx/timeago"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Summary returns a description of the library in markdown
func (myLibrary *Library) Summary(ctx context.Context) (string, error) {
	p := message.NewPrinter(language.English)
	builder := strings.Builder{}

	if _, err := builder.WriteString(fmt.Sprintf("# %s\n", myLibrary.Name)); err != nil {
		return "", err
	}

	if _, err := builder.WriteString("## Details\n\n"); err != nil {
		return "", err
	}

	// Database connection string
	if _, err := builder.WriteString(fmt.Sprintf("Database: %s\n\n", myLibrary.DBUrl)); err != nil {
		return "", err
	}

	// Securities count
	totalSecurities, err := myLibrary.TotalSecurities(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Securities Tracked: %d\n", totalSecurities)); err != nil {
		return "", err
	}

	// Price bar count
	totalPrices, err := myLibrary.TotalPrices(ctx)
	if err != nil {
		return "", err
	}

	if _, err := builder.WriteString(p.Sprintf("  * Price Bars: %d\n", totalPrices)); err != nil {
		return "", err
	}

	// Date coverage
	firstDate, lastDate, err := myLibrary.PriceDateRange(ctx)
	if err != nil {
		return "", err
	}

	if totalPrices > 0 {
		if _, err := builder.WriteString(fmt.Sprintf("  * Coverage: %s - %s\n\n",
			firstDate.Format("Jan 2006"), lastDate.Format("Jan 2006"))); err != nil {
			return "", err
		}
	}

	// Last updated time
	lastUpdated, err := myLibrary.LastUpdated(ctx)
	if err != nil {
		return "", err
	}

	age := timeago.English.Format(lastUpdated)

	if lastUpdated.Equal(time.Time{}) || lastUpdated.Year() < 1800 {
		if _, err := builder.WriteString("Last Updated: Never\n\n"); err != nil {
			return "", err
		}
	} else {
		if _, err := builder.WriteString(fmt.Sprintf("Last Updated: %s (%s)\n\n", age, lastUpdated.Local().Format("01/02/2006"))); err != nil {
			return "", err
		}
	}

	// Recent runs
	if _, err := builder.WriteString("## Recent Ingest Runs\n\n"); err != nil {
		return "", err
	}

	runs, err := myLibrary.RecentRuns(ctx, 10)
	if err != nil {
		return "", err
	}

	if len(runs) == 0 {
		if _, err := builder.WriteString("No runs recorded.\n"); err != nil {
			return "", err
		}
	}

	for _, run := range runs {
		if _, err := builder.WriteString(p.Sprintf("  * %s: %d symbols (%d failed), %d rows [%s]\n",
			run.StartedAt.Local().Format("01/02/2006 15:04"), run.SymbolsRequested,
			run.SymbolsFailed, run.RowsWritten, run.ID.String()[:6])); err != nil {
			return "", err
		}
	}

	return builder.String(), nil
}
